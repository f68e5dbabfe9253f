// Package paymentadapter wraps the external payment processor.
//
// The adapter never retries: a processor or transport failure is returned at
// once, wrapped with the name of the call that failed.
package paymentadapter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

const (
	callCreate = "create payment intent"
	callGet    = "retrieve payment intent"
)

// Config holds the processor settings.
type Config struct {
	SecretKey string
	// APIURL overrides the processor endpoint, mostly in tests.
	APIURL            string
	Timeout           time.Duration
	TestPaymentMethod string
}

// Stripe is the payment adapter backed by Stripe payment intents.
type Stripe struct {
	api               *client.API
	testPaymentMethod string
}

// NewStripe returns a Stripe adapter with its own backend, so the global stripe key is never touched.
func NewStripe(config Config) (*Stripe, error) {
	if config.SecretKey == "" {
		return nil, errors.New("stripe secret key is not configured")
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: config.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}

	if config.APIURL != "" {
		backendConfig.URL = stripe.String(config.APIURL)
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	return &Stripe{
		api:               client.New(config.SecretKey, backends),
		testPaymentMethod: config.TestPaymentMethod,
	}, nil
}

// CreateIntent creates a payment intent for the amount in minor units.
//
// With a test payment method configured the intent is confirmed in the same call.
func (s *Stripe) CreateIntent(ctx context.Context, arg domain.CreateIntentParams) (domain.Intent, error) {
	if arg.Amount <= 0 {
		return domain.Intent{}, domain.ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(arg.Amount),
		Currency: stripe.String(arg.Currency),
	}
	params.Context = ctx

	for k, v := range arg.Metadata {
		params.AddMetadata(k, v)
	}

	if arg.IdempotencyKey != "" {
		params.SetIdempotencyKey(arg.IdempotencyKey)
	}

	if s.testPaymentMethod != "" {
		params.PaymentMethod = stripe.String(s.testPaymentMethod)
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
		params.Confirm = stripe.Bool(true)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("amount", arg.Amount).Msg(callCreate)
		return domain.Intent{}, mapError(callCreate, err)
	}

	return toIntent(pi), nil
}

// GetIntent looks up a payment intent without changing it.
func (s *Stripe) GetIntent(ctx context.Context, id string) (domain.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("payment_intent_id", id).Msg(callGet)
		return domain.Intent{}, mapError(callGet, err)
	}

	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) domain.Intent {
	return domain.Intent{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
		Metadata: pi.Metadata,
	}
}

func mapError(call string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return domain.ErrDepositNotFound
		case stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500:
			return errorspkg.New(errorspkg.KindValidation, call+": "+stripeErr.Msg)
		default:
			return errorspkg.Upstream(http.StatusBadGateway, nil, call+": "+stripeErr.Msg)
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errorspkg.Wrap(errorspkg.KindTimeout, call+" timed out", err)
	}

	return errorspkg.Wrap(errorspkg.KindTransport, call+" failed", err)
}
