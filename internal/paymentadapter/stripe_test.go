package paymentadapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

const intentJSON = `{
	"id": "pi_123",
	"object": "payment_intent",
	"amount": 500,
	"currency": "usd",
	"status": "%s",
	"metadata": {"userId": "u2", "service": "deposit-service"}
}`

func newAdapter(t *testing.T, handler http.HandlerFunc, testPaymentMethod string) *Stripe {
	t.Helper()

	processor := httptest.NewServer(handler)
	t.Cleanup(processor.Close)

	adapter, err := NewStripe(Config{
		SecretKey:         "sk_test_123",
		APIURL:            processor.URL,
		Timeout:           time.Second,
		TestPaymentMethod: testPaymentMethod,
	})
	require.NoError(t, err)

	return adapter
}

func writeIntent(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(fmt.Sprintf(intentJSON, status)))
}

func TestCreateIntent(t *testing.T) {
	t.Parallel()

	var calls int32

	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		if r.Method != http.MethodPost || r.URL.Path != "/v1/payment_intents" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if r.PostForm.Get("amount") != "500" ||
			r.PostForm.Get("currency") != "usd" ||
			r.PostForm.Get("metadata[userId]") != "u2" ||
			r.Header.Get("Idempotency-Key") != "key-1" ||
			r.PostForm.Get("confirm") != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"unexpected request"}}`))

			return
		}

		writeIntent(w, "requires_payment_method")
	}, "")

	got, err := adapter.CreateIntent(context.Background(), domain.CreateIntentParams{
		Amount:         500,
		Currency:       "usd",
		Metadata:       map[string]string{"userId": "u2"},
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	require.Equal(t, "pi_123", got.ID)
	require.Equal(t, int64(500), got.Amount)
	require.Equal(t, "requires_payment_method", got.Status)
	require.Equal(t, "u2", got.Metadata["userId"])
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCreateIntentConfirmsWithTestPaymentMethod(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if r.PostForm.Get("confirm") != "true" ||
			r.PostForm.Get("payment_method") != "pm_card_visa" ||
			r.PostForm.Get("payment_method_types[0]") != "card" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"not confirmed"}}`))

			return
		}

		writeIntent(w, "succeeded")
	}, "pm_card_visa")

	got, err := adapter.CreateIntent(context.Background(), domain.CreateIntentParams{Amount: 500, Currency: "usd"})
	require.NoError(t, err)
	require.Equal(t, domain.IntentSucceeded, got.Status)
}

func TestCreateIntentErrors(t *testing.T) {
	testCases := []struct {
		name     string
		amount   int64
		handler  http.HandlerFunc
		wantKind errorspkg.Kind
		wantMsg  string
	}{
		{
			name:   "NonPositiveAmount",
			amount: 0,
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Errorf("processor must not be called")
			},
			wantKind: errorspkg.KindValidation,
			wantMsg:  domain.ErrInvalidAmount.Error(),
		},
		{
			name:   "Declined",
			amount: 500,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusPaymentRequired)
				_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
			},
			wantKind: errorspkg.KindValidation,
			wantMsg:  "create payment intent: Your card was declined.",
		},
		{
			name:   "ProcessorDown",
			amount: 500,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
			},
			wantKind: errorspkg.KindUpstream,
			wantMsg:  "create payment intent: boom",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			adapter := newAdapter(t, tc.handler, "")

			_, err := adapter.CreateIntent(context.Background(), domain.CreateIntentParams{Amount: tc.amount, Currency: "usd"})
			require.Error(t, err)
			require.Equal(t, tc.wantKind, errorspkg.KindOf(err))
			require.Equal(t, tc.wantMsg, err.Error())
		})
	}
}

func TestGetIntent(t *testing.T) {
	t.Parallel()

	adapter := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payment_intents/pi_123":
			writeIntent(w, "processing")
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent"}}`))
		}
	}, "")

	got, err := adapter.GetIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	require.Equal(t, domain.IntentProcessing, got.Status)

	_, err = adapter.GetIntent(context.Background(), "pi_missing")
	require.ErrorIs(t, err, domain.ErrDepositNotFound)
}

func TestGetIntentTransportError(t *testing.T) {
	t.Parallel()

	processor := httptest.NewServer(http.NotFoundHandler())
	url := processor.URL
	processor.Close()

	adapter, err := NewStripe(Config{SecretKey: "sk_test_123", APIURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = adapter.GetIntent(context.Background(), "pi_123")
	require.Equal(t, errorspkg.KindTransport, errorspkg.KindOf(err))
}

func TestNewStripeRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewStripe(Config{})
	require.Error(t, err)
}
