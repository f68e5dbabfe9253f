// Package depositservice manages business logic layer of deposits.
//
// A deposit is a payment intent created with the processor followed by a
// credit at the balance authority. The two calls share no transaction, so
// every intent is written to the local deposit ledger before crediting and
// a reconciler finishes what a request could not.
package depositservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/configpkg"
	"github.com/go-petr/pet-roulette/pkg/currencypkg"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

// ServiceName tags the payment intents created by this service.
const ServiceName = "deposit-service"

// Repo provides data access layer interface for the local deposit ledger.
//
//go:generate mockgen -source service.go -destination service_mock.go -package depositservice
type Repo interface {
	Create(ctx context.Context, arg domain.Deposit) (domain.Deposit, error)
	Get(ctx context.Context, paymentIntentID string) (domain.Deposit, error)
	UpdateState(ctx context.Context, arg domain.UpdateDepositStateParams) (domain.Deposit, error)
	ListOpen(ctx context.Context, states []string, before time.Time, limit int32) ([]domain.Deposit, error)
}

// Balances provides the balance authority operations the orchestrator uses.
type Balances interface {
	Get(ctx context.Context, id string) (domain.Balance, error)
	Update(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error)
	ApplyEntry(ctx context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error)
}

// Payments provides the payment adapter operations the orchestrator uses.
type Payments interface {
	CreateIntent(ctx context.Context, arg domain.CreateIntentParams) (domain.Intent, error)
	GetIntent(ctx context.Context, id string) (domain.Intent, error)
}

// Service facilitates deposit service layer logic.
type Service struct {
	repo     Repo
	balances Balances
	payments Payments
	metrics  *Metrics

	settlementPolicy string
	creditMode       string
	minAmount        int64
	defaultCurrency  string
	batchSize        int32
	gracePeriod      time.Duration

	errBelowMinimum error
	now             func() time.Time
}

// New returns deposit service struct to manage deposit bussines logic.
func New(repo Repo, balances Balances, payments Payments, config configpkg.Config, metrics *Metrics) *Service {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	msg := fmt.Sprintf("Minimum deposit amount is $%s (%d cents)",
		currencypkg.MinorToMajor(config.MinDepositAmount).StringFixed(2), config.MinDepositAmount)

	return &Service{
		repo:             repo,
		balances:         balances,
		payments:         payments,
		metrics:          metrics,
		settlementPolicy: config.SettlementPolicy,
		creditMode:       config.CreditMode,
		minAmount:        config.MinDepositAmount,
		defaultCurrency:  config.DefaultCurrency,
		batchSize:        config.ReconcileBatchSize,
		gracePeriod:      config.ReconcileGracePeriod,
		errBelowMinimum:  errorspkg.New(errorspkg.KindValidation, msg),
		now:              time.Now,
	}
}

func (s *Service) validate(req *domain.DepositRequest) error {
	if req.UserID == "" {
		return domain.ErrMissingUserID
	}

	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}

	if req.Amount < s.minAmount {
		return s.errBelowMinimum
	}

	if req.Currency == "" {
		req.Currency = s.defaultCurrency
	}

	req.Currency = currencypkg.Normalize(req.Currency)
	if !currencypkg.IsSupportedCurrency(req.Currency) {
		return domain.ErrUnsupportedCurrency
	}

	return nil
}

// fundable reports whether the intent may be credited under the settlement policy.
func (s *Service) fundable(intent domain.Intent) bool {
	if s.settlementPolicy == configpkg.SettlementAlwaysConfirm {
		return true
	}

	return intent.Status == domain.IntentSucceeded
}

// ProcessDeposit funds the user balance through a payment intent.
//
// Validation failures return before any network call. A user unknown to the
// balance authority aborts before money moves. Once the intent exists, the
// deposit is recorded locally, so a failed credit is retried by Reconcile.
func (s *Service) ProcessDeposit(ctx context.Context, req domain.DepositRequest) (domain.DepositResult, error) {
	l := zerolog.Ctx(ctx).With().Str("user_id", req.UserID).Int64("amount", req.Amount).Logger()

	if err := s.validate(&req); err != nil {
		s.metrics.deposits.WithLabelValues(outcomeRejected).Inc()
		return domain.DepositResult{}, err
	}

	l.Info().Str("currency", req.Currency).Msg("processing deposit")

	current, err := s.balances.Get(ctx, req.UserID)
	if err != nil {
		s.metrics.deposits.WithLabelValues(outcomeRejected).Inc()

		if errorspkg.Is(err, errorspkg.KindNotFound) {
			return domain.DepositResult{}, domain.ErrUserNotFound
		}

		return domain.DepositResult{}, step("read balance", err)
	}

	intent, err := s.payments.CreateIntent(ctx, domain.CreateIntentParams{
		Amount:         req.Amount,
		Currency:       req.Currency,
		Metadata:       map[string]string{"userId": req.UserID, "service": ServiceName},
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		s.metrics.deposits.WithLabelValues(outcomeProcessorFailed).Inc()
		return domain.DepositResult{}, err
	}

	l = l.With().Str("payment_intent_id", intent.ID).Logger()
	l.Info().Str("intent_status", intent.Status).Msg("payment intent created")

	state := domain.StateConfirmed
	if !s.fundable(intent) {
		state = domain.StateAwaitingSettlement
	}

	deposit, err := s.repo.Create(ctx, domain.Deposit{
		PaymentIntentID: intent.ID,
		UserID:          req.UserID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		IntentStatus:    intent.Status,
		State:           state,
	})
	if err != nil {
		// The intent exists, so crediting goes on without the local record.
		l.Error().Err(err).Msg("deposit not recorded, reconciliation will not see it")

		deposit = domain.Deposit{
			PaymentIntentID: intent.ID,
			UserID:          req.UserID,
			Amount:          req.Amount,
			Currency:        req.Currency,
			State:           state,
		}
	}

	result := domain.DepositResult{
		DepositID:       intent.ID,
		UserID:          req.UserID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentIntentID: intent.ID,
	}

	switch deposit.State {
	case domain.StateAwaitingSettlement:
		s.metrics.deposits.WithLabelValues(outcomePending).Inc()
		l.Info().Msg("deposit awaits settlement")

		result.Status = domain.DepositPending

		return result, nil
	case domain.StateFailed, domain.StateNeedsReview:
		result.Status = domain.DepositFailed
		return result, nil
	case domain.StateCredited:
		if s.creditMode == configpkg.CreditModeOverwrite {
			result.Status = domain.DepositSucceeded
			result.UpdatedBalance = &current.Balance

			return result, nil
		}
	}

	balance, err := s.credit(ctx, deposit, &current)
	if err != nil {
		s.metrics.deposits.WithLabelValues(outcomeCreditFailed).Inc()
		l.Error().Err(err).Msg("payment confirmed but balance not credited")

		return domain.DepositResult{}, step("credit balance for payment "+intent.ID, err)
	}

	s.metrics.deposits.WithLabelValues(outcomeCredited).Inc()
	l.Info().Str("balance", balance.String()).Msg("deposit credited")

	result.Status = domain.DepositSucceeded
	result.UpdatedBalance = &balance

	return result, nil
}

// credit writes the deposit to the balance authority and records the outcome.
//
// In ledger mode the payment intent id is the entry reference, so repeating a
// credit never adds the amount twice. In overwrite mode the absolute balance is
// computed from current, or read first when current is nil.
func (s *Service) credit(ctx context.Context, d domain.Deposit, current *domain.Balance) (decimal.Decimal, error) {
	amount := currencypkg.MinorToMajor(d.Amount)

	var (
		balance decimal.Decimal
		err     error
	)

	if s.creditMode == configpkg.CreditModeOverwrite {
		balance, err = s.overwrite(ctx, d.UserID, amount, current)
	} else {
		var res domain.ApplyEntryResult

		res, err = s.balances.ApplyEntry(ctx, domain.ApplyEntryParams{
			UserID:    d.UserID,
			Reference: d.PaymentIntentID,
			Amount:    amount,
		})
		balance = res.Balance.Balance
	}

	if err != nil {
		_, uerr := s.repo.UpdateState(ctx, domain.UpdateDepositStateParams{
			PaymentIntentID: d.PaymentIntentID,
			State:           domain.StateConfirmed,
			LastError:       err.Error(),
			Attempt:         true,
		})
		if uerr != nil {
			zerolog.Ctx(ctx).Error().Err(uerr).Str("payment_intent_id", d.PaymentIntentID).Msg("record credit failure")
		}

		return decimal.Decimal{}, err
	}

	_, uerr := s.repo.UpdateState(ctx, domain.UpdateDepositStateParams{
		PaymentIntentID: d.PaymentIntentID,
		State:           domain.StateCredited,
		Attempt:         true,
	})
	if uerr != nil {
		zerolog.Ctx(ctx).Error().Err(uerr).Str("payment_intent_id", d.PaymentIntentID).Msg("record credit")
	}

	return balance, nil
}

func (s *Service) overwrite(ctx context.Context, userID string, amount decimal.Decimal, current *domain.Balance) (decimal.Decimal, error) {
	if current == nil {
		b, err := s.balances.Get(ctx, userID)
		if err != nil {
			return decimal.Decimal{}, err
		}

		current = &b
	}

	updated, err := s.balances.Update(ctx, userID, current.Balance.Add(amount))
	if err != nil {
		return decimal.Decimal{}, err
	}

	return updated.Balance, nil
}

// MapIntentStatus maps a processor status onto the deposit status vocabulary.
func MapIntentStatus(status string) string {
	switch status {
	case domain.IntentSucceeded:
		return domain.DepositSucceeded
	case domain.IntentProcessing:
		return domain.DepositPending
	default:
		return domain.DepositFailed
	}
}

// GetDepositStatus reads the deposit status from the processor.
//
// Under always_confirm a deposit the local ledger has credited reports
// succeeded whatever the processor says.
func (s *Service) GetDepositStatus(ctx context.Context, paymentIntentID string) (domain.DepositStatus, error) {
	intent, err := s.payments.GetIntent(ctx, paymentIntentID)
	if err != nil {
		if errorspkg.Is(err, errorspkg.KindNotFound) {
			return domain.DepositStatus{}, domain.ErrDepositNotFound
		}

		return domain.DepositStatus{}, err
	}

	status := domain.DepositStatus{
		DepositID:       intent.ID,
		UserID:          intent.Metadata["userId"],
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Status:          MapIntentStatus(intent.Status),
		PaymentIntentID: intent.ID,
	}

	local, err := s.repo.Get(ctx, paymentIntentID)
	if err != nil {
		if !errorspkg.Is(err, errorspkg.KindNotFound) {
			zerolog.Ctx(ctx).Error().Err(err).Str("payment_intent_id", paymentIntentID).Msg("read local deposit")
		}

		return status, nil
	}

	if status.UserID == "" {
		status.UserID = local.UserID
	}

	if local.State == domain.StateCredited && s.settlementPolicy == configpkg.SettlementAlwaysConfirm {
		status.Status = domain.DepositSucceeded
	}

	return status, nil
}

// step names the orchestration step that failed and keeps the kind of err.
// step names the failed step and keeps the origin status and body of err.
func step(name string, err error) error {
	wrapped := &errorspkg.Error{Kind: errorspkg.KindOf(err), Msg: name, Err: err}

	var origin *errorspkg.Error
	if errors.As(err, &origin) {
		wrapped.Status, wrapped.Body = origin.Status, origin.Body
	}

	return wrapped
}
