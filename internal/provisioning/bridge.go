// Package provisioning creates balance records for newly registered identities.
//
// Registration never waits for, nor fails because of, balance provisioning.
// Attempts that fail are kept in an outbox and retried by Reconcile, so an
// identity without a balance record is a window rather than a permanent gap.
package provisioning

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/errorspkg"
)

const (
	outcomeProvisioned = "provisioned"
	outcomeRequeued    = "requeued"
	outcomeDeadLetter  = "dead_letter"
	outcomeLost        = "lost"
)

// Gateway provides the gateway call creating a balance record.
//
//go:generate mockgen -source bridge.go -destination bridge_mock.go -package provisioning
type Gateway interface {
	CreateUser(ctx context.Context, id string, balance decimal.Decimal) (domain.Balance, error)
}

// Outbox keeps provisioning tasks that still have to be retried.
type Outbox interface {
	Push(ctx context.Context, task domain.ProvisionTask) error
	Claim(ctx context.Context) (Claim, bool, error)
	Ack(ctx context.Context, claim Claim) error
	Recover(ctx context.Context) (int64, error)
	Bury(ctx context.Context, task domain.ProvisionTask) error
	Len(ctx context.Context) (int64, error)
	Audit(ctx context.Context, limit int64) (domain.OutboxReport, error)
}

// Bridge provisions balance records in the background.
type Bridge struct {
	gateway     Gateway
	outbox      Outbox
	maxAttempts int
	outcomes    *prometheus.CounterVec
	now         func() time.Time
	wg          sync.WaitGroup
}

// New returns a bridge. A nil registry keeps its counters unregistered.
func New(gateway Gateway, outbox Outbox, maxAttempts int, reg prometheus.Registerer) *Bridge {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Bridge{
		gateway:     gateway,
		outbox:      outbox,
		maxAttempts: maxAttempts,
		outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "provisioning_total",
			Help: "Balance provisioning attempts, by outcome.",
		}, []string{"outcome"}),
		now: time.Now,
	}
}

// AfterRegister provisions the balance record of a registered identity
// without blocking the caller. Failures are logged and queued, never returned.
func (b *Bridge) AfterRegister(ctx context.Context, id string, balance decimal.Decimal) {
	ctx = context.WithoutCancel(ctx)
	task := domain.ProvisionTask{ID: id, Balance: balance, EnqueuedAt: b.now().UTC()}

	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		b.provision(ctx, task)
	}()
}

// Wait blocks until every provisioning started by AfterRegister has finished.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) provision(ctx context.Context, task domain.ProvisionTask) string {
	l := zerolog.Ctx(ctx).With().Str("id", task.ID).Int("attempts", task.Attempts).Logger()

	outcome := b.attempt(ctx, l, task)
	b.outcomes.WithLabelValues(outcome).Inc()

	return outcome
}

func (b *Bridge) attempt(ctx context.Context, l zerolog.Logger, task domain.ProvisionTask) string {
	_, err := b.gateway.CreateUser(ctx, task.ID, task.Balance)
	if err == nil || errorspkg.Is(err, errorspkg.KindConflict) {
		l.Info().Msg("balance record provisioned")
		return outcomeProvisioned
	}

	task.Attempts++
	task.LastError = err.Error()

	l.Warn().Err(err).Msg("balance provisioning failed")

	// A rejected request fails the same way every time.
	if task.Attempts >= b.maxAttempts || errorspkg.Is(err, errorspkg.KindValidation) {
		if err := b.outbox.Bury(ctx, task); err != nil {
			l.Error().Err(err).Msg("dead-letter provisioning task")
			return outcomeLost
		}

		l.Error().Msg("provisioning task moved to dead letters")

		return outcomeDeadLetter
	}

	if err := b.outbox.Push(ctx, task); err != nil {
		l.Error().Err(err).Msg("queue provisioning task")
		return outcomeLost
	}

	return outcomeRequeued
}

// Reconcile requeues claims left unacknowledged by an earlier pass, then
// retries every task queued when it starts.
func (b *Bridge) Reconcile(ctx context.Context) (domain.ProvisionReconcileReport, error) {
	var report domain.ProvisionReconcileReport

	l := zerolog.Ctx(ctx)

	recovered, err := b.outbox.Recover(ctx)
	if err != nil {
		return report, err
	}

	if recovered > 0 {
		l.Warn().Int64("recovered", recovered).Msg("unacknowledged provisioning tasks requeued")
	}

	n, err := b.outbox.Len(ctx)
	if err != nil {
		return report, err
	}

	for i := int64(0); i < n; i++ {
		claim, ok, err := b.outbox.Claim(ctx)
		if errors.Is(err, ErrCorruptTask) {
			l.Error().Err(err).Msg("provisioning task moved to dead letters")
			b.outcomes.WithLabelValues(outcomeDeadLetter).Inc()

			report.Processed++
			report.DeadLetter++

			continue
		}

		if err != nil {
			return report, err
		}

		if !ok {
			break
		}

		report.Processed++

		outcome := b.provision(ctx, claim.Task)

		// A lost outcome stays claimed and is requeued by the next pass.
		if outcome != outcomeLost {
			if err := b.outbox.Ack(ctx, claim); err != nil {
				l.Error().Err(err).Str("id", claim.Task.ID).Msg("acknowledge provisioning task")
			}
		}

		switch outcome {
		case outcomeProvisioned:
			report.Provisioned++
		case outcomeRequeued, outcomeLost:
			report.Requeued++
		default:
			report.DeadLetter++
		}
	}

	if report.Processed > 0 {
		l.Info().
			Int("processed", report.Processed).
			Int("provisioned", report.Provisioned).
			Int("requeued", report.Requeued).
			Int("dead_letter", report.DeadLetter).
			Msg("provisioning outbox reconciled")
	}

	return report, nil
}

// Audit describes the outbox, listing at most limit tasks of each list.
func (b *Bridge) Audit(ctx context.Context, limit int64) (domain.OutboxReport, error) {
	return b.outbox.Audit(ctx, limit)
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (b *Bridge) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Reconcile(ctx); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("reconcile provisioning outbox")
			}
		}
	}
}
