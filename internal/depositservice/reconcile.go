package depositservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-roulette/internal/domain"
	"github.com/go-petr/pet-roulette/pkg/configpkg"
)

const errOverwriteReplay = "absolute balance write cannot be replayed safely"

// Reconcile finishes deposits that were paid but not credited.
//
// Deposits left confirmed by a failed credit are credited again in ledger mode
// and flagged for review in overwrite mode. Deposits awaiting settlement are
// credited once the processor reports success and failed once it reports the
// intent canceled.
func (s *Service) Reconcile(ctx context.Context) (domain.ReconcileReport, error) {
	l := zerolog.Ctx(ctx)

	var report domain.ReconcileReport

	open, err := s.repo.ListOpen(ctx,
		[]string{domain.StateConfirmed, domain.StateAwaitingSettlement},
		s.now().Add(-s.gracePeriod),
		s.batchSize,
	)
	if err != nil {
		return report, err
	}

	for _, d := range open {
		report.Scanned++

		outcome := s.reconcileOne(ctx, d)
		s.metrics.reconcile.WithLabelValues(outcome).Inc()

		switch outcome {
		case outcomeCredited:
			report.Credited++
		case outcomeFailed:
			report.Failed++
		case outcomeReview:
			report.Review++
		default:
			report.StillOpen++
		}
	}

	if report.Scanned > 0 {
		l.Info().
			Int("scanned", report.Scanned).
			Int("credited", report.Credited).
			Int("failed", report.Failed).
			Int("review", report.Review).
			Int("still_open", report.StillOpen).
			Msg("deposits reconciled")
	}

	return report, nil
}

func (s *Service) reconcileOne(ctx context.Context, d domain.Deposit) string {
	l := zerolog.Ctx(ctx).With().Str("payment_intent_id", d.PaymentIntentID).Str("state", d.State).Logger()

	if d.State == domain.StateConfirmed {
		if s.creditMode == configpkg.CreditModeOverwrite {
			s.markState(ctx, d.PaymentIntentID, domain.StateNeedsReview, "", errOverwriteReplay)
			l.Warn().Msg("deposit needs review")

			return outcomeReview
		}

		if _, err := s.credit(ctx, d, nil); err != nil {
			l.Error().Err(err).Msg("credit retry failed")
			return outcomeStillOpen
		}

		return outcomeCredited
	}

	intent, err := s.payments.GetIntent(ctx, d.PaymentIntentID)
	if err != nil {
		l.Error().Err(err).Msg("retrieve payment intent")
		return outcomeStillOpen
	}

	switch intent.Status {
	case domain.IntentSucceeded:
		if _, err := s.credit(ctx, d, nil); err != nil {
			l.Error().Err(err).Msg("credit settled deposit")

			if s.creditMode == configpkg.CreditModeOverwrite {
				s.markState(ctx, d.PaymentIntentID, domain.StateNeedsReview, intent.Status, err.Error())
				return outcomeReview
			}

			return outcomeStillOpen
		}

		return outcomeCredited
	case domain.IntentCanceled:
		s.markState(ctx, d.PaymentIntentID, domain.StateFailed, intent.Status, "payment intent canceled")
		return outcomeFailed
	default:
		// Touching the row moves it behind fresher deposits in the next batch.
		s.markState(ctx, d.PaymentIntentID, domain.StateAwaitingSettlement, intent.Status, "")
		return outcomeStillOpen
	}
}

func (s *Service) markState(ctx context.Context, id, state, intentStatus, lastError string) {
	_, err := s.repo.UpdateState(ctx, domain.UpdateDepositStateParams{
		PaymentIntentID: id,
		State:           state,
		IntentStatus:    intentStatus,
		LastError:       lastError,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("payment_intent_id", id).Msg("update deposit state")
	}
}

// RunReconciler calls Reconcile every interval until ctx is done.
func (s *Service) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("reconcile deposits")
			}
		}
	}
}
