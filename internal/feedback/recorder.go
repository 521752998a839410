// Package feedback persists user corrections through an ordered chain
// of store tiers: remote spreadsheet first, local file as fallback.
package feedback

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/models"
	"github.com/ozodf/news-verifier/internal/storage"
)

// Outcome is the terminal state of one feedback submission.
type Outcome int

const (
	// OutcomeRecorded: the primary tier accepted the record.
	OutcomeRecorded Outcome = iota
	// OutcomePartiallyRecorded: the primary tier failed but a fallback
	// tier accepted the record (typically local-only).
	OutcomePartiallyRecorded
	// OutcomeFailed: every tier failed; the record is discarded. This
	// is the accepted data-loss boundary and is surfaced to the caller.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomePartiallyRecorded:
		return "partially_recorded"
	default:
		return "failed"
	}
}

// Recorder appends correction records to the first store tier that
// accepts them. Tiers are tried synchronously in order; there is no
// retry and no cancellation mid-chain. Every call appends a new row:
// duplicate submissions produce duplicate rows.
type Recorder struct {
	stores []storage.FeedbackStore
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(logger *zap.Logger, stores ...storage.FeedbackStore) *Recorder {
	return &Recorder{
		stores: stores,
		logger: logger,
		now:    time.Now,
	}
}

// Record builds a feedback record and walks the store chain. It returns
// the terminal outcome; the error is non-nil only when all tiers fail.
func (r *Recorder) Record(ctx context.Context, cleanText string, label models.Label, sessionID string) (Outcome, error) {
	rec := models.FeedbackRecord{
		CleanText: cleanText,
		Label:     label,
		Timestamp: r.now(),
		SessionID: sessionID,
	}

	var lastErr error
	for i, store := range r.stores {
		if err := store.Append(ctx, rec); err != nil {
			r.logger.Warn("Feedback store tier rejected record",
				zap.Error(err),
				zap.String("tier", store.Name()),
				zap.String("session_id", sessionID))
			lastErr = err
			continue
		}

		r.logger.Info("Feedback recorded",
			zap.String("tier", store.Name()),
			zap.String("label", label.String()),
			zap.String("session_id", sessionID))

		if i == 0 {
			return OutcomeRecorded, nil
		}
		return OutcomePartiallyRecorded, nil
	}

	if lastErr == nil {
		lastErr = apperrors.NewInternal(nil)
	}
	r.logger.Error("All feedback store tiers failed, record discarded",
		zap.Error(lastErr),
		zap.String("session_id", sessionID))
	return OutcomeFailed, lastErr
}

// Stats reports aggregate record counts: the first remote tier's count,
// the first local tier's count, and total = max of the two. The max
// merge avoids double counting when the local file only mirrors the
// remote sheet; it undercounts when the tiers hold disjoint records,
// a documented limitation. A tier whose count fails contributes zero;
// Stats never returns an error.
func (r *Recorder) Stats(ctx context.Context) models.StoreStats {
	var stats models.StoreStats
	remoteSeen, localSeen := false, false

	for _, store := range r.stores {
		if store.Remote() && !remoteSeen {
			remoteSeen = true
			stats.RemoteCount = r.countOrZero(ctx, store)
		}
		if !store.Remote() && !localSeen {
			localSeen = true
			stats.LocalCount = r.countOrZero(ctx, store)
		}
	}

	stats.Total = stats.RemoteCount
	if stats.LocalCount > stats.Total {
		stats.Total = stats.LocalCount
	}
	return stats
}

func (r *Recorder) countOrZero(ctx context.Context, store storage.FeedbackStore) int {
	count, err := store.Count(ctx)
	if err != nil {
		r.logger.Warn("Feedback store tier count failed",
			zap.Error(err),
			zap.String("tier", store.Name()))
		return 0
	}
	return count
}

// Close closes every tier in the chain.
func (r *Recorder) Close() {
	for _, store := range r.stores {
		if err := store.Close(); err != nil {
			r.logger.Warn("Failed to close feedback store",
				zap.Error(err),
				zap.String("tier", store.Name()))
		}
	}
}
