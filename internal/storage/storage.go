// Package storage provides the feedback store tiers. Every tier is
// append-only: records are added one at a time and never mutated or
// deleted by this system.
package storage

import (
	"context"
	"time"

	"github.com/ozodf/news-verifier/internal/models"
)

// FeedbackStore is one tier of the feedback persistence chain. The
// recorder tries tiers in order; a tier failing Append is skipped, not
// retried. Appends are atomic at the row level as far as the backing
// store guarantees; no ordering is promised across concurrent sessions.
type FeedbackStore interface {
	Append(ctx context.Context, rec models.FeedbackRecord) error
	Count(ctx context.Context) (int, error)
	// Name identifies the tier in logs and error messages.
	Name() string
	// Remote reports whether this tier is a remote store. Stats treats
	// the first remote tier as the primary count source.
	Remote() bool
	Close() error
}

// Header is the column layout shared by the spreadsheet worksheet, the
// local CSV file and the Postgres table.
var Header = []string{"clean_text", "label", "timestamp", "session_id"}

const timestampFormat = time.RFC3339
