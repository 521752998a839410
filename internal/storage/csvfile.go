package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/models"
)

// CSVStore is the local fallback tier: an append-only CSV file created
// lazily with a header row on first write. Reads tolerate an absent,
// empty or malformed file by treating it as zero records.
type CSVStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	return &CSVStore{path: path, logger: logger}
}

func (s *CSVStore) Name() string { return "csv" }
func (s *CSVStore) Remote() bool { return false }
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) Append(ctx context.Context, rec models.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if empty, err := fileEmpty(f); err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	} else if empty {
		if err := w.Write(Header); err != nil {
			return apperrors.NewStoreUnavailable(s.Name(), err)
		}
	}

	row := []string{
		rec.CleanText,
		strconv.Itoa(int(rec.Label)),
		rec.Timestamp.UTC().Format(timestampFormat),
		rec.SessionID,
	}
	if err := w.Write(row); err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}
	return nil
}

// Count returns the number of data rows in the file. A missing, empty
// or malformed file counts as zero prior records; corruption is logged
// and recovered locally, never propagated to the caller.
func (s *CSVStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, apperrors.NewStoreUnavailable(s.Name(), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// The file may be in minimal two-column mode or full four-column
	// backup mode; accept both.
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		s.logger.Warn("Local feedback file is malformed, treating as empty",
			zap.Error(apperrors.NewCorruptLocalStore(s.path, err)),
			zap.String("path", s.path))
		return 0, nil
	}

	count := 0
	for i, row := range records {
		if len(row) == 0 {
			continue
		}
		if i == 0 && row[0] == Header[0] {
			continue
		}
		count++
	}
	return count, nil
}

func fileEmpty(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat feedback file: %w", err)
	}
	return info.Size() == 0, nil
}
