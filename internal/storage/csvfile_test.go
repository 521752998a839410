package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ozodf/news-verifier/internal/models"
)

func testRecord(text string, label models.Label) models.FeedbackRecord {
	return models.FeedbackRecord{
		CleanText: text,
		Label:     label,
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		SessionID: "session-1",
	}
}

func TestCSVStoreCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback", "feedback.csv")
	store := NewCSVStore(path, zap.NewNop())

	err := store.Append(context.Background(), testRecord("sample clean text", models.LabelReal))
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "sample clean text", rows[1][0])
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, "session-1", rows[1][3])
}

func TestCSVStoreAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.csv")
	store := NewCSVStore(path, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, testRecord("first", models.LabelFake)))
	require.NoError(t, store.Append(ctx, testRecord("second", models.LabelReal)))
	// Duplicates are appended blindly; no dedup key exists.
	require.NoError(t, store.Append(ctx, testRecord("second", models.LabelReal)))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCSVStoreCountMissingFile(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "absent.csv"), zap.NewNop())

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCSVStoreCountEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	store := NewCSVStore(path, zap.NewNop())

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCSVStoreCountMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.csv")
	require.NoError(t, os.WriteFile(path, []byte("\"unterminated quote\nnot,csv,at all"), 0o644))
	store := NewCSVStore(path, zap.NewNop())

	// Malformed local store is treated as zero prior records, never an
	// error propagated to the caller.
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCSVStoreCountMinimalTwoColumnMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.csv")
	require.NoError(t, os.WriteFile(path, []byte("clean_text,label\nsome text,0\nother text,1\n"), 0o644))
	store := NewCSVStore(path, zap.NewNop())

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
