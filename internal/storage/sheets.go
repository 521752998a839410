package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/models"
)

// SheetsStore is the primary remote tier: a Google Sheets worksheet
// identified by a fixed spreadsheet id and worksheet name. The
// worksheet is created with a header row on first append if absent.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
	worksheet     string
	logger        *zap.Logger

	mu      sync.Mutex
	ensured bool
}

// NewSheetsStore builds the sheets tier. Missing configuration is a
// configuration error: the caller leaves this tier out of the chain and
// the recorder falls back to the local file.
func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID, worksheet string, logger *zap.Logger) (*SheetsStore, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, apperrors.NewConfiguration("sheets credentials file and spreadsheet id are required")
	}
	if worksheet == "" {
		worksheet = "feedback"
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("sheets client could not be created: %v", err))
	}

	return &SheetsStore{
		service:       service,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		logger:        logger,
	}, nil
}

func (s *SheetsStore) Name() string { return "sheets" }
func (s *SheetsStore) Remote() bool { return true }
func (s *SheetsStore) Close() error { return nil }

func (s *SheetsStore) Append(ctx context.Context, rec models.FeedbackRecord) error {
	if err := s.ensureWorksheet(ctx); err != nil {
		return err
	}

	row := []interface{}{
		rec.CleanText,
		strconv.Itoa(int(rec.Label)),
		rec.Timestamp.UTC().Format(timestampFormat),
		rec.SessionID,
	}
	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.worksheet+"!A1", &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}
	return nil
}

// Count returns the number of data rows in the worksheet (header
// excluded). A worksheet that does not exist yet counts as zero.
func (s *SheetsStore) Count(ctx context.Context) (int, error) {
	resp, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, s.worksheet+"!A:A").
		Context(ctx).
		Do()
	if err != nil {
		if !s.worksheetExists(ctx) {
			return 0, nil
		}
		return 0, apperrors.NewStoreUnavailable(s.Name(), err)
	}

	count := len(resp.Values)
	if count > 0 {
		count-- // header row
	}
	return count, nil
}

// ensureWorksheet creates the worksheet with the header row if it does
// not exist. Done once per process; appends are cheap afterwards.
func (s *SheetsStore) ensureWorksheet(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensured {
		return nil
	}

	doc, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}

	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.worksheet {
			s.ensured = true
			return nil
		}
	}

	s.logger.Info("Creating feedback worksheet",
		zap.String("spreadsheet_id", s.spreadsheetID),
		zap.String("worksheet", s.worksheet))

	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.worksheet},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}

	header := make([]interface{}, len(Header))
	for i, col := range Header {
		header[i] = col
	}
	_, err = s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.worksheet+"!A1", &sheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}

	s.ensured = true
	return nil
}

// worksheetExists distinguishes "worksheet missing" (a legal zero-count
// case) from a real API failure when reading counts. When the lookup
// itself fails it reports true so the original error is surfaced.
func (s *SheetsStore) worksheetExists(ctx context.Context) bool {
	doc, err := s.service.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return true
	}
	for _, sheet := range doc.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.worksheet {
			return true
		}
	}
	return false
}
