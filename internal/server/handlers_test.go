package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/feedback"
	"github.com/ozodf/news-verifier/internal/models"
	"github.com/ozodf/news-verifier/internal/storage"
	"github.com/ozodf/news-verifier/internal/textnorm"
)

type stubClassifier struct {
	prediction models.Prediction
	err        error
}

func (s stubClassifier) Predict(_ context.Context, _ string) (models.Prediction, error) {
	return s.prediction, s.err
}

type testApp struct {
	ts     *httptest.Server
	client *http.Client
	store  *storage.MemoryStore
}

func newTestApp(t *testing.T, clf stubClassifier, clfErr error) *testApp {
	t.Helper()

	normalizer, err := textnorm.New()
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	recorder := feedback.NewRecorder(zap.NewNop(), store)

	srv := NewServer(normalizer, clf, clfErr, recorder, zap.NewNop(), "127.0.0.1", 0)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		ts:     ts,
		client: &http.Client{Jar: jar},
		store:  store,
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.ts.URL + path)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.ts.URL+path, form)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func realPrediction() stubClassifier {
	return stubClassifier{prediction: models.Prediction{
		Label:           models.LabelReal,
		FakeProbability: 30.0,
		RealProbability: 70.0,
	}}
}

func TestIndexPage(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	resp, body := app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "News Verifier")
	assert.Contains(t, body, "Analyze Content")
}

func TestAnalyzeEmptyTextShowsWarning(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	resp, body := app.post(t, "/analyze", url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter some content to analyze.")
}

func TestAnalyzeRendersVerdict(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	_, body := app.post(t, "/analyze", url.Values{"text": {"Government officials announced new policies today."}})
	assert.Contains(t, body, "LIKELY AUTHENTIC")
	assert.Contains(t, body, "30.0")
	assert.Contains(t, body, "70.0")
	assert.Contains(t, body, "No feedback")
}

func TestAnalyzeBlockedWhenArtifactsMissing(t *testing.T) {
	loadErr := apperrors.NewArtifactLoad("model.json", nil)
	app := newTestApp(t, stubClassifier{}, loadErr)

	resp, body := app.post(t, "/analyze", url.Values{"text": {"anything"}})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "could not be loaded")

	// The form page warns too instead of offering the textarea.
	_, body = app.get(t, "/")
	assert.Contains(t, body, "model is currently unavailable")
}

func TestFeedbackWithoutAnalysisRejected(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	resp, _ := app.post(t, "/feedback", url.Values{"label": {"real"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedbackRecordedOncePerCycle(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	app.post(t, "/analyze", url.Values{"text": {"Some breaking news story"}})

	_, body := app.post(t, "/feedback", url.Values{"label": {"fake"}})
	assert.Contains(t, body, "Your correction was recorded")
	require.Len(t, app.store.Records(), 1)
	assert.Equal(t, models.LabelFake, app.store.Records()[0].Label)
	assert.NotEmpty(t, app.store.Records()[0].SessionID)

	// Second attempt in the same cycle records nothing.
	_, body = app.post(t, "/feedback", url.Values{"label": {"real"}})
	assert.Contains(t, body, "already recorded")
	assert.Len(t, app.store.Records(), 1)

	// A fresh analysis opens a new cycle.
	app.post(t, "/analyze", url.Values{"text": {"Another story entirely"}})
	app.post(t, "/feedback", url.Values{"label": {"real"}})
	assert.Len(t, app.store.Records(), 2)
}

func TestFeedbackSkipRecordsNothing(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	app.post(t, "/analyze", url.Values{"text": {"Some story"}})
	_, body := app.post(t, "/feedback", url.Values{"label": {"skip"}})
	assert.Contains(t, body, "No feedback recorded")
	assert.Empty(t, app.store.Records())
}

func TestFeedbackStoredTextIsNormalized(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	app.post(t, "/analyze", url.Values{"text": {"<b>BREAKING</b> News at http://example.com today!!!"}})
	app.post(t, "/feedback", url.Values{"label": {"fake"}})

	require.Len(t, app.store.Records(), 1)
	stored := app.store.Records()[0].CleanText
	assert.NotContains(t, stored, "<")
	assert.NotContains(t, stored, "http")
	assert.Equal(t, strings.ToLower(stored), stored)
}

func TestStatsEndpoints(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	app.post(t, "/analyze", url.Values{"text": {"Some story"}})
	app.post(t, "/feedback", url.Values{"label": {"real"}})

	resp, body := app.get(t, "/api/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.StoreStats
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.GreaterOrEqual(t, stats.Total, 1)

	_, page := app.get(t, "/stats")
	assert.Contains(t, page, "Collected Feedback")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, realPrediction(), nil)

	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}
