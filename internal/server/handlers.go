package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ozodf/news-verifier/internal/classifier"
	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/feedback"
	"github.com/ozodf/news-verifier/internal/models"
	"github.com/ozodf/news-verifier/internal/textnorm"
)

// storeTimeout bounds every feedback store call made from a handler;
// the stores themselves impose no deadline.
const storeTimeout = 10 * time.Second

// Handlers contains HTTP route handlers for the verifier UI.
type Handlers struct {
	normalizer *textnorm.Normalizer
	classifier classifier.Classifier
	// classifierErr is the artifact-load failure, if any. While set,
	// the analyze action is blocked and the error shown to the user.
	classifierErr error
	recorder      *feedback.Recorder
	sessions      *SessionStore
	renderer      *Renderer
	logger        *zap.Logger
}

// HandleIndex handles GET / — the submission form, with the current
// session's result if one exists.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(w, r)

	h.renderer.renderPage(w, "index", IndexPageData{
		PageData:        PageData{Title: "News Verifier", Nav: "verify"},
		RawText:         sess.RawText,
		Result:          sess.Result,
		FeedbackGiven:   sess.FeedbackGiven,
		AnalyzeDisabled: h.classifierErr != nil,
	})
}

// HandleAnalyze handles POST /analyze — normalize, classify, render.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(w, r)

	if h.classifierErr != nil {
		h.logger.Error("Analyze blocked, model artifacts unavailable", zap.Error(h.classifierErr))
		h.renderer.renderError(w, h.classifierErr)
		return
	}

	rawText := r.FormValue("text")
	if strings.TrimSpace(rawText) == "" {
		h.renderer.renderPage(w, "index", IndexPageData{
			PageData: PageData{Title: "News Verifier", Nav: "verify"},
			Warning:  "Please enter some content to analyze.",
		})
		return
	}

	cleanText := h.normalizer.Normalize(rawText)
	prediction, err := h.classifier.Predict(r.Context(), cleanText)
	if err != nil {
		h.logger.Error("Prediction failed", zap.Error(err), zap.String("session_id", sess.ID))
		h.renderer.renderError(w, apperrors.NewInternal(err))
		return
	}

	// A new analysis starts a fresh feedback cycle.
	sess.RawText = rawText
	sess.CleanText = cleanText
	sess.Result = &prediction
	sess.FeedbackGiven = false
	h.sessions.Save(sess)

	h.logger.Info("Text analyzed",
		zap.String("session_id", sess.ID),
		zap.String("label", prediction.Label.String()),
		zap.Float64("real_probability", prediction.RealProbability))

	h.renderer.renderPage(w, "index", IndexPageData{
		PageData: PageData{Title: "News Verifier", Nav: "verify"},
		RawText:  rawText,
		Result:   &prediction,
	})
}

// HandleFeedback handles POST /feedback — record at most one correction
// per submission cycle.
func (h *Handlers) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(w, r)

	if sess.Result == nil {
		h.renderer.renderError(w, apperrors.NewInvalidRequest("analyze some text before giving feedback"))
		return
	}

	page := IndexPageData{
		PageData: PageData{Title: "News Verifier", Nav: "verify"},
		RawText:  sess.RawText,
		Result:   sess.Result,
	}

	if sess.FeedbackGiven {
		page.FeedbackGiven = true
		page.Message = "Feedback for this analysis was already recorded."
		h.renderer.renderPage(w, "index", page)
		return
	}

	choice := r.FormValue("label")
	if choice == "skip" {
		sess.FeedbackGiven = true
		h.sessions.Save(sess)
		page.FeedbackGiven = true
		page.Message = "No feedback recorded."
		h.renderer.renderPage(w, "index", page)
		return
	}

	label, ok := models.ParseLabel(choice)
	if !ok {
		h.renderer.renderError(w, apperrors.NewInvalidRequest("feedback label must be real, fake or skip"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	outcome, err := h.recorder.Record(ctx, sess.CleanText, label, sess.ID)
	switch outcome {
	case feedback.OutcomeRecorded:
		sess.FeedbackGiven = true
		page.Message = "Thank you! Your correction was recorded."
	case feedback.OutcomePartiallyRecorded:
		sess.FeedbackGiven = true
		page.Message = "Your correction was saved to the local backup; the remote store is unreachable."
	default:
		h.logger.Error("Feedback discarded", zap.Error(err), zap.String("session_id", sess.ID))
		page.Warning = "Your correction could not be saved. Please try again."
	}

	page.FeedbackGiven = sess.FeedbackGiven
	h.sessions.Save(sess)
	h.renderer.renderPage(w, "index", page)
}

// HandleStats handles GET /stats — aggregate feedback counts.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	h.renderer.renderPage(w, "stats", StatsPageData{
		PageData: PageData{Title: "Feedback Stats", Nav: "stats"},
		Stats:    h.recorder.Stats(ctx),
	})
}

// HandleAPIStats handles GET /api/stats — the same counts as JSON.
func (h *Handlers) HandleAPIStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	renderJSON(w, http.StatusOK, h.recorder.Stats(ctx))
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
