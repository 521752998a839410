package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/models"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title string
	Nav   string // active nav item: "verify", "stats"
}

// IndexPageData is the template data for the verification form page.
type IndexPageData struct {
	PageData
	RawText         string
	Result          *models.Prediction
	FeedbackGiven   bool
	Warning         string
	Message         string
	AnalyzeDisabled bool
}

// StatsPageData is the template data for the feedback stats page.
type StatsPageData struct {
	PageData
	Stats models.StoreStats
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

func NewRenderer(templateFS fs.FS, logger *zap.Logger) *Renderer {
	funcMap := template.FuncMap{
		"percent": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"index": "index.html",
		"stats": "stats.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{templates: templates, logger: logger}
}

func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("Template not found", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("Template execution failed", zap.Error(err), zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError maps the error taxonomy to an HTTP status and renders the
// error page. Messages are user-visible; causes stay in the logs.
func (r *Renderer) renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if aErr, ok := err.(*apperrors.AppError); ok {
		message = aErr.Message
		switch aErr.Code {
		case apperrors.ErrInvalidRequest:
			status = http.StatusBadRequest
		case apperrors.ErrArtifactLoad:
			status = http.StatusServiceUnavailable
		case apperrors.ErrStoreUnavailable, apperrors.ErrConfiguration:
			status = http.StatusBadGateway
		}
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData:   PageData{Title: fmt.Sprintf("Error %d", status)},
		StatusCode: status,
		Message:    message,
	})
}

func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
