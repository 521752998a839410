package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ozodf/news-verifier/internal/classifier"
	"github.com/ozodf/news-verifier/internal/feedback"
	"github.com/ozodf/news-verifier/internal/textnorm"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewServer wires the router for the verifier UI. classifierErr, when
// non-nil, is the artifact-load failure: the server still starts so the
// stats and feedback pages work, but the analyze action stays blocked.
func NewServer(
	normalizer *textnorm.Normalizer,
	clf classifier.Classifier,
	classifierErr error,
	recorder *feedback.Recorder,
	logger *zap.Logger,
	host string,
	port int,
) *http.Server {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		logger.Fatal("Failed to create template sub-FS", zap.Error(err))
	}

	h := &Handlers{
		normalizer:    normalizer,
		classifier:    clf,
		classifierErr: classifierErr,
		recorder:      recorder,
		sessions:      NewSessionStore(),
		renderer:      NewRenderer(templateSub, logger),
		logger:        logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", h.HandleIndex)
	r.Post("/analyze", h.HandleAnalyze)
	r.Post("/feedback", h.HandleFeedback)
	r.Get("/stats", h.HandleStats)
	r.Get("/api/stats", h.HandleAPIStats)
	r.Get("/health", h.HandleHealth)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}
}

// Run starts the HTTP server and shuts down gracefully on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("News verifier running", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
