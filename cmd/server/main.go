package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ozodf/news-verifier/internal/bot"
	"github.com/ozodf/news-verifier/internal/classifier"
	"github.com/ozodf/news-verifier/internal/feedback"
	"github.com/ozodf/news-verifier/internal/server"
	"github.com/ozodf/news-verifier/internal/storage"
	"github.com/ozodf/news-verifier/internal/textnorm"
	"github.com/ozodf/news-verifier/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialization order: the normalizer loads its stopword set and
	// lemmatizer dictionary before the first Normalize call, and the
	// model artifacts load before the first Predict call.
	normalizer, err := textnorm.New()
	if err != nil {
		logger.Fatal("Failed to initialize normalizer", zap.Error(err))
	}

	var clf classifier.Classifier
	artifactClf, clfErr := classifier.LoadArtifacts(cfg.Model.VectorizerPath, cfg.Model.ClassifierPath, logger)
	if clfErr != nil {
		// Fatal to the analyze path only: the server still serves the
		// stats page, and the error is surfaced on the form.
		logger.Error("Model artifacts unavailable, analysis is blocked until resolved", zap.Error(clfErr))
	} else {
		clf = artifactClf
	}

	if cfg.OpenAI.Enabled && cfg.OpenAI.APIKey != "" {
		logger.Info("Using OpenAI classifier", zap.String("model", cfg.OpenAI.Model))
		clf = classifier.NewOpenAIClassifier(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			clf,
			logger,
		)
		clfErr = nil
	}

	// Build the feedback store chain: remote tiers first, the local CSV
	// file always last as the fallback of record.
	ctx := context.Background()
	var stores []storage.FeedbackStore

	sheetsStore, err := storage.NewSheetsStore(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.Worksheet, logger)
	if err != nil {
		logger.Warn("Remote spreadsheet tier disabled", zap.Error(err))
	} else {
		logger.Info("Using Google Sheets feedback store",
			zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID),
			zap.String("worksheet", cfg.Sheets.Worksheet))
		stores = append(stores, sheetsStore)
	}

	if cfg.Database.Enabled {
		pgStore, err := storage.NewPostgresStore(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Error("Failed to initialize postgres tier", zap.Error(err))
		} else {
			logger.Info("Using PostgreSQL feedback store")
			stores = append(stores, pgStore)
		}
	}

	stores = append(stores, storage.NewCSVStore(cfg.Feedback.LocalPath, logger))

	recorder := feedback.NewRecorder(logger, stores...)
	defer recorder.Close()

	// Optional Telegram surface; needs a working classifier.
	if cfg.Telegram.Token != "" && clf != nil {
		b, err := bot.New(cfg.Telegram.Token, normalizer, clf, recorder, logger)
		if err != nil {
			logger.Error("Failed to create telegram bot", zap.Error(err))
		} else {
			go func() {
				if err := b.Start(); err != nil {
					logger.Error("Telegram bot stopped", zap.Error(err))
				}
			}()
		}
	}

	srv := server.NewServer(normalizer, clf, clfErr, recorder, logger, cfg.Server.Host, cfg.Server.Port)
	if err := server.Run(srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server error", zap.Error(err))
	}
}
