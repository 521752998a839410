// Package bot is an optional Telegram front end to the verifier: send
// it text, get a verdict, answer the inline feedback buttons.
package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ozodf/news-verifier/internal/classifier"
	"github.com/ozodf/news-verifier/internal/feedback"
	"github.com/ozodf/news-verifier/internal/models"
	"github.com/ozodf/news-verifier/internal/textnorm"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	normalizer *textnorm.Normalizer
	classifier classifier.Classifier
	recorder   *feedback.Recorder
	logger     *zap.Logger

	// pending holds the normalized text of each chat's last analysis
	// until feedback arrives or a new analysis replaces it.
	mu      sync.Mutex
	pending map[int64]string
}

func New(token string, normalizer *textnorm.Normalizer, clf classifier.Classifier, recorder *feedback.Recorder, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:        api,
		normalizer: normalizer,
		classifier: clf,
		recorder:   recorder,
		logger:     logger,
		pending:    make(map[int64]string),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			go b.handleFeedbackCallback(update.CallbackQuery)
		case update.Message != nil:
			go b.handleMessage(update.Message)
		}
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(message)
		return
	}

	content := message.Text
	if strings.TrimSpace(content) == "" {
		b.sendMessage(message.Chat.ID, "Send me some news text to analyze.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleanText := b.normalizer.Normalize(content)
	prediction, err := b.classifier.Predict(ctx, cleanText)
	if err != nil {
		b.logger.Error("Failed to classify message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendMessage(message.Chat.ID, "Sorry, I couldn't analyze that. Please try again later.")
		return
	}

	b.mu.Lock()
	b.pending[message.Chat.ID] = cleanText
	b.mu.Unlock()

	b.sendVerdict(message.Chat.ID, message.MessageID, prediction)
}

func (b *Bot) handleCommand(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, "Welcome to News Verifier!\n"+
			"Send me any news text and I'll estimate whether it is fake or real.\n"+
			"Use /help to see all available commands.")
	case "help":
		b.sendMessage(message.Chat.ID, "Available commands:\n"+
			"/start - Start the bot\n"+
			"/help - Show this help message\n"+
			"/stats - Show collected feedback counts\n\n"+
			"Send any text message and I'll classify it. After each verdict you can "+
			"tell me the true label so the model can be retrained.")
	case "stats":
		b.handleStats(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStats(message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats := b.recorder.Stats(ctx)
	b.sendMessage(message.Chat.ID, fmt.Sprintf(
		"Collected feedback:\nRemote: %d\nLocal: %d\nTotal: %d",
		stats.RemoteCount, stats.LocalCount, stats.Total))
}

func (b *Bot) handleFeedbackCallback(query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	b.mu.Lock()
	cleanText, ok := b.pending[chatID]
	delete(b.pending, chatID)
	b.mu.Unlock()

	ack := tgbotapi.NewCallback(query.ID, "")
	if _, err := b.api.Request(ack); err != nil {
		b.logger.Error("Failed to answer callback query", zap.Error(err))
	}

	if !ok {
		b.sendMessage(chatID, "That analysis has expired. Send the text again to give feedback.")
		return
	}

	if query.Data == "skip" {
		b.sendMessage(chatID, "No feedback recorded.")
		return
	}

	label, valid := models.ParseLabel(query.Data)
	if !valid {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessionID := fmt.Sprintf("tg-%d", chatID)
	outcome, err := b.recorder.Record(ctx, cleanText, label, sessionID)
	switch outcome {
	case feedback.OutcomeRecorded:
		b.sendMessage(chatID, "Thank you! Your correction was recorded.")
	case feedback.OutcomePartiallyRecorded:
		b.sendMessage(chatID, "Your correction was saved to the local backup; the remote store is unreachable.")
	default:
		b.logger.Error("Feedback discarded",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendMessage(chatID, "Sorry, your correction could not be saved. Please try again.")
	}
}

func (b *Bot) sendVerdict(chatID int64, replyToID int, p models.Prediction) {
	var verdict string
	if p.Label == models.LabelFake {
		verdict = "🚨 LIKELY FAKE NEWS"
	} else {
		verdict = "✅ LIKELY AUTHENTIC"
	}

	text := fmt.Sprintf("%s\n\nFake: %.1f%%\nAuthentic: %.1f%%\n\nWhat is this really?",
		verdict, p.FakeProbability, p.RealProbability)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyToID
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Real news", "real"),
			tgbotapi.NewInlineKeyboardButtonData("Fake news", "fake"),
			tgbotapi.NewInlineKeyboardButtonData("No feedback", "skip"),
		),
	)

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send verdict",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
