package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ozodf/news-verifier/internal/models"
)

type llmVerdict struct {
	Label           string  `json:"label"`
	FakeProbability float64 `json:"fake_probability"`
	RealProbability float64 `json:"real_probability"`
}

// OpenAIClassifier asks a chat model for a fake/real verdict. It is an
// optional alternative to the artifact classifier; when the API call or
// response parsing fails it defers to the fallback classifier so the
// analyze path keeps working.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	fallback    Classifier
	logger      *zap.Logger
}

func NewOpenAIClassifier(apiKey, model string, maxTokens int, temperature float64, fallback Classifier, logger *zap.Logger) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		fallback:    fallback,
		logger:      logger,
	}
}

func (c *OpenAIClassifier) Predict(ctx context.Context, cleanText string) (models.Prediction, error) {
	prompt := fmt.Sprintf(`You are a news credibility classifier. Assess whether the following
normalized news text is fake or real.

Return only a JSON object with this structure:
{
    "label": "fake" or "real",
    "fake_probability": 0.0-100.0,
    "real_probability": 0.0-100.0
}
The two probabilities must sum to 100.

Text: %s`, cleanText)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get LLM verdict", zap.Error(err))
		return c.fallbackPredict(ctx, cleanText, err)
	}

	var verdict llmVerdict
	response := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(response), &verdict); err != nil {
		c.logger.Error("Failed to parse LLM verdict",
			zap.Error(err),
			zap.String("response", response))
		return c.fallbackPredict(ctx, cleanText, err)
	}

	total := verdict.FakeProbability + verdict.RealProbability
	if total <= 0 {
		return c.fallbackPredict(ctx, cleanText, fmt.Errorf("verdict probabilities sum to %v", total))
	}
	return predictionFromReal(verdict.RealProbability / total), nil
}

func (c *OpenAIClassifier) fallbackPredict(ctx context.Context, cleanText string, cause error) (models.Prediction, error) {
	if c.fallback == nil {
		return models.Prediction{}, cause
	}
	return c.fallback.Predict(ctx, cleanText)
}
