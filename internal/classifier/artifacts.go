package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/models"
)

// vectorizerArtifact is the serialized TF-IDF vectorizer: a term
// vocabulary mapping each term to its feature index, and per-feature
// inverse-document-frequency weights. Treated as opaque trained state.
type vectorizerArtifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// modelArtifact is the serialized linear classifier: one coefficient per
// feature plus an intercept. Class order is fixed: [fake, real].
type modelArtifact struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// ArtifactClassifier serves predictions from pre-trained artifacts
// loaded at startup. It holds no mutable state and is safe for
// concurrent use. Load the artifacts before the first Predict call.
type ArtifactClassifier struct {
	vectorizer vectorizerArtifact
	model      modelArtifact
	logger     *zap.Logger
}

// LoadArtifacts reads the vectorizer and model artifacts from disk.
// Any failure is an artifact-load error: the analyze path must stay
// blocked until the artifacts are fixed.
func LoadArtifacts(vectorizerPath, modelPath string, logger *zap.Logger) (*ArtifactClassifier, error) {
	var vec vectorizerArtifact
	if err := readJSON(vectorizerPath, &vec); err != nil {
		return nil, apperrors.NewArtifactLoad(vectorizerPath, err)
	}
	var mod modelArtifact
	if err := readJSON(modelPath, &mod); err != nil {
		return nil, apperrors.NewArtifactLoad(modelPath, err)
	}

	if len(vec.IDF) != len(mod.Coefficients) {
		return nil, apperrors.NewArtifactLoad(modelPath,
			fmt.Errorf("vectorizer has %d features but model has %d coefficients", len(vec.IDF), len(mod.Coefficients)))
	}
	for term, idx := range vec.Vocabulary {
		if idx < 0 || idx >= len(vec.IDF) {
			return nil, apperrors.NewArtifactLoad(vectorizerPath,
				fmt.Errorf("term %q maps to out-of-range feature index %d", term, idx))
		}
	}

	logger.Info("Loaded model artifacts",
		zap.String("vectorizer", vectorizerPath),
		zap.String("model", modelPath),
		zap.Int("features", len(vec.IDF)))

	return &ArtifactClassifier{vectorizer: vec, model: mod, logger: logger}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Predict vectorizes the normalized text and applies the linear model.
// Empty input yields a zero feature vector, a degenerate but legal case:
// the prediction then reflects only the model intercept.
func (c *ArtifactClassifier) Predict(_ context.Context, cleanText string) (models.Prediction, error) {
	vector := c.transform(cleanText)

	z := c.model.Intercept
	for idx, value := range vector {
		z += c.model.Coefficients[idx] * value
	}
	pReal := 1 / (1 + math.Exp(-z))

	return predictionFromReal(pReal), nil
}

// transform computes the sparse TF-IDF vector for the text: term counts
// over the vocabulary, scaled by idf and L2-normalized.
func (c *ArtifactClassifier) transform(cleanText string) map[int]float64 {
	vector := make(map[int]float64)
	for _, token := range strings.Fields(cleanText) {
		if idx, ok := c.vectorizer.Vocabulary[token]; ok {
			vector[idx]++
		}
	}

	var sumSquares float64
	for idx := range vector {
		vector[idx] *= c.vectorizer.IDF[idx]
		sumSquares += vector[idx] * vector[idx]
	}
	if sumSquares > 0 {
		norm := math.Sqrt(sumSquares)
		for idx := range vector {
			vector[idx] /= norm
		}
	}
	return vector
}
