package classifier

import (
	"context"

	"github.com/ozodf/news-verifier/internal/models"
)

// Classifier produces a fake/real verdict for normalized text.
type Classifier interface {
	Predict(ctx context.Context, cleanText string) (models.Prediction, error)
}

// predictionFromReal builds a Prediction from the probability of the
// Real class. Probabilities are reported as percentages summing to 100;
// the label follows the larger one, ties going to Real to match the
// trained model's argmax convention (class order [fake, real]).
func predictionFromReal(pReal float64) models.Prediction {
	if pReal < 0 {
		pReal = 0
	}
	if pReal > 1 {
		pReal = 1
	}
	p := models.Prediction{
		FakeProbability: (1 - pReal) * 100,
		RealProbability: pReal * 100,
		Label:           models.LabelFake,
	}
	if p.RealProbability >= p.FakeProbability {
		p.Label = models.LabelReal
	}
	return p
}
