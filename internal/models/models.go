package models

import "time"

// Label is the classifier's verdict for a piece of text.
// The encoding is fixed by the trained model: 0 = Fake, 1 = Real.
type Label int

const (
	LabelFake Label = 0
	LabelReal Label = 1
)

func (l Label) String() string {
	if l == LabelReal {
		return "real"
	}
	return "fake"
}

// ParseLabel maps the user-facing feedback values to a Label.
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "real", "1":
		return LabelReal, true
	case "fake", "0":
		return LabelFake, true
	}
	return 0, false
}

// Prediction is the result of classifying one submission.
// Probabilities are percentages and sum to 100.
type Prediction struct {
	Label           Label   `json:"label"`
	FakeProbability float64 `json:"fake_probability"`
	RealProbability float64 `json:"real_probability"`
}

// FeedbackRecord is one user correction, appended to the feedback store
// for later retraining. Records are never mutated or deleted.
type FeedbackRecord struct {
	CleanText string    `json:"clean_text"`
	Label     Label     `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// StoreStats reports aggregate feedback counts across store tiers.
// Total is max(remote, local): the local file is normally a fallback
// mirror of the remote sheet, so summing would double count. When the
// two tiers hold disjoint records this undercounts; accepted.
type StoreStats struct {
	RemoteCount int `json:"remote_count"`
	LocalCount  int `json:"local_count"`
	Total       int `json:"total_feedback"`
}

// Session holds the per-user transient state threaded through the web
// handlers: the last analyzed text, its prediction, and whether feedback
// was already given for the current submission cycle.
type Session struct {
	ID            string
	RawText       string
	CleanText     string
	Result        *Prediction
	FeedbackGiven bool
	CreatedAt     time.Time
	LastSeenAt    time.Time
}
