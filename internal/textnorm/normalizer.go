// Package textnorm turns raw user-submitted text into the cleaned token
// stream the vectorizer was trained on: lowercase lemmas, stopwords and
// short tokens removed, joined by single spaces.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/clipperhouse/uax29/words"
)

var (
	urlPattern = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	tagPattern = regexp.MustCompile(`<.*?>`)
	nonAlpha   = regexp.MustCompile(`[^a-zA-Z]`)
)

// minTokenLength drops tokens of length <= 2, matching what the model
// was trained on.
const minTokenLength = 3

// Normalizer maps raw input to normalized text. Construct it once at
// startup (it loads the lemmatizer dictionary) and before the first
// Normalize call; it is safe for concurrent use afterwards.
type Normalizer struct {
	lemmatizer *golem.Lemmatizer
	stopwords  map[string]struct{}
}

func New() (*Normalizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("loading lemmatizer dictionary: %w", err)
	}
	return &Normalizer{
		lemmatizer: lem,
		stopwords:  stopwordSet(),
	}, nil
}

// Normalize applies the fixed cleaning pipeline: lowercase, remove URLs
// and HTML-like tags, replace every non-ASCII-letter with a space,
// segment into words, drop stopwords and tokens shorter than three
// characters, lemmatize, and join with single spaces.
//
// The function is pure: identical input always yields identical output.
// Empty or all-stopword input yields an empty string, which the
// vectorizer treats as a zero feature vector.
func (n *Normalizer) Normalize(raw string) string {
	text := strings.ToLower(raw)
	text = urlPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	// Digits, punctuation and symbols all become spaces. Numeric
	// information is irretrievably lost here; accepted lossy choice.
	text = nonAlpha.ReplaceAllString(text, " ")

	var out []string
	seg := words.NewSegmenter([]byte(text))
	for seg.Next() {
		token := strings.TrimSpace(string(seg.Bytes()))
		if len(token) < minTokenLength {
			continue
		}
		if _, stop := n.stopwords[token]; stop {
			continue
		}
		lemma := n.lemmatizer.Lemma(token)
		// A dictionary lemma can be shorter than the minimum token
		// length ("goes" -> "go"). Keep the surface form in that case
		// so output tokens never fall below the minimum.
		if len(lemma) < minTokenLength {
			lemma = token
		}
		out = append(out, lemma)
	}
	return strings.Join(out, " ")
}
