package textnorm

import (
	"strings"
	"testing"
	"unicode"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return n
}

func TestNormalizeRemovesURLs(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize("Check this out at http://example.com/a")
	if strings.Contains(got, "http") || strings.Contains(got, "example") {
		t.Errorf("URL leaked into normalized output: %q", got)
	}
}

func TestNormalizeStripsHTMLTags(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Normalize("<b>BREAKING</b> news today")
	if strings.ContainsAny(got, "<>") {
		t.Errorf("tag characters leaked into output: %q", got)
	}
	// breaking/news/today are all non-stopwords of length > 2, so each
	// must survive as one lemma.
	if tokens := strings.Fields(got); len(tokens) != 3 {
		t.Errorf("expected 3 tokens, got %v", tokens)
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{
		"Hello, World! 123",
		"Ünïcödé † symbols ¶ everywhere",
		"tabs\tand\nnewlines",
		"MIXED case WITH 99 numbers and $igns",
		"<div class='x'>markup</div> plus http://t.co/abc123",
	}
	for _, input := range inputs {
		got := n.Normalize(input)
		for _, r := range got {
			if r != ' ' && !(unicode.IsLower(r) && r <= unicode.MaxASCII) {
				t.Errorf("Normalize(%q) produced non-lowercase-ASCII rune %q in %q", input, r, got)
			}
		}
		for _, token := range strings.Fields(got) {
			if len(token) < 3 {
				t.Errorf("Normalize(%q) produced short token %q", input, token)
			}
		}
		if strings.Contains(got, "  ") {
			t.Errorf("Normalize(%q) produced doubled space: %q", input, got)
		}
	}
}

func TestNormalizeEmptyAndStopwordOnly(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   \t\n  "},
		{name: "stopwords only", input: "the is at and but"},
		{name: "short tokens only", input: "a an it to of"},
		{name: "contraction collapses to stopwords", input: "Don't"},
		{name: "digits and punctuation only", input: "123 !!! ??? 456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != "" {
				t.Errorf("Normalize(%q) = %q, want empty", tt.input, got)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := newTestNormalizer(t)

	input := "Scientists discover that running daily improves health outcomes!"
	first := n.Normalize(input)
	for i := 0; i < 5; i++ {
		if got := n.Normalize(input); got != first {
			t.Fatalf("normalization not deterministic: %q vs %q", got, first)
		}
	}
}

func TestNormalizeFixedPoint(t *testing.T) {
	n := newTestNormalizer(t)

	// Once text contains only lowercase lemmas with no stopwords,
	// normalizing again must be a no-op.
	inputs := []string{
		"Running dogs chased the houses",
		"BREAKING news today",
		"government officials announced new policies yesterday",
	}
	for _, input := range inputs {
		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not a fixed point: Normalize(%q) = %q, re-normalized to %q", input, once, twice)
		}
	}
}
