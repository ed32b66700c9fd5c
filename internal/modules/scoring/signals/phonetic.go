package signals

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// PhoneticSimilarity compares the metaphone skeletons of a sentence and a
// theme's keyword text. The result is the indel similarity ratio
// 1 - d/(|a|+|b|) in [0,1], where d is the LCS edit distance. An empty keyword
// text, or an input that encodes to nothing, scores 0.
func PhoneticSimilarity(sentence, kwText string) float64 {
	if strings.TrimSpace(kwText) == "" {
		return 0
	}
	ms := MetaphoneText(strings.ToLower(sentence))
	mt := MetaphoneText(strings.ToLower(kwText))
	if strings.TrimSpace(ms) == "" || strings.TrimSpace(mt) == "" {
		return 0
	}
	total := len([]rune(ms)) + len([]rune(mt))
	d := edlib.LCSEditDistance(ms, mt)
	sim := 1 - float64(d)/float64(total)
	if sim < 0 {
		return 0
	}
	return sim
}

// PhoneticSimilarities scores every sentence against one keyword text.
func PhoneticSimilarities(sentences []string, kwText string) []float64 {
	out := make([]float64, len(sentences))
	if strings.TrimSpace(kwText) == "" {
		return out
	}
	for i, s := range sentences {
		out[i] = PhoneticSimilarity(s, kwText)
	}
	return out
}
