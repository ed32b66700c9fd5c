package signals

// SemanticSimilarity scores each sentence vector against one theme vector.
// Both sides are expected to be unit length, so the dot product is the
// cosine. Negative similarity is floored to 0. A vector whose dimension does
// not match the theme scores 0.
func SemanticSimilarity(sentences [][]float32, theme []float32) []float64 {
	out := make([]float64, len(sentences))
	for i, v := range sentences {
		if len(v) != len(theme) || len(v) == 0 {
			continue
		}
		var dot float64
		for j := range v {
			dot += float64(v[j]) * float64(theme[j])
		}
		if dot > 1 {
			dot = 1
		}
		if dot > 0 {
			out[i] = dot
		}
	}
	return out
}
