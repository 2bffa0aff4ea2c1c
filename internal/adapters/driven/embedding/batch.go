package embedding

import "strings"

// Partition separates the texts worth sending to the provider from the
// empty ones. It returns the surviving texts together with their
// original indices, so results can be scattered back without
// re-indexing errors.
func Partition(texts []string) (kept []string, indices []int) {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		kept = append(kept, text)
		indices = append(indices, i)
	}
	return kept, indices
}

// Scatter places provider results back into a slice sized to the
// original input. Positions whose input was filtered out keep the nil
// "no embedding" sentinel.
func Scatter(total int, indices []int, vectors [][]float32) [][]float32 {
	out := make([][]float32, total)
	for i, vec := range vectors {
		if i < len(indices) {
			out[indices[i]] = vec
		}
	}
	return out
}
