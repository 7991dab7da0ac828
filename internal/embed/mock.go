package embed

import (
	"context"
	"math"

	"github.com/ticketdrift/backend/internal/utils"
)

// MockEmbedder produces deterministic unit vectors seeded from the text's
// FNV hash. Used when no embedding service is configured; identical texts
// always map to identical vectors, so drift results stay reproducible.
type MockEmbedder struct {
	Dimension int
}

func (m MockEmbedder) Dim() int {
	return m.Dimension
}

func (m MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		out = append(out, m.vector(text))
	}
	return out, nil
}

func (m MockEmbedder) vector(text string) []float64 {
	seed := utils.HashStringToUint64(text)
	v := make([]float64, m.Dimension)
	var norm float64
	state := seed
	for i := range v {
		// xorshift64 keeps the sequence cheap and fully determined by the seed.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v[i] = float64(int64(state%2000)-1000) / 1000.0
		norm += v[i] * v[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		v[0] = 1.0
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}
