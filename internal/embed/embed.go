package embed

import "context"

// Embedder turns ticket text into fixed-length vectors. The embedding model
// itself runs outside this service; the engine only ever consumes the
// resulting vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dim() int
}
