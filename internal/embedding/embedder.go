package embedding

import "context"

// Dimension is the fixed dimensionality of every vector produced in this
// system. Vectors are intended for cosine-similarity comparison only.
const Dimension = 384

// Embedder converts a batch of texts into numeric vectors. Output length and
// order match the input; implementations never return partial batches.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
