package embedding

import (
	"context"
	"fmt"
)

// Embedder is the boundary to the external text-to-vector function. Every
// call within one deployment returns vectors of the same dimensionality, and
// unembeddable input fails explicitly - never a silent zero vector.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// ValidateVectors enforces the provider contract on a batch response:
// right count, uniform dimension, non-zero norm.
func ValidateVectors(vectors [][]float32, want int, dimension int) error {
	if len(vectors) != want {
		return fmt.Errorf("provider returned %d vectors for %d inputs", len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("vector %d has dimension %d, provider promised %d", i, len(v), dimension)
		}
		zero := true
		for _, x := range v {
			if x != 0 {
				zero = false
				break
			}
		}
		if zero {
			return fmt.Errorf("vector %d is all zeros", i)
		}
	}
	return nil
}
