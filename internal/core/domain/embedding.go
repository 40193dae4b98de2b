package domain

// Embedding is a fixed-length vector representation of an item's text.
// All embeddings compared against one another must share dimensionality;
// the dimension is fixed by the embedding provider configuration.
type Embedding []float64

// Dimensions returns the length of the vector.
func (e Embedding) Dimensions() int {
	return len(e)
}

// IsZero returns true if every component is zero. A zero vector has no
// direction and cannot participate in cosine comparisons.
func (e Embedding) IsZero() bool {
	for _, v := range e {
		if v != 0 {
			return false
		}
	}
	return true
}

// Centroid returns the element-wise mean of the given embeddings.
// The result is NOT re-normalised; a reference set that spans multiple
// directions produces a short centroid, which is intentional.
// Returns nil for an empty input.
func Centroid(embeddings []Embedding) Embedding {
	if len(embeddings) == 0 {
		return nil
	}

	dims := embeddings[0].Dimensions()
	sum := make(Embedding, dims)
	for _, e := range embeddings {
		if e.Dimensions() != dims {
			return nil
		}
		for i, v := range e {
			sum[i] += v
		}
	}

	n := float64(len(embeddings))
	for i := range sum {
		sum[i] /= n
	}
	return sum
}
