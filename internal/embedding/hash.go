package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"otakurganizer/internal/textutil"
)

const (
	defaultHashDimensions = 384
	tokenWeight           = 1.0
	trigramWeight         = 0.5
)

// HashVectorizer derives vectors by feature hashing word tokens and their
// character trigrams. It is deterministic and never fails, so it serves as
// the offline fallback for the model-backed vectorizer.
type HashVectorizer struct {
	dims int
}

// NewHashVectorizer returns a hashing vectorizer with dims dimensions.
func NewHashVectorizer(dims int) *HashVectorizer {
	if dims <= 0 {
		dims = defaultHashDimensions
	}
	return &HashVectorizer{dims: dims}
}

func (h *HashVectorizer) Dimensions() int { return h.dims }

func (h *HashVectorizer) Name() string { return "hash" }

// Generate returns the L2-normalized hashed feature vector for text. Text
// without tokens yields the zero vector.
func (h *HashVectorizer) Generate(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acc := make([]float64, h.dims)
	for _, token := range textutil.Tokenize(text) {
		h.accumulate(acc, "w:"+token, tokenWeight)
		for _, gram := range textutil.Trigrams(token) {
			h.accumulate(acc, "g:"+gram, trigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, h.dims)
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// accumulate adds weight to the bucket for feature. The top hash bit picks
// the sign so unrelated collisions tend to cancel.
func (h *HashVectorizer) accumulate(acc []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	bucket := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}
