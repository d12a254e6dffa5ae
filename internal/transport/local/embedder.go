// Package local provides an offline feature-hashing embedder. It needs no network and
// no model files, so it backs development setups and tests.
package local

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/nlp"
)

// stemLen is the rune prefix used as a crude stem so inflected forms share a bucket.
const stemLen = 5

const (
	wordWeight = 1.0
	stemWeight = 0.7
)

// Embedder hashes word and stem features into a fixed-size signed vector and L2-normalizes it.
// Texts sharing vocabulary score a positive cosine; unrelated texts score near zero.
type Embedder struct {
	dim int
}

// NewEmbedder creates a hashing embedder. dim <= 0 selects domain.DefaultDimensions.
func NewEmbedder(dim int) *Embedder {
	if dim <= 0 {
		dim = domain.DefaultDimensions
	}
	return &Embedder{dim: dim}
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dim }

// Embed implements domain.Embedder. Token counts are reported as zero: nothing is billed.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // context error
	}
	return domain.EmbeddingResult{Embedding: e.vector(text)}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return domain.BatchEmbeddingResult{}, err //nolint:wrapcheck // context error
		}
		out[i] = e.vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vector(text string) []float32 {
	acc := make([]float64, e.dim)
	for _, tok := range nlp.Tokenize(text) {
		if nlp.IsStopword(tok) {
			continue
		}
		e.add(acc, "w:"+tok, wordWeight)
		if r := []rune(tok); len(r) > stemLen {
			e.add(acc, "s:"+string(r[:stemLen]), stemWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dim)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// add folds one feature into acc; the top hash bit picks the sign to cancel collisions on average.
func (e *Embedder) add(acc []float64, feature string, w float64) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(e.dim))
	if h>>63 == 1 {
		w = -w
	}
	acc[idx] += w
}
