// Package vectorindex is an in-memory brute-force nearest-neighbour index
// over embedding vectors. Search costs O(n·d) per query.
package vectorindex

import (
	"math"
	"sort"
	"sync"
)

// Entry pairs a record id with its embedding vector.
type Entry struct {
	ID     string
	Vector []float32
}

// Match is one search hit.
type Match struct {
	ID    string
	Score float64
}

// Index holds vectors in insertion order. It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int
}

// New returns an empty index.
func New() *Index {
	return &Index{byID: make(map[string]int)}
}

// Add appends entries. Vectors are copied so callers may reuse their slices.
// Re-adding a known id replaces its vector without changing its position.
func (x *Index) Add(entries ...Entry) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		stored := Entry{ID: entry.ID, Vector: append([]float32(nil), entry.Vector...)}
		if pos, ok := x.byID[entry.ID]; ok {
			x.entries[pos] = stored
			continue
		}
		x.byID[entry.ID] = len(x.entries)
		x.entries = append(x.entries, stored)
	}
}

// Search returns up to k entries ordered by descending cosine similarity.
// Equal scores keep insertion order.
func (x *Index) Search(query []float32, k int) []Match {
	if k <= 0 {
		return nil
	}
	x.mu.RLock()
	matches := make([]Match, len(x.entries))
	for i, entry := range x.entries {
		matches[i] = Match{ID: entry.ID, Score: CosineSimilarity(query, entry.Vector)}
	}
	x.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// Len reports the number of stored vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Reset drops every stored vector.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = nil
	x.byID = make(map[string]int)
}

// CosineSimilarity returns dot(a,b)/(|a|·|b|), or 0 when either magnitude is
// zero. A shorter vector is treated as zero-padded.
func CosineSimilarity(a, b []float32) float64 {
	n := max(len(a), len(b))
	var dot, normA, normB float64
	for i := range n {
		var ai, bi float64
		if i < len(a) {
			ai = float64(a[i])
		}
		if i < len(b) {
			bi = float64(b[i])
		}
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	magnitude := math.Sqrt(normA) * math.Sqrt(normB)
	if magnitude == 0 || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return 0
	}
	score := dot / magnitude
	if math.IsNaN(score) {
		return 0
	}
	return score
}
