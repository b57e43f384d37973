package vectorindex

import (
	"fmt"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 1}, b: []float32{-1, -1}, want: -1},
		{name: "zero query", a: []float32{0, 0, 0}, b: []float32{1, 2, 3}, want: 0},
		{name: "zero stored", a: []float32{1, 2, 3}, b: []float32{0, 0, 0}, want: 0},
		{name: "both empty", a: nil, b: nil, want: 0},
		{name: "length mismatch pads", a: []float32{1, 0, 0}, b: []float32{1}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatal("similarity is NaN")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchOrdersByScoreAndLimits(t *testing.T) {
	idx := New()
	for i := range 15 {
		idx.Add(Entry{ID: fmt.Sprintf("id-%02d", i), Vector: []float32{1, float32(i)}})
	}
	matches := idx.Search([]float32{0, 1}, 10)
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatalf("scores not non-increasing at %d: %v", i, matches)
		}
	}
	if matches[0].ID != "id-14" {
		t.Fatalf("expected id-14 first, got %s", matches[0].ID)
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	idx := New()
	idx.Add(
		Entry{ID: "c", Vector: []float32{1, 0}},
		Entry{ID: "a", Vector: []float32{2, 0}},
		Entry{ID: "b", Vector: []float32{3, 0}},
	)
	for range 5 {
		matches := idx.Search([]float32{1, 0}, 10)
		if len(matches) != 3 {
			t.Fatalf("expected 3 matches, got %d", len(matches))
		}
		if matches[0].ID != "c" || matches[1].ID != "a" || matches[2].ID != "b" {
			t.Fatalf("tie order not stable: %v", matches)
		}
	}
}

func TestSearchFewerThanK(t *testing.T) {
	idx := New()
	idx.Add(Entry{ID: "only", Vector: []float32{1}})
	if got := idx.Search([]float32{1}, 10); len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", len(got))
	}
	if got := idx.Search([]float32{1}, 0); got != nil {
		t.Fatalf("expected nil for k=0, got %v", got)
	}
}

func TestAddCopiesAndReplaces(t *testing.T) {
	idx := New()
	vec := []float32{1, 0}
	idx.Add(Entry{ID: "a", Vector: vec}, Entry{ID: "b", Vector: []float32{0, 1}})
	vec[0], vec[1] = 0, 1
	if got := idx.Search([]float32{1, 0}, 1); got[0].ID != "a" {
		t.Fatalf("caller mutation leaked into index: %v", got)
	}

	idx.Add(Entry{ID: "a", Vector: []float32{0, 1}})
	if idx.Len() != 2 {
		t.Fatalf("re-add should replace, len=%d", idx.Len())
	}
	got := idx.Search([]float32{0, 1}, 2)
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("replaced entry should keep insertion position: %v", got)
	}

	idx.Reset()
	if idx.Len() != 0 || len(idx.Search([]float32{1}, 3)) != 0 {
		t.Fatal("expected empty index after Reset")
	}
}
