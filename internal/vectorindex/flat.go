// Package vectorindex implements an exact inner-product index over unit
// vectors. Positions are dense (0..Len()-1) and follow insertion order.
package vectorindex

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// Hit is one search result.
type Hit struct {
	Position int
	Score    float32
}

// Flat stores vectors row-major in a single slice. It is not safe for
// concurrent Add; Search is safe once building is finished.
type Flat struct {
	dim  int
	data []float32
}

// NewFlat creates an empty index of the given dimension.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	if f.dim == 0 {
		return 0
	}
	return len(f.data) / f.dim
}

// Add appends vectors in order. Every vector must match Dim.
func (f *Flat) Add(vectors ...[]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("add vector %d: %w: expected %d, got %d",
				f.Len()+i, domain.ErrVectorDimMismatch, f.dim, len(v))
		}
	}
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	return nil
}

// Vector returns a copy of the vector at pos.
func (f *Flat) Vector(pos int) []float32 {
	out := make([]float32, f.dim)
	copy(out, f.data[pos*f.dim:(pos+1)*f.dim])
	return out
}

// Search returns the k highest inner-product hits, best first. Equal scores
// are ordered by position. k larger than Len returns Len hits.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("search: %w: expected %d, got %d", domain.ErrVectorDimMismatch, f.dim, len(query))
	}
	n := f.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	h := make(minHeap, 0, k)
	for pos := range n {
		score := dot(query, f.data[pos*f.dim:(pos+1)*f.dim])
		cand := Hit{Position: pos, Score: score}
		if len(h) < k {
			heap.Push(&h, cand)
			continue
		}
		if better(cand, h[0]) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}

	out := make([]Hit, len(h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Hit)
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// better reports whether a ranks ahead of b.
func better(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Position < b.Position
}

// minHeap keeps the worst retained hit at the root.
type minHeap []Hit

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(Hit)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Normalize scales v to unit L2 length in place and returns it. Zero vectors
// are left unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
