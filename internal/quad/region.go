package quad

import "container/heap"

// Region is one sub-interval [A,B] with the rule's estimate over it.
// Regions are never mutated; refinement replaces one with its two halves.
type Region struct {
	A     float64
	B     float64
	Value float64
	Error float64
}

// Width returns B-A.
func (r Region) Width() float64 {
	return r.B - r.A
}

// regionHeap implements heap.Interface with the largest Error on top.
// Order among equal errors is unspecified.
type regionHeap []Region

func (h regionHeap) Len() int           { return len(h) }
func (h regionHeap) Less(i, j int) bool { return h[i].Error > h[j].Error }
func (h regionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *regionHeap) Push(x any) {
	*h = append(*h, x.(Region))
}

func (h *regionHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	*h = old[:n-1]
	return r
}

// regionStore is the worst-error-first collection used by one Integrate
// call. It is not safe for concurrent use and is never shared across calls.
type regionStore struct {
	h regionHeap
}

func newRegionStore(capacity int) *regionStore {
	return &regionStore{h: make(regionHeap, 0, capacity)}
}

// Insert adds r to the store.
func (s *regionStore) Insert(r Region) {
	heap.Push(&s.h, r)
}

// ExtractMax removes and returns the region with the largest error.
// The store must not be empty.
func (s *regionStore) ExtractMax() Region {
	return heap.Pop(&s.h).(Region)
}

// Len returns the number of regions held.
func (s *regionStore) Len() int {
	return len(s.h)
}

// View exposes the backing slice in heap order. Callers must not modify or
// retain it.
func (s *regionStore) View() []Region {
	return s.h
}

// Drain empties the store and returns the sums of Value and Error over
// everything it held.
func (s *regionStore) Drain() (integral, errsum float64) {
	for _, r := range s.h {
		integral += r.Value
		errsum += r.Error
	}
	s.h = s.h[:0]
	return integral, errsum
}
