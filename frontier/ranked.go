// Package frontier holds the containers the search strategies keep their
// working boards in.
package frontier

import (
	"fmt"
	"iter"
	"sort"
)

type entry[T any] struct {
	item T
	seq  uint64
}

// Ranked is a size-limited multiset ordered by a comparator. When it grows
// past its capacity the lowest ranked item is dropped. Items that compare
// equal are ranked by arrival: the newest one ranks highest, so the oldest
// equal item is the first to go.
//
// Ranked is not safe for concurrent use.
type Ranked[T any] struct {
	capacity int
	compare  func(a, b T) int
	// ascending by (compare, seq)
	entries []entry[T]
	nextSeq uint64
}

// NewRanked creates an empty Ranked. compare returns a negative number when
// a ranks below b, zero when equal and a positive number otherwise.
func NewRanked[T any](capacity int, compare func(a, b T) int) *Ranked[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("frontier: capacity must be at least 1, got %d", capacity))
	}
	if compare == nil {
		panic("frontier: nil comparator")
	}
	return &Ranked[T]{
		capacity: capacity,
		compare:  compare,
		entries:  make([]entry[T], 0, min(capacity+1, 1024)),
	}
}

// Insert always accepts item and then evicts the lowest item if the
// capacity is exceeded. It returns false if item itself got evicted.
func (r *Ranked[T]) Insert(item T) bool {
	// The new item has the highest sequence number so far, so it goes after
	// every entry it compares equal to.
	pos := sort.Search(len(r.entries), func(i int) bool {
		return r.compare(r.entries[i].item, item) > 0
	})
	r.entries = append(r.entries, entry[T]{})
	copy(r.entries[pos+1:], r.entries[pos:])
	r.entries[pos] = entry[T]{item: item, seq: r.nextSeq}
	r.nextSeq++

	if len(r.entries) > r.capacity {
		r.RemoveLowest()
		return pos > 0
	}
	return true
}

// RemoveLowest drops exactly one lowest ranked item. It does nothing if
// the container is empty.
func (r *Ranked[T]) RemoveLowest() {
	if len(r.entries) == 0 {
		return
	}
	var zero entry[T]
	r.entries[0] = zero
	r.entries = r.entries[1:]
}

// ShrinkTo keeps only the n highest ranked items.
func (r *Ranked[T]) ShrinkTo(n int) {
	if n < 0 {
		n = 0
	}
	if len(r.entries) <= n {
		return
	}
	kept := make([]entry[T], n, max(n, min(r.capacity+1, 1024)))
	copy(kept, r.entries[len(r.entries)-n:])
	r.entries = kept
}

// All yields every item from highest to lowest rank. The sequence is a
// snapshot taken when All is called; later changes to r are not seen.
func (r *Ranked[T]) All() iter.Seq[T] {
	snapshot := make([]T, len(r.entries))
	for i, e := range r.entries {
		snapshot[len(r.entries)-1-i] = e.item
	}
	return func(yield func(T) bool) {
		for _, it := range snapshot {
			if !yield(it) {
				return
			}
		}
	}
}

// Highest returns the top ranked item.
func (r *Ranked[T]) Highest() (T, bool) {
	if len(r.entries) == 0 {
		var zero T
		return zero, false
	}
	return r.entries[len(r.entries)-1].item, true
}

func (r *Ranked[T]) Len() int { return len(r.entries) }
