package frontier

// WorkList is a queue that may grow while it is being drained. Offered items
// are handed out before anything already waiting, so an item added during a
// pass is visited before the pass ends. It cannot be rewound; build a new
// one for the next pass.
type WorkList[T any] struct {
	stack []T
}

// Offer puts v at the front.
func (w *WorkList[T]) Offer(v T) {
	w.stack = append(w.stack, v)
}

func (w *WorkList[T]) HasNext() bool {
	return len(w.stack) > 0
}

// Next removes and returns the front item. It panics when the list is
// empty; check HasNext first.
func (w *WorkList[T]) Next() T {
	n := len(w.stack) - 1
	if n < 0 {
		panic("frontier: Next on empty work list")
	}
	v := w.stack[n]
	var zero T
	w.stack[n] = zero
	w.stack = w.stack[:n]
	return v
}

func (w *WorkList[T]) Len() int { return len(w.stack) }
