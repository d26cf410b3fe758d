package frontier

const minDequeCap = 16

// Deque is a double-ended queue backed by a ring buffer.
type Deque[T any] struct {
	buf   []T
	head  int
	count int
}

func (d *Deque[T]) Len() int { return d.count }

func (d *Deque[T]) grow() {
	if d.count < len(d.buf) {
		return
	}
	newCap := max(minDequeCap, 2*len(d.buf))
	nb := make([]T, newCap)
	for i := 0; i < d.count; i++ {
		nb[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = nb
	d.head = 0
}

func (d *Deque[T]) PushFront(v T) {
	d.grow()
	d.head = (d.head - 1 + len(d.buf)) % len(d.buf)
	d.buf[d.head] = v
	d.count++
}

func (d *Deque[T]) PushBack(v T) {
	d.grow()
	d.buf[(d.head+d.count)%len(d.buf)] = v
	d.count++
}

// PopFront removes the front item. ok is false when the deque is empty.
func (d *Deque[T]) PopFront() (v T, ok bool) {
	if d.count == 0 {
		return v, false
	}
	var zero T
	v = d.buf[d.head]
	d.buf[d.head] = zero
	d.head = (d.head + 1) % len(d.buf)
	d.count--
	if d.count == 0 {
		d.head = 0
	}
	d.shrink()
	return v, true
}

// shrink gives memory back after a large queue has drained.
func (d *Deque[T]) shrink() {
	if len(d.buf) <= minDequeCap || d.count > len(d.buf)/4 {
		return
	}
	nb := make([]T, len(d.buf)/2)
	for i := 0; i < d.count; i++ {
		nb[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = nb
	d.head = 0
}
