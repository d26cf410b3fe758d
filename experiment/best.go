package experiment

import (
	"sync"

	"github.com/domino14/castleplan/board"
)

// Best is the best-so-far register of one run. The search goroutine offers
// candidates; the reporter reads it.
type Best struct {
	mu     sync.Mutex
	rating int
	b      board.Board
}

// Offer keeps a clone of b if it rates strictly higher than the current
// best, or if nothing has been offered yet. It reports whether b was kept.
func (r *Best) Offer(b board.Board) bool {
	if b == nil {
		return false
	}
	rating := b.Rating()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.b != nil && rating <= r.rating {
		return false
	}
	r.rating = rating
	r.b = b.Clone()
	return true
}

// Load returns the current best rating and board. The board is nil until
// the first Offer. Callers must not modify it.
func (r *Best) Load() (int, board.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rating, r.b
}
