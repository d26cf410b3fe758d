// Package repository keeps generated boards grouped by how many cells they
// occupy, so restarts can be spread over every stage of construction.
package repository

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/castleplan/board"
)

// ErrEmpty is returned when a starting board is requested from a
// repository with no boards at all.
var ErrEmpty = errors.New("cannot choose from an empty repository")

// Repository groups boards into buckets keyed by occupied tile count. A board
// stays in the bucket it was filed under.
type Repository struct {
	buckets map[int][]board.Board
	size    int
	nextKey int
}

func New() *Repository {
	return &Repository{buckets: make(map[int][]board.Board)}
}

// Add files b under its current occupancy.
func (r *Repository) Add(b board.Board) {
	key := b.OccupiedTiles()
	r.buckets[key] = append(r.buckets[key], b)
	r.size++
}

func (r *Repository) Len() int { return r.size }

// Keys returns the bucket keys in ascending order.
func (r *Repository) Keys() []int {
	keys := lo.Keys(r.buckets)
	slices.Sort(keys)
	return keys
}

// Bucket returns the boards filed under key.
func (r *Repository) Bucket(key int) []board.Board {
	return r.buckets[key]
}

// Shrink keeps only the keep best rated boards of every bucket.
func (r *Repository) Shrink(keep int) {
	for key, bucket := range r.buckets {
		if len(bucket) <= keep {
			continue
		}
		ratings := make(map[board.Board]int, len(bucket))
		for _, b := range bucket {
			ratings[b] = b.Rating()
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			return ratings[bucket[i]] > ratings[bucket[j]]
		})
		kept := make([]board.Board, keep)
		copy(kept, bucket)
		r.buckets[key] = kept
	}
	r.size = lo.SumBy(lo.Values(r.buckets), func(b []board.Board) int { return len(b) })
}

// TopRated returns the highest rated board over all buckets.
func (r *Repository) TopRated() board.Board {
	var best board.Board
	bestRating := 0
	for _, key := range r.Keys() {
		for _, b := range r.buckets[key] {
			if rating := b.Rating(); best == nil || rating > bestRating {
				best, bestRating = b, rating
			}
		}
	}
	return best
}

// NextStartingBoard picks a random board to continue from, visiting the
// buckets round-robin by key.
func (r *Repository) NextStartingBoard(rng *rand.Rand) (board.Board, error) {
	if choices := r.buckets[r.nextKey]; len(choices) > 0 {
		r.nextKey++
		return choices[rng.IntN(len(choices))], nil
	}
	keys := r.Keys()
	for _, key := range keys {
		if key >= r.nextKey && len(r.buckets[key]) > 0 {
			return r.takeFrom(rng, key), nil
		}
	}
	// the cursor ran past the last bucket; start over from the smallest one
	for _, key := range keys {
		if len(r.buckets[key]) > 0 {
			return r.takeFrom(rng, key), nil
		}
	}
	return nil, ErrEmpty
}

func (r *Repository) takeFrom(rng *rand.Rand, key int) board.Board {
	choices := r.buckets[key]
	r.nextKey = key + 1
	return choices[rng.IntN(len(choices))]
}
