// Package finitegen provides finite sequences from finite and infinite sources.
//
// A Generator decorates a source and imposes a limit on how many elements a traversal can produce.
// This makes it safe to collect, range over or partition sequences that would otherwise yield
// an indefinite amount of elements, such as counters, generators or data streams.
//
// Sources come in two flavours:
//   - repeatable sources (New, NewE, FromSlice, FromIndex) start over from their beginning on every traversal.
//   - single-use sources (FromCursor, FromPull) wrap a live cursor, and can be traversed only once.
//     A second traversal reports ErrSourceConsumed instead of silently yielding nothing.
//
// A Generator is lazy: constructing one never pulls from the source,
// and a traversal pulls exactly one element from the source for each element it yields.
package finitegen

import (
	"iter"

	"go.llib.dev/frameless/pkg/iterkit"
)

// Generator yields at most Limit elements of its source, in the source's order.
// The zero value is an empty Generator with a zero limit.
type Generator[T any] struct {
	src   source[T]
	limit int
}

// New returns a Generator over a repeatable sequence.
// Every traversal ranges over seq from its start.
func New[T any](seq iter.Seq[T], limit int) (Generator[T], error) {
	if seq == nil {
		seq = func(yield func(T) bool) {}
	}
	return newGenerator[T](seqSource[T]{seq: iterkit.AsSeqE(seq)}, limit)
}

// NewE returns a Generator over a repeatable sequence that may fail.
// A non-nil error yielded by seq ends the traversal and is reported to the caller unchanged.
func NewE[T any](seq iter.Seq2[T, error], limit int) (Generator[T], error) {
	if seq == nil {
		seq = func(yield func(T, error) bool) {}
	}
	return newGenerator[T](seqSource[T]{seq: seq}, limit)
}

// FromSlice returns a Generator over the first limit elements of vs.
// Its traversals can be split into partitions.
func FromSlice[T any](vs []T, limit int) (Generator[T], error) {
	return newGenerator[T](indexSource[T]{
		at:     func(i int) T { return vs[i] },
		length: len(vs),
	}, limit)
}

// FromIndex returns a Generator over an unbounded random access source, where the i-th element is at(i).
// Its traversals can be split into partitions.
// When partitions are consumed concurrently, at must be safe for concurrent use.
func FromIndex[T any](at func(i int) T, limit int) (Generator[T], error) {
	if at == nil {
		return newGenerator[T](indexSource[T]{length: 0}, limit)
	}
	return newGenerator[T](indexSource[T]{at: at, length: -1}, limit)
}

// FromCursor returns a Generator over a single-use cursor.
// Only the first traversal observes elements, later traversals report ErrSourceConsumed.
// Closing the cursor remains the responsibility of the caller.
func FromCursor[T any](c Cursor[T], limit int) (Generator[T], error) {
	return newGenerator[T](newOnceSource(cursorToSeqE(c)), limit)
}

// FromPull returns a Generator over a single-use pull function, such as the one returned by iter.Pull.
// Only the first traversal observes elements, later traversals report ErrSourceConsumed.
func FromPull[T any](next func() (T, bool), limit int) (Generator[T], error) {
	if next == nil {
		next = func() (T, bool) {
			var zero T
			return zero, false
		}
	}
	return newGenerator[T](newOnceSource(iterkit.AsSeqE(iterkit.FromPull(next))), limit)
}

func newGenerator[T any](src source[T], limit int) (Generator[T], error) {
	if limit < 0 {
		return Generator[T]{}, ErrNegativeLimit.F("limit must be zero or greater, got %d", limit)
	}
	return Generator[T]{src: src, limit: limit}, nil
}

// Limit returns the maximum amount of elements a traversal of the Generator yields.
func (g Generator[T]) Limit() int {
	return g.limit
}

// All returns a lazy sequence of the first Limit elements of the source.
// The sequence ends early when the source is exhausted or fails.
// Use AllE when source failures need to be observed.
func (g Generator[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v, err := range g.AllE() {
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// AllE returns a lazy sequence of the first Limit elements of the source.
// When the source fails, or a consumed single-use source is traversed again,
// the error is yielded as the last element of the sequence.
func (g Generator[T]) AllE() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if g.limit == 0 || g.src == nil {
			return
		}
		walk, err := g.src.walk()
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		var n int
		for v, err := range walk {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(v, nil) {
				return
			}
			n++
			if n == g.limit {
				return
			}
		}
	}
}

// ForEach calls fn with the first Limit elements of the source, in order.
// It stops at the first error, which is either returned by fn or comes from the source.
func (g Generator[T]) ForEach(fn func(T) error) error {
	for v, err := range g.AllE() {
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// Collect returns the first Limit elements of the source in a slice.
func (g Generator[T]) Collect() ([]T, error) {
	var vs = make([]T, 0)
	err := g.ForEach(func(v T) error {
		vs = append(vs, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vs, nil
}

// ToSet returns the distinct values among the first Limit elements of the source.
// The size of the set is at most Limit.
func ToSet[T comparable](g Generator[T]) (map[T]struct{}, error) {
	var set = make(map[T]struct{})
	err := g.ForEach(func(v T) error {
		set[v] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}
