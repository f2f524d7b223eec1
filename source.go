package finitegen

import (
	"iter"
	"sync/atomic"
)

// Cursor is a single-use pull iterator.
// Database row iterators and scanner style types usually satisfy it.
type Cursor[T any] interface {
	// Next advances the cursor and reports whether a Value is available.
	Next() bool
	// Value returns the current element.
	Value() T
	// Err returns the cause that made Next return false, if any.
	Err() error
}

// source is the sealed set of things a Generator can wrap.
// walk starts a fresh walk over the source.
type source[T any] interface {
	walk() (iter.Seq2[T, error], error)
}

type seqSource[T any] struct {
	seq iter.Seq2[T, error]
}

func (s seqSource[T]) walk() (iter.Seq2[T, error], error) {
	return s.seq, nil
}

// indexSource is a random access source, element i is at(i).
// A negative length means the source is unbounded.
type indexSource[T any] struct {
	at     func(int) T
	length int
}

func (s indexSource[T]) walk() (iter.Seq2[T, error], error) {
	return func(yield func(T, error) bool) {
		for i := 0; s.length < 0 || i < s.length; i++ {
			if !yield(s.at(i), nil) {
				return
			}
		}
	}, nil
}

// bound returns the index right after the last element a traversal with the given limit may visit.
func (s indexSource[T]) bound(limit int) int {
	if s.length < 0 || limit < s.length {
		return limit
	}
	return s.length
}

type onceSource[T any] struct {
	seq      iter.Seq2[T, error]
	consumed *atomic.Bool
}

func (s onceSource[T]) walk() (iter.Seq2[T, error], error) {
	if !s.consumed.CompareAndSwap(false, true) {
		return nil, ErrSourceConsumed
	}
	return s.seq, nil
}

func newOnceSource[T any](seq iter.Seq2[T, error]) onceSource[T] {
	return onceSource[T]{seq: seq, consumed: &atomic.Bool{}}
}

func cursorToSeqE[T any](c Cursor[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if c == nil {
			return
		}
		for c.Next() {
			if !yield(c.Value(), nil) {
				return
			}
		}
		if err := c.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
