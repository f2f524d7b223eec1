package finitegen

import (
	"iter"
	"slices"
)

// Traversal is a pull based handle over a single traversal of a Generator.
// It is meant for partitioned consumption:
// when the source supports random access (FromSlice, FromIndex), the traversal can be split
// into disjoint partitions whose combined output never exceeds the Generator's limit.
//
// A Traversal is not safe for concurrent use, but distinct partitions can be consumed from distinct goroutines.
type Traversal[T any] struct {
	indexed bool
	at      func(int) T
	lo, hi  int

	src       source[T]
	remaining int
	next      func() (T, error, bool)
	stop      func()

	err  error
	done bool
}

// Traversal starts a new traversal over the Generator.
// The source is not touched until the first call to Next.
func (g Generator[T]) Traversal() *Traversal[T] {
	if is, ok := g.src.(indexSource[T]); ok {
		return &Traversal[T]{
			indexed: true,
			at:      is.at,
			lo:      0,
			hi:      is.bound(g.limit),
		}
	}
	return &Traversal[T]{
		src:       g.src,
		remaining: g.limit,
	}
}

// Partitions splits a new traversal into at most n partitions, ordered by their position in the source.
// Sources without random access can't be split and always result in a single partition.
func (g Generator[T]) Partitions(n int) []*Traversal[T] {
	var parts = []*Traversal[T]{g.Traversal()}
	for len(parts) < n {
		var largest int
		for i, p := range parts {
			if parts[largest].EstimateSize() < p.EstimateSize() {
				largest = i
			}
		}
		prefix, ok := parts[largest].Split()
		if !ok {
			break
		}
		parts = slices.Insert(parts, largest, prefix)
	}
	return parts
}

// Next returns the next element of the traversal.
// When it returns false, the traversal is finished and Err reports whether it ended because of a failure.
func (t *Traversal[T]) Next() (T, bool) {
	var zero T
	if t.done {
		return zero, false
	}
	if t.indexed {
		if t.hi <= t.lo {
			t.done = true
			return zero, false
		}
		v := t.at(t.lo)
		t.lo++
		return v, true
	}
	if t.remaining <= 0 || t.src == nil {
		t.Stop()
		return zero, false
	}
	if t.next == nil {
		walk, err := t.src.walk()
		if err != nil {
			t.err = err
			t.Stop()
			return zero, false
		}
		t.next, t.stop = iter.Pull2(walk)
	}
	v, err, ok := t.next()
	if !ok {
		t.Stop()
		return zero, false
	}
	if err != nil {
		t.err = err
		t.Stop()
		return zero, false
	}
	t.remaining--
	if t.remaining == 0 {
		t.Stop()
	}
	return v, true
}

// Err returns the source failure that ended the traversal.
func (t *Traversal[T]) Err() error {
	return t.err
}

// Stop ends the traversal and releases the underlying source cursor.
// Stop is idempotent.
func (t *Traversal[T]) Stop() {
	t.done = true
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
}

// All returns the remaining elements of the traversal as a sequence.
// Breaking out of the sequence leaves the traversal where it was, call Stop to abandon it.
func (t *Traversal[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := t.Next()
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Split hands over the first half of the remaining elements to a new Traversal.
// It fails when the source has no random access, or when fewer than two elements remain.
func (t *Traversal[T]) Split() (*Traversal[T], bool) {
	if !t.indexed || t.done {
		return nil, false
	}
	size := t.hi - t.lo
	if size < 2 {
		return nil, false
	}
	mid := t.lo + size/2
	prefix := &Traversal[T]{
		indexed: true,
		at:      t.at,
		lo:      t.lo,
		hi:      mid,
	}
	t.lo = mid
	return prefix, true
}

// EstimateSize returns an upper bound of the remaining elements.
// For random access sources the estimate is exact.
func (t *Traversal[T]) EstimateSize() int {
	if t.done {
		return 0
	}
	if t.indexed {
		return max(t.hi-t.lo, 0)
	}
	return t.remaining
}
