// Package sourcekit provides sources for finite generators.
// Most of them are infinite, so they should only be consumed through a bound such as finitegen.Generator.
package sourcekit

import (
	"iter"
)

// Counter returns an infinite iterator of the integers, ascending from start.
func Counter(start int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := start; ; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Iterate returns an infinite iterator of seed, next(seed), next(next(seed)) and so on.
func Iterate[T any](seed T, next func(T) T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := seed; ; v = next(v) {
			if !yield(v) {
				return
			}
		}
	}
}

// Generate returns an infinite iterator where each element is supplied by calling fn.
func Generate[T any](fn func() T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			if !yield(fn()) {
				return
			}
		}
	}
}

// Cycle returns an iterator that repeats vs forever.
// Cycle of no values yields nothing.
func Cycle[T any](vs ...T) iter.Seq[T] {
	return func(yield func(T) bool) {
		if len(vs) == 0 {
			return
		}
		for {
			for _, v := range vs {
				if !yield(v) {
					return
				}
			}
		}
	}
}
