// Package xslices provides missing functionality to the standard slices
// package.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// At returns the element at the given index, where index can be negative, in
// which case it takes from the end of the slice.
func At[T any](slice []T, index int) T {
	if index < 0 {
		index = len(slice) + index
	}
	return slice[index]
}

// Last returns the last element of a slice.
func Last[T any](slice []T) T {
	return At(slice, -1)
}

// Copy creates a new (shallow) copy of the slice. A shortcut to a call to
// make and then copy.
func Copy[T any](slice []T) []T {
	if len(slice) == 0 {
		return nil
	}
	slice2 := make([]T, len(slice))
	copy(slice2, slice)
	return slice2
}

// Iota returns a slice of incremental values of the given type, starting with
// start and of the given length: {start, start+1, ...}.
func Iota[T constraints.Integer | constraints.Float](start T, length int) []T {
	slice := make([]T, length)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return slice
}

// Map applies fn to each element of in, returning the new slice.
func Map[In, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, len(in))
	for ii, element := range in {
		out[ii] = fn(element)
	}
	return out
}

// Max returns the largest element of a non-empty slice.
func Max[T constraints.Ordered](slice []T) T {
	best := slice[0]
	for _, element := range slice[1:] {
		if element > best {
			best = element
		}
	}
	return best
}
