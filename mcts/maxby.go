package mcts

import "golang.org/x/exp/constraints"

// MaxBy finds the element with the largest key. Ties keep the earliest element.
func MaxBy[T any, K constraints.Ordered](slice []T, keyFunc func(T) K) T {
	if len(slice) == 0 {
		var zero T
		return zero
	}

	maxElem := slice[0]
	maxKey := keyFunc(maxElem)

	for _, elem := range slice[1:] {
		if key := keyFunc(elem); key > maxKey {
			maxKey = key
			maxElem = elem
		}
	}

	return maxElem
}
