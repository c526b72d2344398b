package utils

// HashSet represents a hash set of comparable elements.
type HashSet[T comparable] map[T]struct{}

// NewHashSet creates a new HashSet
func NewHashSet[T comparable]() HashSet[T] {
	return make(HashSet[T])
}

// Contains checks if a set contains specified element.
func (hs HashSet[T]) Contains(elem T) bool {
	_, ok := hs[elem]
	return ok
}

// Empty checks if hash set is empty.
func (hs HashSet[T]) Empty() bool {
	return len(hs) == 0
}

// Add inserts an element into a hash set.
func (hs HashSet[T]) Add(elem T) {
	hs[elem] = struct{}{}
}

// Remove deletes an element from a hash set.
func (hs HashSet[T]) Remove(elem T) {
	delete(hs, elem)
}
