package funcs

// Map returns mapper applied to every element of input, in order.
func Map[T any, R any](input []T, mapper func(T) R) []R {
	result := make([]R, len(input))

	for i, elem := range input {
		result[i] = mapper(elem)
	}

	return result
}

// Any reports whether at least one element satisfies predicate.
func Any[T any](input []T, predicate func(T) bool) bool {
	for _, elem := range input {
		if predicate(elem) {
			return true
		}
	}

	return false
}
