package utils

// Attempt is one independent extraction try. ok is false when it found nothing.
type Attempt[D any, T any] func(doc D) (value T, ok bool)

// FirstMatch runs attempts in order and returns the first value found.
// Attempts after the first hit are not run.
func FirstMatch[D any, T any](doc D, attempts ...Attempt[D, T]) (T, bool) {
	for _, attempt := range attempts {
		if v, ok := attempt(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Chain builds one attempt per key using the same extraction function,
// e.g. one attempt per CSS selector of a fallback list.
func Chain[D any, K any, T any](keys []K, extract func(doc D, key K) (T, bool)) []Attempt[D, T] {
	attempts := make([]Attempt[D, T], 0, len(keys))
	for _, k := range keys {
		k := k
		attempts = append(attempts, func(doc D) (T, bool) {
			return extract(doc, k)
		})
	}
	return attempts
}

// FirstNonEmpty returns the first non-empty string
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
