package classify

// Classifier maps values to the index of the first category their concrete
// type belongs to. All methods are safe for concurrent use by multiple
// goroutines.
//
// Classification of an already-seen concrete type is O(1): one lock-free
// table probe. The first occurrence of a type takes the write lock, runs the
// ordered subtype scan once, and memoizes the answer for the classifier's
// lifetime.
type Classifier interface {
	// Classify returns the index of the first category v's concrete type is
	// assignable to, or NoMatch() if none match. A nil value always yields
	// NoMatch(). Classify never fails; repeated calls with values of the
	// same concrete type return the same index.
	Classify(v any) int

	// NoMatch returns the sentinel index, equal to the category count.
	NoMatch() int

	// Len returns the number of memoized concrete types.
	Len() int

	// Stats returns the cumulative fast-path hit and slow-path computation
	// counts. Intended for tests and debugging; use Options.Metrics for
	// production observability.
	Stats() (hits, misses int64)
}
