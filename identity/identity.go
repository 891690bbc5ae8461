// Package identity defines the type-identity contract the classifier
// depends on. The classifier itself never inspects values; everything it
// knows about run-time types flows through a Source.
package identity

// Source resolves run-time type identity for classification. H is an opaque,
// comparable handle for a concrete type; two handles compare equal exactly
// when they identify the same type.
//
// Implementations must be safe for concurrent use: the classifier calls
// Source methods from many goroutines without synchronization.
type Source[H comparable] interface {
	// TypeOf returns the handle for v's concrete type.
	// ok is false when v carries no type (e.g. a nil interface value).
	TypeOf(v any) (h H, ok bool)

	// Hash returns a hash for h that is stable for the handle's lifetime.
	// Equal handles must hash equally.
	Hash(h H) uint64

	// AssignableTo reports whether a value of the concrete type may be
	// treated as a value of the category type. The relation is reflexive:
	// AssignableTo(h, h) is always true.
	AssignableTo(concrete, category H) bool

	// Alive reports whether h still identifies a valid type. Sources whose
	// type metadata lives for the whole process simply return true; sources
	// backed by reclaimable handle spaces (plugin arenas, generation
	// counters) return false once the type is gone, which lets the
	// classifier drop the entry during its next growth sweep.
	Alive(h H) bool
}
