package classify

import "github.com/mkorolik/typematch/identity"

// Options configures a classifier. Source and Categories are required;
// everything else has a sane default applied in New:
//   - nil Metrics       => NoopMetrics
//   - InitialBuckets<=0 => 64
type Options[H comparable] struct {
	// Source resolves type identity and the is-a relation.
	Source identity.Source[H]

	// Categories is the ordered candidate list. Classification returns the
	// index of the first entry the concrete type is assignable to, so order
	// defines priority. The slice is copied; the caller may reuse it.
	// An empty (non-nil) list is valid: everything classifies as NoMatch.
	Categories []H

	// InitialBuckets sizes the table allocated on the first classification.
	// Rounded up to a power of two, minimum 8. The default of 64 keeps the
	// load factor low for typical category-list sizes without regrowing.
	InitialBuckets int

	// Metrics receives observability signals. Nil => NoopMetrics.
	Metrics Metrics
}
