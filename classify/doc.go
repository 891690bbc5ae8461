// Package classify provides a run-time classification cache: given a value
// and an ordered list of candidate category types, it returns the index of
// the first category the value's concrete type is assignable to, or a
// "no match" sentinel equal to the list length.
//
// The subtype test itself is supplied by an identity.Source and is linear in
// the number of categories; the cache memoizes the per-concrete-type answer,
// so repeated classification of the same type is a single lock-free table
// probe.
//
// # Design
//
//   - Storage: one flat open-addressing table whose length is always a power
//     of two. The table is allocated lazily on the first slow-path
//     classification and doubles when the load factor would reach 1/4; it
//     never shrinks.
//
//   - Concurrency: reads are lock-free. A slot is published by writing its
//     hash/result/handle fields first and an atomic state word last, so a
//     reader that observes a populated slot also observes the fields written
//     before it. All writes (insert, growth) run under a single mutex. The
//     table reference itself is swapped through an atomic pointer, so growth
//     replaces the array wholesale and readers never see a half-moved table.
//
//   - Eviction: entries whose handles are no longer alive (per the Source)
//     are dropped while rehashing into a grown table. That sweep is the only
//     eviction; plain lookups never remove anything.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Grow/SweepStale/Size
//     signals. NoopMetrics is the default; the metrics/prom package exports
//     them to Prometheus.
//
// # Basic usage
//
//	src := reflectid.New()
//	c, err := classify.New(classify.Options[reflect.Type]{
//	    Source: src,
//	    Categories: []reflect.Type{
//	        reflectid.InterfaceType[io.Reader](),
//	        reflectid.InterfaceType[io.Writer](),
//	    },
//	})
//	if err != nil {
//	    // invalid category list
//	}
//	switch c.Classify(os.Stdin) {
//	case 0: // reader
//	case 1: // writer only
//	case c.NoMatch(): // neither
//	}
//
// Order matters: classification returns the first matching index, so a
// category that subsumes a later one shadows it.
//
// # Sharing caches
//
// Registry maps caller-chosen keys to classifiers with at-most-once
// construction per key, so independent callers that agree on a key share one
// cache:
//
//	reg := classify.NewRegistry[string]()
//	c, err := reg.GetOrCreate(ctx, "http-handlers", buildClassifier)
package classify
