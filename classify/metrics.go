package classify

// Metrics exposes classifier-level observability hooks.
// Hit/Miss may be called concurrently without synchronization;
// Grow/SweepStale/Size are called under the write lock, keep them light.
type Metrics interface {
	// Hit — a memoized entry answered the classification.
	Hit()
	// Miss — the ordered subtype scan ran (first sighting of a type).
	Miss()
	// Grow — the table doubled; buckets is the new slot count.
	Grow(buckets int)
	// SweepStale — dropped entries whose type handles were no longer alive
	// while rehashing into a grown table.
	SweepStale(dropped int)
	// Size — resident entry and bucket counts after a write.
	Size(entries, buckets int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// Used as the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                      {}
func (NoopMetrics) Miss()                     {}
func (NoopMetrics) Grow(int)                  {}
func (NoopMetrics) SweepStale(int)            {}
func (NoopMetrics) Size(entries, buckets int) {}

var _ Metrics = NoopMetrics{}
