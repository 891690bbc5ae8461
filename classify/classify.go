package classify

import (
	"sync"
	"sync/atomic"

	"github.com/mkorolik/typematch/identity"
	"github.com/mkorolik/typematch/internal/util"
)

// Construction errors. Classify itself never fails: nil values and unmatched
// types both yield the NoMatch sentinel.
var (
	ErrNilSource     = errorsNew("classify: no identity source provided")
	ErrNilCategories = errorsNew("classify: nil category list")
	ErrNilCategory   = errorsNew("classify: category list contains a zero handle")
	ErrNilBuilder    = errorsNew("classify: no builder provided")
)

// lightweight local errors.New to avoid importing std 'errors' everywhere
func errorsNew(s string) error { return &strErr{s} }

type strErr struct{ s string }

func (e *strErr) Error() string { return e.s }

const defaultInitialBuckets = 64

// minBuckets keeps the smallest table usable under the 1/4 load-factor rule;
// anything below 8 would grow before holding a second entry anyway.
const minBuckets = 8

// cache is the classification cache: an open-addressing table keyed by
// concrete-type handle, with a lock-free read path and a mutex-guarded write
// path. All methods are safe for concurrent use.
type cache[H comparable] struct {
	src      identity.Source[H]
	cats     []H // private copy, immutable after construction
	sentinel int

	// tbl is nil until the first slow-path classification allocates it.
	// Growth stores a fully built replacement; readers load it once per
	// Classify and never observe a table mid-move.
	tbl atomic.Pointer[table[H]]

	mu      sync.Mutex // guards all writes
	entries int        // resident slot count; only touched under mu

	opt Options[H]

	// hot counters on their own cache lines to avoid false sharing
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
}

// New constructs a classifier for the given ordered category list.
// The category slice is copied; later mutation by the caller has no effect.
// Returns ErrNilSource, ErrNilCategories, or ErrNilCategory on invalid input.
func New[H comparable](opt Options[H]) (Classifier, error) {
	if opt.Source == nil {
		return nil, ErrNilSource
	}
	if opt.Categories == nil {
		return nil, ErrNilCategories
	}
	var zero H
	for _, cat := range opt.Categories {
		if cat == zero {
			return nil, ErrNilCategory
		}
	}

	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.InitialBuckets <= 0 {
		opt.InitialBuckets = defaultInitialBuckets
	} else {
		opt.InitialBuckets = int(util.NextPow2(uint64(opt.InitialBuckets)))
	}
	if opt.InitialBuckets < minBuckets {
		opt.InitialBuckets = minBuckets
	}

	cats := make([]H, len(opt.Categories))
	copy(cats, opt.Categories)

	return &cache[H]{
		src:      opt.Source,
		cats:     cats,
		sentinel: len(cats),
		opt:      opt,
	}, nil
}

// Classify returns the index of the first category v's concrete type is
// assignable to, or the sentinel if none match (or v is nil).
//
// Fast path: no lock. Load the current table, probe linearly from
// hash&mask. A full slot with matching hash and handle answers immediately;
// an empty slot means the type is not cached yet (or was inserted a moment
// ago by a racing writer) and falls through to the slow path.
func (c *cache[H]) Classify(v any) int {
	h, ok := c.src.TypeOf(v)
	if !ok {
		return c.sentinel
	}
	hash := c.src.Hash(h)

	if t := c.tbl.Load(); t != nil {
		if res, _, hit := t.probe(hash, h); hit {
			c.hits.Add(1)
			c.opt.Metrics.Hit()
			return int(res)
		}
	}
	return c.classifySlow(h, hash)
}

// classifySlow takes the write lock, re-probes (a racing writer may have
// inserted the entry in the meantime), computes the classification on a true
// miss, and publishes the new slot.
func (c *cache[H]) classifySlow(h H, hash uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tbl.Load()
	if t == nil {
		t = newTable[H](c.opt.InitialBuckets)
		c.tbl.Store(t)
	}

	for {
		res, idx, hit := t.probe(hash, h)
		if hit {
			c.hits.Add(1)
			c.opt.Metrics.Hit()
			return int(res)
		}

		// Keep the post-insert load factor strictly below 1/4.
		if (c.entries+1)*4 >= len(t.slots) {
			t = c.growLocked(t)
			continue // restart the probe against the new table
		}

		r := c.compute(h)

		// Publication order matters: result/hash/handle first, state last.
		// A concurrent fast-path reader that observes slotFull is then
		// guaranteed to read the paired fields.
		s := &t.slots[idx]
		s.hash = hash
		s.result = int32(r)
		s.typ = h
		s.state.Store(slotFull)

		c.entries++
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		c.opt.Metrics.Size(c.entries, len(t.slots))
		return r
	}
}

// compute runs the ordered subtype scan: first matching category wins.
func (c *cache[H]) compute(h H) int {
	for i, cat := range c.cats {
		if c.src.AssignableTo(h, cat) {
			return i
		}
	}
	return c.sentinel
}

// growLocked doubles the table, dropping entries whose handles are no longer
// alive — the cache's only eviction, run opportunistically here and never on
// lookups. The new table is built privately and published with a single
// atomic store, so readers switch from one consistent table to another.
// Caller holds c.mu.
func (c *cache[H]) growLocked(old *table[H]) *table[H] {
	nt := newTable[H](2 * len(old.slots))
	live, swept := 0, 0
	for i := range old.slots {
		s := &old.slots[i]
		if s.state.Load() == slotEmpty {
			continue
		}
		if !c.src.Alive(s.typ) {
			swept++
			continue
		}
		nt.place(s.hash, s.typ, s.result)
		live++
	}
	c.entries = live
	c.tbl.Store(nt)

	c.opt.Metrics.Grow(len(nt.slots))
	if swept > 0 {
		c.opt.Metrics.SweepStale(swept)
	}
	return nt
}

// NoMatch returns the sentinel index (the category count).
func (c *cache[H]) NoMatch() int { return c.sentinel }

// Len returns the number of memoized concrete types.
func (c *cache[H]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}

// Stats returns cumulative fast-path hits and slow-path computations.
func (c *cache[H]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
