package classify

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mkorolik/typematch/internal/util"
)

// fakeSource implements identity.Source over small integer handles with an
// explicit parent chain, so tests control the hierarchy, the hash function,
// and handle liveness directly.
type fakeSource struct {
	parent map[uint64]uint64 // child -> immediate parent; 0 = root

	mu   sync.Mutex
	dead map[uint64]bool

	// hashFn overrides the hash to force collisions; nil = fnv of the handle.
	hashFn func(uint64) uint64

	// subtypeCalls counts AssignableTo invocations (memoization checks).
	subtypeCalls atomic.Int64
}

func (f *fakeSource) TypeOf(v any) (uint64, bool) {
	h, ok := v.(uint64)
	if !ok || h == 0 {
		return 0, false
	}
	return h, true
}

func (f *fakeSource) Hash(h uint64) uint64 {
	if f.hashFn != nil {
		return f.hashFn(h)
	}
	return util.Fnv64aUint64(h)
}

func (f *fakeSource) AssignableTo(concrete, category uint64) bool {
	f.subtypeCalls.Add(1)
	for t := concrete; t != 0; t = f.parent[t] {
		if t == category {
			return true
		}
	}
	return false
}

func (f *fakeSource) Alive(h uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead[h]
}

func (f *fakeSource) kill(h uint64) {
	f.mu.Lock()
	if f.dead == nil {
		f.dead = make(map[uint64]bool)
	}
	f.dead[h] = true
	f.mu.Unlock()
}

func (f *fakeSource) calls() int64 { return f.subtypeCalls.Load() }

// bruteForce is the reference answer: first category the concrete type is
// assignable to, in list order.
func bruteForce(src *fakeSource, cats []uint64, h uint64) int {
	for i, cat := range cats {
		for t := h; t != 0; t = src.parent[t] {
			if t == cat {
				return i
			}
		}
	}
	return len(cats)
}

func mustNew(t *testing.T, opt Options[uint64]) Classifier {
	t.Helper()
	c, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// A three-level chain 1 <- 5 <- 10 (10's parent is 5, 5's parent is 1).
// With the ancestor listed first, the ancestor's index wins even for the
// most-derived type: first match in list order, not closest match.
func TestClassify_FirstMatchWinsInListOrder(t *testing.T) {
	t.Parallel()

	src := &fakeSource{parent: map[uint64]uint64{5: 1, 10: 5}}

	c := mustNew(t, Options[uint64]{Source: src, Categories: []uint64{1, 5, 10}})
	if got := c.Classify(uint64(10)); got != 0 {
		t.Fatalf("ancestor-first list: want 0, got %d", got)
	}

	// Reordered list: the exact type is first and matches itself.
	c = mustNew(t, Options[uint64]{Source: src, Categories: []uint64{10, 5, 1}})
	if got := c.Classify(uint64(10)); got != 0 {
		t.Fatalf("descendant-first list: want 0, got %d", got)
	}
	if got := c.Classify(uint64(5)); got != 1 {
		t.Fatalf("mid type: want 1, got %d", got)
	}

	// A type unrelated to every category yields the sentinel.
	if got := c.Classify(uint64(99)); got != c.NoMatch() {
		t.Fatalf("unrelated type: want sentinel %d, got %d", c.NoMatch(), got)
	}
}

func TestClassify_NilAndForeignValues(t *testing.T) {
	t.Parallel()

	src := &fakeSource{parent: map[uint64]uint64{}}
	c := mustNew(t, Options[uint64]{Source: src, Categories: []uint64{1, 2}})

	if got := c.Classify(nil); got != 2 {
		t.Fatalf("nil value: want sentinel 2, got %d", got)
	}
	// A value the source cannot type behaves like nil.
	if got := c.Classify("not a handle"); got != 2 {
		t.Fatalf("untypable value: want sentinel 2, got %d", got)
	}
	if c.Len() != 0 {
		t.Fatalf("sentinel answers must not be cached, Len=%d", c.Len())
	}
}

func TestClassify_EmptyCategoryList(t *testing.T) {
	t.Parallel()

	src := &fakeSource{parent: map[uint64]uint64{}}
	c := mustNew(t, Options[uint64]{Source: src, Categories: []uint64{}})

	if got := c.Classify(uint64(7)); got != 0 {
		t.Fatalf("empty list: want sentinel 0, got %d", got)
	}
	if c.NoMatch() != 0 {
		t.Fatalf("NoMatch() = %d, want 0", c.NoMatch())
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	src := &fakeSource{parent: map[uint64]uint64{}}

	if _, err := New(Options[uint64]{Categories: []uint64{1}}); err != ErrNilSource {
		t.Fatalf("nil source: want ErrNilSource, got %v", err)
	}
	if _, err := New(Options[uint64]{Source: src}); err != ErrNilCategories {
		t.Fatalf("nil list: want ErrNilCategories, got %v", err)
	}
	if _, err := New(Options[uint64]{Source: src, Categories: []uint64{1, 0, 2}}); err != ErrNilCategory {
		t.Fatalf("zero element: want ErrNilCategory, got %v", err)
	}
}

// The caller's slice must be copied: mutating it after New must not change
// classification results.
func TestNew_CopiesCategories(t *testing.T) {
	t.Parallel()

	src := &fakeSource{parent: map[uint64]uint64{}}
	cats := []uint64{1, 2}
	c := mustNew(t, Options[uint64]{Source: src, Categories: cats})

	cats[0] = 2
	cats[1] = 1
	if got := c.Classify(uint64(2)); got != 1 {
		t.Fatalf("after caller mutation: want 1, got %d", got)
	}
}

// Repeated classification of the same type must not rerun the subtype scan.
func TestClassify_Memoizes(t *testing.T) {
	t.Parallel()

	src := &fakeSource{parent: map[uint64]uint64{2: 1}}
	c := mustNew(t, Options[uint64]{Source: src, Categories: []uint64{1, 3}})

	want := c.Classify(uint64(2))
	after := src.calls()
	for i := 0; i < 1000; i++ {
		if got := c.Classify(uint64(2)); got != want {
			t.Fatalf("call %d: want %d, got %d", i, want, got)
		}
	}
	if src.calls() != after {
		t.Fatalf("subtype scan reran: %d calls before, %d after", after, src.calls())
	}

	hits, misses := c.Stats()
	if misses != 1 || hits != 1000 {
		t.Fatalf("stats: hits=%d misses=%d, want 1000/1", hits, misses)
	}
}

// Random hierarchies against the brute-force reference.
func TestClassify_AgreesWithBruteForce(t *testing.T) {
	t.Parallel()

	// parent[h] < h keeps the chains acyclic.
	parent := map[uint64]uint64{}
	for h := uint64(2); h <= 64; h++ {
		if h%3 != 0 {
			parent[h] = h / 2
		}
	}
	src := &fakeSource{parent: parent}

	lists := [][]uint64{
		{1, 2, 3},
		{16, 8, 4, 2, 1},
		{3, 9, 27, 5},
		{64, 1},
	}
	for _, cats := range lists {
		c := mustNew(t, Options[uint64]{Source: src, Categories: cats})
		for h := uint64(1); h <= 64; h++ {
			want := bruteForce(src, cats, h)
			if got := c.Classify(h); got != want {
				t.Fatalf("cats=%v h=%d: want %d, got %d", cats, h, want, got)
			}
			// And again, through the memoized path.
			if got := c.Classify(h); got != want {
				t.Fatalf("cats=%v h=%d (cached): want %d, got %d", cats, h, want, got)
			}
		}
	}
}

// Degenerate hash: every handle lands in one of two probe chains. Linear
// probing must still resolve every type correctly.
func TestClassify_HashCollisions(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		parent: map[uint64]uint64{4: 2, 6: 2},
		hashFn: func(h uint64) uint64 { return h % 2 },
	}
	c := mustNew(t, Options[uint64]{Source: src, Categories: []uint64{2}, InitialBuckets: 64})

	for h := uint64(1); h <= 12; h++ {
		want := bruteForce(src, []uint64{2}, h)
		if got := c.Classify(h); got != want {
			t.Fatalf("h=%d: want %d, got %d", h, want, got)
		}
	}
	// All cached now; re-check through the fast path.
	for h := uint64(1); h <= 12; h++ {
		want := bruteForce(src, []uint64{2}, h)
		if got := c.Classify(h); got != want {
			t.Fatalf("h=%d cached: want %d, got %d", h, want, got)
		}
	}
}
