package classify

import (
	"math/rand"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/mkorolik/typematch/identity/reflectid"
)

// benchmarkHot measures the memoized path: every type is already cached, so
// each Classify is one lock-free probe. RunParallel spawns GOMAXPROCS
// goroutines.
func benchmarkHot(b *testing.B, keyspace int) {
	parent := map[uint64]uint64{}
	for h := uint64(2); h <= uint64(keyspace); h++ {
		if h%7 != 0 {
			parent[h] = h / 2
		}
	}
	src := &fakeSource{parent: parent}
	c, err := New(Options[uint64]{Source: src, Categories: []uint64{1, 3, 7}})
	if err != nil {
		b.Fatal(err)
	}

	// Warm the cache so the benchmark loop never takes the write lock.
	for h := uint64(1); h <= uint64(keyspace); h++ {
		c.Classify(h)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	mask := uint64(keyspace - 1) // keyspace is a power of two

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			c.Classify(r.Uint64()&mask + 1)
		}
	})
}

func BenchmarkClassify_Hot_1k(b *testing.B)  { benchmarkHot(b, 1<<10) }
func BenchmarkClassify_Hot_64k(b *testing.B) { benchmarkHot(b, 1<<16) }

// BenchmarkClassify_Reflect exercises the production Source with a handful
// of interface categories and a fixed set of concrete values.
func BenchmarkClassify_Reflect(b *testing.B) {
	type stringer interface{ String() string }
	cats := []reflect.Type{
		reflectid.InterfaceType[error](),
		reflectid.InterfaceType[stringer](),
		reflect.TypeOf(0),
	}
	c, err := New(Options[reflect.Type]{Source: reflectid.New(), Categories: cats})
	if err != nil {
		b.Fatal(err)
	}

	values := []any{0, "s", 1.5, errorsNew("x"), struct{}{}, []byte(nil)}
	for _, v := range values {
		c.Classify(v)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			c.Classify(values[r.Intn(len(values))])
		}
	})
}

// BenchmarkClassify_BruteForceBaseline is the uncached reference cost: the
// ordered subtype scan on every call. Compare against the Hot benchmarks to
// see what the memoization buys.
func BenchmarkClassify_BruteForceBaseline(b *testing.B) {
	parent := map[uint64]uint64{}
	for h := uint64(2); h <= 1024; h++ {
		if h%7 != 0 {
			parent[h] = h / 2
		}
	}
	src := &fakeSource{parent: parent}
	cats := []uint64{1, 3, 7}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		for pb.Next() {
			h := r.Uint64()&1023 + 1
			for _, cat := range cats {
				if src.AssignableTo(h, cat) {
					break
				}
			}
		}
	})
}
