// Command clsbench runs a synthetic classification workload and exposes
// optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/mkorolik/typematch/classify"
	"github.com/mkorolik/typematch/identity/reflectid"
	pmet "github.com/mkorolik/typematch/metrics/prom"
)

func main() {
	var (
		types      = flag.Int("types", 5_000, "distinct concrete types in the workload")
		categories = flag.Int("categories", 32, "category list length")
		buckets    = flag.Int("buckets", 0, "initial table buckets (0=default)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		zipfS = flag.Float64("zipf-s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf-v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	if *categories > *types {
		log.Fatalf("categories (%d) must not exceed types (%d)", *categories, *types)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "typematch", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Synthetic type population ----
	// reflect.ArrayOf mints a distinct concrete type per length; the first
	// -categories of them double as the category list, so a classification
	// matches exactly when the value's type index is below -categories.
	byteT := reflect.TypeOf(byte(0))
	values := make([]any, *types)
	cats := make([]reflect.Type, *categories)
	for i := 0; i < *types; i++ {
		at := reflect.ArrayOf(i, byteT)
		values[i] = reflect.Zero(at).Interface()
		if i < *categories {
			cats[i] = at
		}
	}

	c, err := classify.New(classify.Options[reflect.Type]{
		Source:         reflectid.New(),
		Categories:     cats,
		InitialBuckets: *buckets,
		Metrics:        metrics,
	})
	if err != nil {
		log.Fatalf("classify.New: %v", err)
	}

	// ---- Snapshot flags for goroutines ----
	typesMax := uint64(*types - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var total, matched, unmatched uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, typesMax)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				if c.Classify(values[localZipf.Uint64()]) == c.NoMatch() {
					atomic.AddUint64(&unmatched, 1)
				} else {
					atomic.AddUint64(&matched, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	matchedN := atomic.LoadUint64(&matched)
	unmatchedN := atomic.LoadUint64(&unmatched)
	hits, misses := c.Stats()

	fmt.Printf("types=%d categories=%d workers=%d dur=%v seed=%d\n",
		*types, *categories, workersN, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  matched=%d  unmatched=%d\n",
		ops, float64(ops)/elapsed.Seconds(), matchedN, unmatchedN)
	fmt.Printf("cache: hits=%d computations=%d resident=%d\n", hits, misses, c.Len())
}
