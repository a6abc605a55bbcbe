package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/101x4/LFUCache/adapters/prometheus"
	"github.com/101x4/LFUCache/core/cache"
	"github.com/101x4/LFUCache/core/loader"
)

// === Config ===

var (
	logLevel    = slog.LevelInfo
	N           = getEnvInt("N", 500_000)
	workers     = getEnvInt("WORKERS", 8)
	keyspace    = getEnvInt("KEYS", 10_000)
	capacity    = getEnvInt("CAPACITY", 2_000)
	ttl         = getEnvDuration("TTL", 5*time.Second)
	readPct     = getEnvInt("READ_PCT", 80)
	sourceDelay = getEnvDuration("SOURCE_DELAY", 0)
	promPort    = getEnvInt("PROM_PORT", 2112)
	wait        = getEnvBool("WAIT", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "0")
	if v == "" {
		return fallback
	}
	if v == "1" || strings.ToLower(v) == "true" {
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(log)

	fmt.Printf("     ops: %d\n", N)
	fmt.Printf(" workers: %d\n", workers)
	fmt.Printf("    keys: %d\n", keyspace)
	fmt.Printf("capacity: %d\n", capacity)
	fmt.Printf("     ttl: %s\n", ttl)
	fmt.Printf("   reads: %d%%\n", readPct)

	// === metrics ===

	metrics := promadapter.NewAllMetrics(prometheus.DefaultRegisterer)

	promMux := http.NewServeMux()
	promMux.Handle("/metrics", promhttp.Handler())
	promServer := &http.Server{Addr: fmt.Sprintf(":%d", promPort), Handler: promMux}
	go func() {
		log.Info("prometheus metrics server starting", slog.Int("port", promPort))
		if err := promServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("prometheus server error", slog.Any("error", err))
		}
	}()
	defer promServer.Shutdown(context.Background())

	// === wire cache and loader ===

	c, err := cache.New[string, int64](capacity, ttl,
		cache.WithName("loadtest"),
		cache.WithLogger(log),
		cache.WithMetrics(metrics.Cache),
	)
	checkErr(err)
	defer c.Close()

	var sourceLoads atomic.Int64
	source := func(ctx context.Context, key string) (int64, error) {
		sourceLoads.Add(1)
		if sourceDelay > 0 {
			time.Sleep(sourceDelay)
		}
		h := fnv.New64a()
		h.Write([]byte(key))
		return int64(h.Sum64()), nil
	}

	l := loader.New[int64](c, source,
		loader.WithName("loadtest"),
		loader.WithLogger(log),
		loader.WithMetrics(metrics.Loader),
	)

	// === START ===

	log.Info("==================================")
	log.Info("starting ...")

	startAt := time.Now()

	var done atomic.Int64
	progress := time.NewTicker(time.Second)
	defer progress.Stop()
	go func() {
		for range progress.C {
			log.Info("progress",
				slog.Int64("ops", done.Load()),
				slog.Int("size", c.Size()),
			)
		}
	}()

	opsPerWorker := N / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(workerID)))
			ctx := context.Background()

			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("key-%d", r.Intn(keyspace))
				if r.Intn(100) < readPct {
					_, err := l.Get(ctx, key)
					checkErr(err)
				} else {
					c.Put(key, r.Int63())
				}
				done.Add(1)
			}
		}(w)
	}
	wg.Wait()

	// === stats ===

	doneAt := time.Now()
	took := doneAt.Sub(startAt)
	totalOps := done.Load()
	loads := sourceLoads.Load()
	mu := getMemUsage()
	runtime.GC()

	println("")
	println("==========================================")
	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("    total ops: %d\n", totalOps)
	fmt.Printf("   avg. ops/s: %d\n", int(float64(totalOps)/took.Seconds()))
	fmt.Printf(" source loads: %d\n", loads)
	fmt.Printf("   final size: %d\n", c.Size())
	fmt.Printf("    mem (sys): %d MiB\n", mu.Sys/1024/1024)

	if wait {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		log.Info("waiting for Ctrl+C, metrics stay scrapable",
			slog.String("url", fmt.Sprintf("http://localhost:%d/metrics", promPort)),
		)
		<-ctx.Done()
	}
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// === Helpers ===

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
