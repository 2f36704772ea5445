// Package main implements a concurrent append load generator, exercising
// the many-producers-one-journal concurrency property end to end.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/dsjohal14/ledgerwal/internal/journal"
)

func main() {
	dir := flag.String("dir", "", "journal directory (must not already contain segment files)")
	goroutines := flag.Int("goroutines", 100, "number of concurrent producer goroutines")
	perGoroutine := flag.Int("appends", 100, "appends per goroutine")
	maxPayload := flag.Int("max-payload", 4096, "maximum random payload size in bytes")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "-dir is required")
		os.Exit(1)
	}

	j, err := journal.AppendJournal(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open journal: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = j.Close() }()

	total := *goroutines * *perGoroutine
	start := time.Now()

	var wg sync.WaitGroup
	errs := make(chan error, total)

	for g := 0; g < *goroutines; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(seed)))
			for i := 0; i < *perGoroutine; i++ {
				size := rng.Intn(*maxPayload) + 1
				payload := make([]byte, size)
				rng.Read(payload)

				future, err := j.Append(payload)
				if err != nil {
					errs <- err
					continue
				}
				if err := future.Wait(); err != nil {
					errs <- err
				}
			}
		}(g)
	}

	wg.Wait()
	close(errs)
	elapsed := time.Since(start)

	var failed int
	for err := range errs {
		failed++
		fmt.Fprintf(os.Stderr, "append failed: %v\n", err)
	}

	fmt.Printf("appended %d records (%d failed) across %d goroutines in %s (%.0f records/sec)\n",
		total-failed, failed, *goroutines, elapsed, float64(total)/elapsed.Seconds())
}
