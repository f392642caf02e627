package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/michaelscutari/lsp/internal/scan"
)

type result struct {
	name    string
	entries int
	best    time.Duration
	total   time.Duration
}

func main() {
	dir := flag.String("dir", ".", "Directory to list")
	workers := flag.Int("workers", scan.DefaultWorkers, "Worker pool size for the pooled run")
	runs := flag.Int("runs", 5, "Timed runs per strategy")
	hidden := flag.Bool("all", false, "Include hidden entries")
	inode := flag.Bool("inode", false, "Collect inode numbers and link counts")
	verbose := flag.Bool("verbose", false, "Log collection diagnostics to stderr")
	flag.Parse()

	if *runs < 1 {
		fmt.Fprintln(os.Stderr, "warning: -runs must be at least 1, using 1")
		*runs = 1
	}

	base := func(threshold, n int) *scan.Options {
		return scan.DefaultOptions().
			WithWorkers(n).
			WithThreshold(threshold).
			WithHidden(*hidden).
			WithInode(*inode).
			WithVerbose(*verbose)
	}

	// Warm the dentry and inode caches so both strategies see the same state
	if _, err := scan.NewCollector(base(math.MaxInt, 1)).Collect(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "collect error: %v\n", err)
		os.Exit(1)
	}

	results := []result{
		measure("sequential", scan.NewCollector(base(math.MaxInt, 1)), *dir, *runs),
		measure("pool", scan.NewCollector(base(1, *workers)), *dir, *runs),
	}

	fmt.Printf("dir=%s workers=%d runs=%d all=%t inode=%t\n", *dir, *workers, *runs, *hidden, *inode)
	for _, r := range results {
		avg := r.total / time.Duration(*runs)
		rate := float64(0)
		if avg > 0 {
			rate = float64(r.entries) / avg.Seconds()
		}
		fmt.Printf("%-10s entries=%s best=%v avg=%v rate=%s entries/sec\n",
			r.name, humanize.Comma(int64(r.entries)), r.best, avg, humanize.Comma(int64(rate)))
	}
	if seq, pool := results[0].total, results[1].total; pool > 0 {
		fmt.Printf("speedup: %.2fx\n", float64(seq)/float64(pool))
	}
}

func measure(name string, c *scan.Collector, dir string, runs int) result {
	r := result{name: name, best: time.Duration(math.MaxInt64)}
	for i := 0; i < runs; i++ {
		start := time.Now()
		l, err := c.Collect(dir)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "collect error: %v\n", err)
			os.Exit(1)
		}
		r.entries = len(l.Entries)
		r.total += elapsed
		if elapsed < r.best {
			r.best = elapsed
		}
		c.Finish(l)
	}
	return r
}
