/*
 * Copyright 2019 Dgraph Labs, Inc. and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command countish reads items from standard input, one per line, counts
// their approximate frequencies with the chosen algorithm, and prints
// every item at or above a support threshold. It is deliberately thin:
// all of the accuracy guarantees live in the countish package, not here.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/dgraph-io/countish"
	"github.com/dgraph-io/countish/driver"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "countish:", err)
		os.Exit(exitUsage)
	}

	if err := run(os.Stdin, os.Stdout, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "countish:", err)
		os.Exit(exitDataErr)
	}
}

type config struct {
	algorithm  string
	threshold  float64
	errorRate  float64
	confidence float64
	shards     int
	stats      bool
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("countish", flag.ContinueOnError)
	algorithm := fs.String("algorithm", "lossy", "counting algorithm: naive, lossy, or sticky")
	threshold := fs.Float64("threshold", 0.01, "support threshold s, in (0, 1]")
	errorRate := fs.Float64("error", 0, "error eps for lossy/sticky (default 0.5*threshold)")
	confidence := fs.Float64("confidence", 0.01, "failure probability delta for sticky")
	shards := fs.Int("shard", 1, "number of independent counter shards to fan out across")
	stats := fs.Bool("stats", false, "print N, tracked-entry count, and memory footprint to stderr")

	if err := fs.Parse(args); err != nil {
		return config{}, errors.Wrap(err, "parsing flags")
	}

	cfg := config{
		algorithm:  *algorithm,
		threshold:  *threshold,
		errorRate:  *errorRate,
		confidence: *confidence,
		shards:     *shards,
		stats:      *stats,
	}
	if cfg.errorRate == 0 {
		cfg.errorRate = 0.5 * cfg.threshold
	}
	switch cfg.algorithm {
	case "naive", "lossy", "sticky":
	default:
		return config{}, errors.Errorf("unrecognized --algorithm %q (want naive, lossy, or sticky)", cfg.algorithm)
	}
	if cfg.shards < 1 {
		return config{}, errors.Errorf("--shard must be >= 1, got %d", cfg.shards)
	}
	return cfg, nil
}

func newCounter(cfg config) (countish.Counter, error) {
	switch cfg.algorithm {
	case "naive":
		return countish.NewNaive(), nil
	case "lossy":
		return countish.NewLossy(cfg.threshold, cfg.errorRate)
	case "sticky":
		return countish.NewSticky(cfg.threshold, cfg.errorRate, cfg.confidence)
	default:
		return nil, errors.Errorf("unrecognized algorithm %q", cfg.algorithm)
	}
}

func run(stdin io.Reader, stdout io.Writer, cfg config) error {
	shards := make([]countish.Counter, cfg.shards)
	for i := range shards {
		c, err := newCounter(cfg)
		if err != nil {
			return errors.Wrap(err, "constructing counter")
		}
		shards[i] = c
	}

	if _, err := driver.Shard(stdin, shards, xxhash.Sum64String); err != nil {
		return errors.Wrap(err, "reading input")
	}

	rows, err := driver.MergeAboveThreshold(shards, cfg.threshold)
	if err != nil {
		return errors.Wrap(err, "querying counters")
	}
	for _, row := range rows {
		fmt.Fprintf(stdout, "%s %.6f\n", row.Key, row.Ratio)
	}

	if cfg.stats {
		printStats(shards)
	}
	return nil
}

func printStats(shards []countish.Counter) {
	var n uint64
	var entries int
	for _, c := range shards {
		n += c.N()
		entries += c.Len()
	}
	footprint := uint64(entries) * approxBytesPerEntry
	fmt.Fprintf(os.Stderr, "N=%s tracked=%s shards=%d ~mem=%s\n",
		humanize.Comma(int64(n)), humanize.Comma(int64(entries)), len(shards), humanize.Bytes(footprint))
	for i, c := range shards {
		if st, ok := c.(*countish.Sticky); ok {
			fmt.Fprintf(os.Stderr, "  shard %d: rate=%d\n", i, st.Rate())
		}
	}
}

// approxBytesPerEntry is a rough accounting of one tracked (key header +
// entry) pair, used only for the --stats footprint estimate -- it is not
// load-bearing on any guarantee.
const approxBytesPerEntry = 64
