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

// Package driver is the thin, external-collaborator glue between a line
// oriented input stream and a countish.Counter: it owns none of the
// sketch logic, only the boundary interface that feeds Observe calls and
// reads back a query (spec section 1, "Out of scope as external
// collaborators").
package driver

import (
	"bufio"
	"io"

	"github.com/dgraph-io/countish"
)

// Feed reads r line by line, treating each line (after trimming its
// trailing newline) as one item, and calls Observe on c for each. It
// returns the number of lines processed and the first read error, if any
// (io.EOF is not reported as an error).
func Feed(r io.Reader, c countish.Counter) (int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var n int64
	for scanner.Scan() {
		c.Observe(scanner.Text())
		n++
	}
	return n, scanner.Err()
}

// Shard fans lines out across len(shards) independent counters by hashing
// each item, so a caller can process a stream with more than one Counter
// instance and merge query results externally -- the only form of
// multi-instance coordination spec section 5 permits ("a caller wishing
// to shard across threads must create one instance per thread and merge
// results externally; not provided by the core").
func Shard(r io.Reader, shards []countish.Counter, hash func(string) uint64) (int64, error) {
	if len(shards) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var n int64
	for scanner.Scan() {
		line := scanner.Text()
		idx := hash(line) % uint64(len(shards))
		shards[idx].Observe(line)
		n++
	}
	return n, scanner.Err()
}

// MergeAboveThreshold re-queries every shard at s and concatenates the
// rows. It is a merge of query *results*, never of sketch state, so it
// does not reintroduce the "no distributed merge" non-goal -- each shard
// remains an independent, un-combined sketch.
func MergeAboveThreshold(shards []countish.Counter, s float64) ([]countish.Row, error) {
	var all []countish.Row
	for _, c := range shards {
		rows, err := c.ItemsAboveThreshold(s)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}
