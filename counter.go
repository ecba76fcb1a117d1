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

// Package countish implements approximate frequency counting over
// unbounded data streams. It provides three interchangeable counters --
// Naive (exact), Lossy (deterministic bucketed pruning), and Sticky
// (randomized geometric-rate sampling) -- built from Manku and Motwani's
// "Approximate Frequency Counts over Data Streams" (VLDB 2002).
//
// Every counter amortizes Observe in O(1) expected time and answers
// ItemsAboveThreshold as a pure read over its current state. Counters do
// not persist, merge, or support decrement; see the package-level design
// notes in DESIGN.md for the rationale.
package countish

import "github.com/pkg/errors"

// ErrInvalidParameter is the sentinel wrapped by every parameter validation
// failure raised at construction or query time.
var ErrInvalidParameter = errors.New("countish: invalid parameter")

// invalidParameter wraps ErrInvalidParameter with call-site context, the
// way z.SuperFlag's accessors wrap parse failures with errors.Wrapf.
func invalidParameter(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}

// Row is one reported entry: a key, its current lower-bound count, and the
// ratio f/N that ItemsAboveThreshold compares against the support
// threshold.
type Row struct {
	Key   string
	Count uint64
	Ratio float64
}

// Counter is the capability surface shared by Naive, Lossy, and Sticky
// (spec section 4.1). A factory constructs each variant with its own
// parameters; callers otherwise use them interchangeably through this
// interface.
type Counter interface {
	// Observe records one occurrence of key. Amortized O(1) expected time.
	Observe(key string)

	// ItemsAboveThreshold returns every key whose estimated frequency ratio
	// is at least s, with guarantees that depend on the variant (see the
	// per-type doc comments on Lossy and Sticky). s must be in (0, 1];
	// s == 0 is accepted as a convenience and returns every tracked entry.
	ItemsAboveThreshold(s float64) ([]Row, error)

	// Entries returns every currently tracked row, regardless of threshold.
	// This is additive beyond the spec's query contract -- it exposes the
	// sketch's full retained set for inspection (e.g. the CLI's --stats
	// mode) without requiring a caller to guess a threshold of 0.
	Entries() []Row

	// Len reports the number of entries currently tracked.
	Len() int

	// N reports the total number of Observe calls since construction.
	N() uint64
}

// entry is the Lossy/Sticky bookkeeping record (spec section 3): f is the
// count accumulated since admission, delta is the maximum possible count
// the key could have had before admission that went unrecorded.
type entry struct {
	f     uint64
	delta uint64
}

func validateQueryThreshold(s float64) error {
	if s < 0 || s > 1 {
		return invalidParameter("support threshold %v must be in [0, 1]", s)
	}
	return nil
}
