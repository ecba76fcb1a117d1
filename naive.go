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

package countish

// Naive is an exact frequency counter: a plain mapping from key to count.
// It carries no accuracy guarantees to violate, which makes it the oracle
// every Lossy/Sticky differential test compares against.
type Naive struct {
	counts map[string]uint64
	n      uint64
}

// NewNaive returns a new exact counter.
func NewNaive() *Naive {
	return &Naive{
		counts: make(map[string]uint64),
	}
}

// Observe records one occurrence of key.
func (c *Naive) Observe(key string) {
	c.n++
	c.counts[key]++
}

// ItemsAboveThreshold returns every key with count/N >= s.
func (c *Naive) ItemsAboveThreshold(s float64) ([]Row, error) {
	if err := validateQueryThreshold(s); err != nil {
		return nil, err
	}
	if c.n == 0 {
		return nil, nil
	}
	rows := make([]Row, 0, len(c.counts))
	for key, count := range c.counts {
		ratio := float64(count) / float64(c.n)
		if ratio >= s {
			rows = append(rows, Row{Key: key, Count: count, Ratio: ratio})
		}
	}
	return rows, nil
}

// Entries returns every tracked key with its exact count and ratio.
func (c *Naive) Entries() []Row {
	rows := make([]Row, 0, len(c.counts))
	for key, count := range c.counts {
		var ratio float64
		if c.n > 0 {
			ratio = float64(count) / float64(c.n)
		}
		rows = append(rows, Row{Key: key, Count: count, Ratio: ratio})
	}
	return rows
}

// Len reports the number of distinct keys observed.
func (c *Naive) Len() int {
	return len(c.counts)
}

// N reports the total number of Observe calls.
func (c *Naive) N() uint64 {
	return c.n
}

var _ Counter = (*Naive)(nil)
