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

import (
	"math"
	"math/rand"
	"time"
)

// Sticky implements Sticky Sampling: a randomized sketch whose sampling
// rate r thins out older observations geometrically so that the expected
// number of tracked entries stays bounded regardless of stream length.
//
// The rate schedule follows the paper literally rather than strict
// doubling from the first observation: r=1 for the first 2t observations,
// then after the k-th rate change the rate is 2^k and persists for
// 2^k * t observations (spec section 4.3's open question is resolved in
// favor of this schedule, matching the canonical 1,2,2,4,4,4,4,8 pattern).
type Sticky struct {
	s     float64
	eps   float64
	delta float64
	t     uint64

	n             uint64
	r             uint64
	k             uint64
	nextThreshold uint64
	data          map[string]*entry
	rng           *rand.Rand
}

// StickyOption configures a Sticky counter at construction.
type StickyOption func(*Sticky)

// WithRand overrides the random source used for sampling and thinning
// decisions. Production callers may omit this and get a per-instance,
// non-deterministically seeded generator; tests should supply a seeded
// one for reproducibility (spec section 4.3, scenario 6).
func WithRand(r *rand.Rand) StickyOption {
	return func(st *Sticky) {
		st.rng = r
	}
}

// NewSticky returns a new Sticky Sampling sketch with support threshold s,
// error eps (eps < s), and failure probability delta in (0, 1).
func NewSticky(s, eps, delta float64, opts ...StickyOption) (*Sticky, error) {
	if s <= 0 || s > 1 {
		return nil, invalidParameter("support s=%v must be in (0, 1]", s)
	}
	if eps <= 0 || eps >= s {
		return nil, invalidParameter("error eps=%v must be in (0, s=%v)", eps, s)
	}
	if delta <= 0 || delta >= 1 {
		return nil, invalidParameter("failure probability delta=%v must be in (0, 1)", delta)
	}

	t := uint64(math.Ceil((1 / eps) * math.Log(1/(s*delta))))
	if t == 0 {
		t = 1
	}

	st := &Sticky{
		s:             s,
		eps:           eps,
		delta:         delta,
		t:             t,
		r:             1,
		nextThreshold: 2 * t,
		data:          make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(st)
	}
	if st.rng == nil {
		st.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return st, nil
}

// Observe records one occurrence of key (spec section 4.3).
func (st *Sticky) Observe(key string) {
	st.n++

	for st.n > st.nextThreshold {
		st.changeRate()
	}

	if e, ok := st.data[key]; ok {
		e.f++
		return
	}
	if st.sample(1, st.r) {
		st.data[key] = &entry{f: 1, delta: st.n - 1}
	}
}

// changeRate advances the sampling rate to the next power of two and
// thins every stored entry so each surviving unit of f still represents
// an observation sampled at the new, smaller rate (spec section 4.3:
// "unbiased thinning"). It must run before the observation that crossed
// the threshold is admitted under the new rate.
func (st *Sticky) changeRate() {
	rOld := st.r
	st.k++
	rNew := uint64(1) << st.k
	st.r = rNew
	st.nextThreshold += rNew * st.t

	for key, e := range st.data {
		survivors := st.thin(e.f, rOld, rNew)
		if survivors == 0 {
			delete(st.data, key)
			continue
		}
		e.f = survivors
	}
}

// thin samples f ~ Binomial(f, rOld/rNew) by flipping one coin per unit
// of the existing count, exactly as spec section 4.3 describes it.
func (st *Sticky) thin(f, rOld, rNew uint64) uint64 {
	p := float64(rOld) / float64(rNew)
	var survivors uint64
	for i := uint64(0); i < f; i++ {
		if st.rng.Float64() < p {
			survivors++
		}
	}
	return survivors
}

// sample draws a single trial with success probability num/den.
func (st *Sticky) sample(num, den uint64) bool {
	return st.rng.Float64() < float64(num)/float64(den)
}

// ItemsAboveThreshold returns every (key, f/N) with f >= (s-eps)*N, with
// probability >= 1-delta of no false negatives among true heavy hitters.
func (st *Sticky) ItemsAboveThreshold(s float64) ([]Row, error) {
	if err := validateQueryThreshold(s); err != nil {
		return nil, err
	}
	if st.n == 0 {
		return nil, nil
	}
	cutoff := (s - st.eps) * float64(st.n)
	rows := make([]Row, 0, len(st.data))
	for key, e := range st.data {
		if float64(e.f) >= cutoff {
			rows = append(rows, Row{Key: key, Count: e.f, Ratio: float64(e.f) / float64(st.n)})
		}
	}
	return rows, nil
}

// Entries returns every currently tracked row.
func (st *Sticky) Entries() []Row {
	rows := make([]Row, 0, len(st.data))
	for key, e := range st.data {
		var ratio float64
		if st.n > 0 {
			ratio = float64(e.f) / float64(st.n)
		}
		rows = append(rows, Row{Key: key, Count: e.f, Ratio: ratio})
	}
	return rows
}

// Len reports the number of entries currently tracked.
func (st *Sticky) Len() int {
	return len(st.data)
}

// N reports the total number of Observe calls.
func (st *Sticky) N() uint64 {
	return st.n
}

// Rate reports the current sampling rate r, used by the CLI's --stats mode.
func (st *Sticky) Rate() uint64 {
	return st.r
}

var _ Counter = (*Sticky)(nil)
