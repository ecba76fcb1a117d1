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

// Lossy implements the Lossy Counting algorithm: a deterministic, bucketed
// pruning sketch. The stream is divided into buckets of width
// w = ceil(1/eps); at each bucket boundary every entry whose worst-case
// total f+delta cannot exceed the current bucket id is discarded. This
// bounds memory to O((1/eps) * log(eps*N)) entries while guaranteeing no
// false negatives at the support threshold s.
type Lossy struct {
	s   float64
	eps float64
	w   uint64

	n        uint64
	bCurrent uint64
	data     map[string]*entry
}

// LossyOption configures a Lossy counter at construction.
type LossyOption func(*Lossy)

// WithLossyCapacityHint pre-sizes the internal map to reduce growth churn
// when the approximate number of distinct keys is known in advance. It
// does not change the sketch's accuracy or pruning behavior.
func WithLossyCapacityHint(n int) LossyOption {
	return func(l *Lossy) {
		l.data = make(map[string]*entry, n)
	}
}

// NewLossy returns a new Lossy Counting sketch with support threshold s and
// error eps, where 0 < eps < s <= 1.
func NewLossy(s, eps float64, opts ...LossyOption) (*Lossy, error) {
	if s <= 0 || s > 1 {
		return nil, invalidParameter("support s=%v must be in (0, 1]", s)
	}
	if eps <= 0 || eps >= s {
		return nil, invalidParameter("error eps=%v must be in (0, s=%v)", eps, s)
	}
	l := &Lossy{
		s:    s,
		eps:  eps,
		w:    ceilDiv(1, eps),
		data: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Observe records one occurrence of key (spec section 4.2).
func (l *Lossy) Observe(key string) {
	l.n++
	l.bCurrent = ceilDivU(l.n, l.w)

	if e, ok := l.data[key]; ok {
		e.f++
	} else {
		l.data[key] = &entry{f: 1, delta: l.bCurrent - 1}
	}

	if l.n%l.w == 0 {
		l.prune()
	}
}

// prune removes every entry whose worst-case total f+delta cannot exceed
// the current bucket id, and therefore cannot exceed eps*N at any future
// query (spec section 4.2, invariant P4).
func (l *Lossy) prune() {
	for key, e := range l.data {
		if e.f+e.delta <= l.bCurrent {
			delete(l.data, key)
		}
	}
}

// ItemsAboveThreshold returns every (key, f/N) with f >= (s-eps)*N.
func (l *Lossy) ItemsAboveThreshold(s float64) ([]Row, error) {
	if err := validateQueryThreshold(s); err != nil {
		return nil, err
	}
	if l.n == 0 {
		return nil, nil
	}
	cutoff := (s - l.eps) * float64(l.n)
	rows := make([]Row, 0, len(l.data))
	for key, e := range l.data {
		if float64(e.f) >= cutoff {
			rows = append(rows, Row{Key: key, Count: e.f, Ratio: float64(e.f) / float64(l.n)})
		}
	}
	return rows, nil
}

// Entries returns every currently tracked row.
func (l *Lossy) Entries() []Row {
	rows := make([]Row, 0, len(l.data))
	for key, e := range l.data {
		var ratio float64
		if l.n > 0 {
			ratio = float64(e.f) / float64(l.n)
		}
		rows = append(rows, Row{Key: key, Count: e.f, Ratio: ratio})
	}
	return rows
}

// Len reports the number of entries currently tracked.
func (l *Lossy) Len() int {
	return len(l.data)
}

// N reports the total number of Observe calls.
func (l *Lossy) N() uint64 {
	return l.n
}

var _ Counter = (*Lossy)(nil)

// ceilDiv computes ceil(1/eps) as an integer bucket width.
func ceilDiv(num float64, eps float64) uint64 {
	w := uint64(num / eps)
	if float64(w)*eps < num {
		w++
	}
	if w == 0 {
		w = 1
	}
	return w
}

// ceilDivU computes ceil(n/w) for positive integers, used to derive
// b_current from N and the bucket width.
func ceilDivU(n, w uint64) uint64 {
	if w == 0 {
		return 0
	}
	return (n + w - 1) / w
}
