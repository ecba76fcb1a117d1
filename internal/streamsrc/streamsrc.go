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

// Package streamsrc generates synthetic key streams for differential and
// randomized tests. It uses a fast, non-cryptographic hash (the same one
// z/rtutil_test.go reaches for in the teacher repo) purely to turn an
// integer counter into key-shaped strings with a controllable skew -- it
// is never on a production code path.
package streamsrc

import (
	"fmt"
	"strconv"

	"github.com/dgryski/go-farm"
)

// ZipfLike generates n keys where roughly one in every skew observations
// is the single "heavy" key and the rest are distinct singletons, derived
// deterministically from a farm hash of the loop counter so the generated
// singleton names are stable across runs without needing an RNG.
func ZipfLike(n int, skew int, heavy string) []string {
	if skew < 1 {
		skew = 1
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		h := farm.Hash64([]byte(strconv.Itoa(i)))
		if int(h%uint64(skew)) == 0 {
			out = append(out, heavy)
			continue
		}
		out = append(out, fmt.Sprintf("n%d", h))
	}
	return out
}
