// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package randkey provides an explicit, splittable pseudorandom key.

A Key is a linear resource: each stochastic operation first splits the
key it was handed into a fresh key (returned to the caller, to be used
for the next operation) and one or more draw keys, which are each used
for exactly one draw.  A key that has been split must not be used again.
There is no package-level random state: every draw is a pure function
of the key it is given, so a run is fully reproducible from its seed.

Draws are generated by a PCG stream seeded from the key.
*/
package randkey

import (
	"golang.org/x/exp/rand"
)

// Key is the opaque state of a pseudorandom stream.
type Key uint64

// New returns the root key for given seed.
func New(seed uint64) Key {
	r := Key(seed).stream()
	return Key(r.Uint64())
}

// stream returns a PCG generator fully determined by the key
func (k Key) stream() *rand.Rand {
	src := &rand.PCGSource{}
	src.Seed(uint64(k))
	return rand.New(src)
}

// Split consumes k, returning the next key to carry forward and one
// draw key to use for a single stochastic operation.
func (k Key) Split() (next, draw Key) {
	ks := k.SplitN(2)
	return ks[0], ks[1]
}

// SplitN consumes k and returns n derived keys.  By convention the first
// is carried forward and the remainder are draw keys.
func (k Key) SplitN(n int) []Key {
	r := k.stream()
	ks := make([]Key, n)
	for i := range ks {
		ks[i] = Key(r.Uint64())
	}
	return ks
}

// Uniform fills dst with uniform draws in [0,1).
func (k Key) Uniform(dst []float32) {
	r := k.stream()
	for i := range dst {
		dst[i] = r.Float32()
	}
}

// UniformRange fills dst with uniform draws in [lo,hi).
func (k Key) UniformRange(dst []float32, lo, hi float32) {
	k.Uniform(dst)
	for i := range dst {
		dst[i] = lo + dst[i]*(hi-lo)
	}
}

// Bernoulli sets dst[i] to 1 with probability p[i] and 0 otherwise.
// Probabilities outside of [0,1] saturate.
func (k Key) Bernoulli(p, dst []float32) {
	k.Uniform(dst)
	for i, u := range dst {
		if u < p[i] {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}

// Choice returns an index drawn with probability proportional to the
// non-negative weights w, or -1 if the weights sum to zero.
func (k Key) Choice(w []float32) int {
	sum := float64(0)
	for _, wv := range w {
		if wv > 0 {
			sum += float64(wv)
		}
	}
	if sum <= 0 {
		return -1
	}
	u := k.stream().Float64() * sum
	last := -1
	cum := float64(0)
	for i, wv := range w {
		if wv <= 0 {
			continue
		}
		cum += float64(wv)
		last = i
		if u < cum {
			return i
		}
	}
	return last
}
