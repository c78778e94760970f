// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package randkey

import "testing"

func TestSplitDeterministic(t *testing.T) {
	k := New(42)
	n1, d1 := k.Split()
	n2, d2 := k.Split()
	if n1 != n2 || d1 != d2 {
		t.Errorf("split of same key differs: %v %v vs %v %v", n1, d1, n2, d2)
	}
	if n1 == k || d1 == k || n1 == d1 {
		t.Errorf("split keys must be fresh: key %v next %v draw %v", k, n1, d1)
	}
	if New(1) == New(2) {
		t.Errorf("different seeds gave the same root key")
	}
}

func TestSplitChain(t *testing.T) {
	k := New(7)
	seen := map[Key]bool{k: true}
	for i := 0; i < 1000; i++ {
		var d Key
		k, d = k.Split()
		if seen[k] || seen[d] {
			t.Fatalf("key reused at split %d", i)
		}
		seen[k] = true
		seen[d] = true
	}
}

func TestUniformRange(t *testing.T) {
	vals := make([]float32, 10000)
	New(3).UniformRange(vals, -0.5, 0.5)
	sum := float32(0)
	for _, v := range vals {
		if v < -0.5 || v >= 0.5 {
			t.Fatalf("value out of range: %v", v)
		}
		sum += v
	}
	if mean := sum / float32(len(vals)); mean > 0.02 || mean < -0.02 {
		t.Errorf("uniform mean too far from 0: %v", mean)
	}
}

func TestBernoulli(t *testing.T) {
	n := 20000
	p := make([]float32, n)
	for i := range p {
		p[i] = 0.25
	}
	s := make([]float32, n)
	New(11).Bernoulli(p, s)
	cnt := 0
	for _, v := range s {
		if v != 0 && v != 1 {
			t.Fatalf("non-binary sample: %v", v)
		}
		cnt += int(v)
	}
	rate := float32(cnt) / float32(n)
	if rate < 0.23 || rate > 0.27 {
		t.Errorf("bernoulli rate: %v, expected ~0.25", rate)
	}
	for i := range p {
		p[i] = 0
	}
	New(12).Bernoulli(p, s)
	for i, v := range s {
		if v != 0 {
			t.Fatalf("p=0 produced spike at %d", i)
		}
	}
}

func TestChoice(t *testing.T) {
	if idx := New(1).Choice([]float32{0, 0, 0}); idx != -1 {
		t.Errorf("all-zero weights should return -1, got %d", idx)
	}
	w := []float32{0, 1, 0, 1}
	cnt := [4]int{}
	k := New(5)
	for i := 0; i < 2000; i++ {
		var d Key
		k, d = k.Split()
		cnt[d.Choice(w)]++
	}
	if cnt[0] != 0 || cnt[2] != 0 {
		t.Errorf("zero-weight entries chosen: %v", cnt)
	}
	if cnt[1] < 850 || cnt[3] < 850 {
		t.Errorf("choice not balanced over equal weights: %v", cnt)
	}
}
