// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package actfun provides the elementwise nonlinearities used to compute the
output phi(z) of graph nodes, along with their derivatives.
*/
package actfun

import (
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// ActFun is an elementwise activation function
type ActFun int32

//go:generate stringer -type=ActFun

var KiT_ActFun = kit.Enums.AddEnum(ActFunN, kit.NotBitFlag, nil)

func (ev ActFun) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ActFun) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Identity returns x unchanged
	Identity ActFun = iota

	// Tanh is the hyperbolic tangent
	Tanh

	// Sigmoid is the logistic function 1 / (1 + exp(-x))
	Sigmoid

	// ReLU is max(0, x)
	ReLU

	// Softplus is log(1 + exp(x)), a smooth ReLU
	Softplus

	// XX1 is the saturating x / (x + 1) rate code response for x > 0, else 0
	XX1

	ActFunN
)

// Fx computes the function at x
func (af ActFun) Fx(x float32) float32 {
	switch af {
	case Tanh:
		return mat32.Tanh(x)
	case Sigmoid:
		return 1 / (1 + mat32.Exp(-x))
	case ReLU:
		if x > 0 {
			return x
		}
		return 0
	case Softplus:
		if x > 20 { // exp overflow guard; log(1+e^x) == x to float32 precision
			return x
		}
		return mat32.Log(1 + mat32.Exp(x))
	case XX1:
		if x > 0 {
			return x / (x + 1)
		}
		return 0
	}
	return x
}

// DFx computes the derivative of the function at x
func (af ActFun) DFx(x float32) float32 {
	switch af {
	case Tanh:
		th := mat32.Tanh(x)
		return 1 - th*th
	case Sigmoid:
		sg := 1 / (1 + mat32.Exp(-x))
		return sg * (1 - sg)
	case ReLU:
		if x > 0 {
			return 1
		}
		return 0
	case Softplus:
		return 1 / (1 + mat32.Exp(-x))
	case XX1:
		if x > 0 {
			xp := x + 1
			return 1 / (xp * xp)
		}
		return 0
	}
	return 1
}

// Apply sets dst[i] = Fx(src[i]).  dst may be src.
func (af ActFun) Apply(dst, src []float32) {
	for i, x := range src {
		dst[i] = af.Fx(x)
	}
}

// ApplyDeriv sets dst[i] = DFx(src[i]).  dst may be src.
func (af ActFun) ApplyDeriv(dst, src []float32) {
	for i, x := range src {
		dst[i] = af.DFx(x)
	}
}
