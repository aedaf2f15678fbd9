// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package attitude

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// normTolerance is how far |q|² may sit from 1 before Normalize rescales.
// Quaternions already unit to machine precision are returned bit-identical.
const normTolerance = 1e-12

// Quaternion is a rotation quaternion w + xi + yj + zk.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity is the zero rotation.
var Identity = Quaternion{W: 1}

// Number returns q as a gonum quaternion.
func (q Quaternion) Number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// FromNumber converts a gonum quaternion.
func FromNumber(n quat.Number) Quaternion {
	return Quaternion{W: n.Real, X: n.Imag, Y: n.Jmag, Z: n.Kmag}
}

// Norm returns |q|.
func (q Quaternion) Norm() float64 {
	return quat.Abs(q.Number())
}

// Normalize returns q scaled to unit norm. ok is false when q is zero or
// has non-finite components, in which case q is returned unchanged.
func (q Quaternion) Normalize() (Quaternion, bool) {
	n := q.Number()
	if quat.IsNaN(n) || quat.IsInf(n) {
		return q, false
	}
	n2 := q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z
	if n2 == 0 {
		return q, false
	}
	if math.Abs(n2-1) <= normTolerance {
		return q, true
	}
	return FromNumber(quat.Scale(1/quat.Abs(n), n)), true
}

// Conj returns the conjugate of q, which is its inverse when q is unit.
func (q Quaternion) Conj() Quaternion {
	return FromNumber(quat.Conj(q.Number()))
}

// Mul returns the Hamilton product q*r.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return FromNumber(quat.Mul(q.Number(), r.Number()))
}

// Between returns the rotation taking orientation a to orientation b.
func Between(a, b Quaternion) Quaternion {
	return b.Mul(a.Conj())
}
