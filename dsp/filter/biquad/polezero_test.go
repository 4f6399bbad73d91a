package biquad

import (
	"math/cmplx"
	"testing"
)

func TestCoefficientsRoots_SecondOrder(t *testing.T) {
	p1 := complex(0.72, 0.19)
	p2 := cmplx.Conj(p1)
	z1 := complex(0.31, 0.44)
	z2 := cmplx.Conj(z1)

	b0 := 2.3
	c := Coefficients{
		B0: b0,
		B1: -b0 * real(z1+z2),
		B2: b0 * real(z1*z2),
		A1: -real(p1 + p2),
		A2: real(p1 * p2),
	}

	if poles := c.Poles(); !unorderedRootsClose(poles, p1, p2, 1e-12) {
		t.Fatalf("unexpected poles: got=%v want={%v,%v}", poles, p1, p2)
	}
	if zeros := c.Zeros(); !unorderedRootsClose(zeros, z1, z2, 1e-12) {
		t.Fatalf("unexpected zeros: got=%v want={%v,%v}", zeros, z1, z2)
	}
	if !c.Stable() {
		t.Fatal("poles inside the unit circle must report stable")
	}
}

func TestCoefficientsRoots_FirstOrder(t *testing.T) {
	c := Coefficients{
		B0: 1.0,
		B1: -0.3,
		B2: 0.0,
		A1: -0.8,
		A2: 0.0,
	}

	if poles := c.Poles(); !unorderedRootsClose(poles, complex(0.8, 0), complex(0, 0), 1e-12) {
		t.Fatalf("unexpected first-order poles: %v", poles)
	}
	if zeros := c.Zeros(); !unorderedRootsClose(zeros, complex(0.3, 0), complex(0, 0), 1e-12) {
		t.Fatalf("unexpected first-order zeros: %v", zeros)
	}
}

func TestStable(t *testing.T) {
	if c := (Coefficients{B0: 1, A1: -2, A2: 1}); c.Stable() {
		t.Fatal("double pole on the unit circle must be unstable")
	}
	if c := (Coefficients{B0: 1, A2: 1.21}); c.Stable() {
		t.Fatal("poles at radius 1.1 must be unstable")
	}
	if c := Passthrough(); !c.Stable() {
		t.Fatal("passthrough must be stable")
	}
}

func unorderedRootsClose(got [2]complex128, want1, want2 complex128, tol float64) bool {
	return (rootsClose(got[0], want1, tol) && rootsClose(got[1], want2, tol)) ||
		(rootsClose(got[0], want2, tol) && rootsClose(got[1], want1, tol))
}

func rootsClose(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-b) <= tol
}
