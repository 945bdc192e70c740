package vector

import (
	"errors"

	ristretto "github.com/bwesterb/go-ristretto"
)

// Add adds two scalar vectors element-wise
func Add(a, b []ristretto.Scalar) ([]ristretto.Scalar, error) {
	if len(a) != len(b) {
		return nil, errors.New("length of a does not equal b")
	}

	res := make([]ristretto.Scalar, len(a))

	for i := 0; i < len(a); i++ {
		res[i].Add(&a[i], &b[i])
	}

	return res, nil
}

// AddScalar adds the scalar b to every element of the slice a
func AddScalar(a []ristretto.Scalar, b ristretto.Scalar) []ristretto.Scalar {

	res := make([]ristretto.Scalar, len(a))

	for i := 0; i < len(a); i++ {
		res[i].Add(&a[i], &b)
	}

	return res
}

// Sub subtracts a vector b from a vector a
func Sub(a, b []ristretto.Scalar) ([]ristretto.Scalar, error) {
	if len(a) != len(b) {
		return nil, errors.New("length of a does not equal b")
	}

	res := make([]ristretto.Scalar, len(a))

	for i := 0; i < len(a); i++ {
		res[i].Sub(&a[i], &b[i])
	}

	return res, nil
}

// SubScalar subtracts a scalar b from every element in the slice a
func SubScalar(a []ristretto.Scalar, b ristretto.Scalar) []ristretto.Scalar {

	if b.IsNonZeroI() == 0 {
		return a
	}

	res := make([]ristretto.Scalar, len(a))

	for i := 0; i < len(a); i++ {
		res[i].Sub(&a[i], &b)
	}

	return res
}

// MulScalar multiplies every element of a by the scalar b
func MulScalar(a []ristretto.Scalar, b ristretto.Scalar) []ristretto.Scalar {

	res := make([]ristretto.Scalar, len(a))

	for i := 0; i < len(a); i++ {
		res[i].Mul(&a[i], &b)
	}

	return res
}

// Exp exponentiates and sums a vector a to b, creating a commitment
func Exp(a []ristretto.Scalar, b []ristretto.Point, n, m int) (ristretto.Point, error) {
	result := ristretto.Point{} // defaults to zero
	result.SetZero()

	if len(a) != len(b) {
		return result, errors.New("length of slice of scalars a does not equal length of slice of points b")
	}

	if len(a) < n*m {
		return result, errors.New("length of scalar a is less than n*m")
	}

	for i := range b {

		scalar := a[i]
		point := b[i]

		var sum ristretto.Point
		sum.ScalarMult(&point, &scalar)

		result.Add(&result, &sum)
	}

	return result, nil
}

// ScalarPowers constructs a vector of powers from a scalar
// ScalarPowers(5, 3) = <5^0, 5^1, 5^2>
func ScalarPowers(a ristretto.Scalar, n uint32) []ristretto.Scalar {

	res := make([]ristretto.Scalar, n)

	if n == 0 {
		return res
	}

	var k ristretto.Scalar
	k.SetOne()
	res[0] = k

	if n == 1 {
		return res
	}
	res[1] = a

	for i := uint32(2); i < n; i++ {
		res[i].Mul(&res[i-1], &a)
	}

	return res
}

// ScalarPowersSum sums the powers of a scalar from a^0 up to a^(n-1)
func ScalarPowersSum(a ristretto.Scalar, n uint64) ristretto.Scalar {

	res := ristretto.Scalar{}
	res.SetZero()

	if n == 0 {
		return res
	}

	res.SetOne()

	if n == 1 {
		return res
	}

	prev := a

	for i := uint64(1); i < n; i++ {
		if i > 1 {
			prev.Mul(&prev, &a)
		}
		res.Add(&res, &prev)
	}

	return res
}

// Hadamard computes the element-wise product of two scalar vectors
func Hadamard(a, b []ristretto.Scalar) ([]ristretto.Scalar, error) {

	if len(a) != len(b) {
		return nil, errors.New("length of a does not equal length of b")
	}

	res := make([]ristretto.Scalar, len(a))

	for i := 0; i < len(a); i++ {
		res[i].Mul(&a[i], &b[i])
	}
	return res, nil
}

// InnerProduct computes the inner product of two scalar vectors
func InnerProduct(a, b []ristretto.Scalar) (ristretto.Scalar, error) {

	res := ristretto.Scalar{}
	res.SetZero()

	if len(a) != len(b) {
		return res, errors.New("length of a does not equal length of b")
	}

	for i := range a {
		res.MulAdd(&a[i], &b[i], &res)
	}
	return res, nil
}

// SplitScalars splits a scalar slice into two slices at position n
func SplitScalars(a []ristretto.Scalar, n uint32) ([]ristretto.Scalar, []ristretto.Scalar, error) {
	if uint32(len(a)) < n {
		return nil, nil, errors.New("split point is past the end of the slice")
	}
	return a[:n], a[n:], nil
}

// SplitPoints splits a point slice into two slices at position n
func SplitPoints(a []ristretto.Point, n uint32) ([]ristretto.Point, []ristretto.Point, error) {
	if uint32(len(a)) < n {
		return nil, nil, errors.New("split point is past the end of the slice")
	}
	return a[:n], a[n:], nil
}
