package vector

import (
	"math/big"
	"testing"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func scalarFromInt(n int64) ristretto.Scalar {
	var s ristretto.Scalar
	s.SetBigInt(big.NewInt(n))
	return s
}

func TestInnerProduct(t *testing.T) {
	a := []ristretto.Scalar{scalarFromInt(1), scalarFromInt(2), scalarFromInt(3)}
	b := []ristretto.Scalar{scalarFromInt(4), scalarFromInt(5), scalarFromInt(6)}

	// 1*4 + 2*5 + 3*6 = 32
	want := scalarFromInt(32)

	have, err := InnerProduct(a, b)
	assert.Nil(t, err)
	assert.True(t, want.Equals(&have))

	_, err = InnerProduct(a, b[:2])
	assert.NotNil(t, err)
}

func TestScalarPowers(t *testing.T) {
	two := scalarFromInt(2)

	powers := ScalarPowers(two, 5)
	assert.Equal(t, 5, len(powers))

	for i, want := range []int64{1, 2, 4, 8, 16} {
		expected := scalarFromInt(want)
		assert.True(t, expected.Equals(&powers[i]))
	}
}

func TestScalarPowersSum(t *testing.T) {
	two := scalarFromInt(2)

	// 1 + 2 + 4 + 8 = 15
	want := scalarFromInt(15)
	have := ScalarPowersSum(two, 4)
	assert.True(t, want.Equals(&have))
}

func TestHadamard(t *testing.T) {
	a := []ristretto.Scalar{scalarFromInt(2), scalarFromInt(3)}
	b := []ristretto.Scalar{scalarFromInt(5), scalarFromInt(7)}

	res, err := Hadamard(a, b)
	assert.Nil(t, err)

	w0 := scalarFromInt(10)
	w1 := scalarFromInt(21)
	assert.True(t, w0.Equals(&res[0]))
	assert.True(t, w1.Equals(&res[1]))
}

func TestExp(t *testing.T) {
	var g ristretto.Point
	g.SetBase()

	points := []ristretto.Point{g, g}
	scalars := []ristretto.Scalar{scalarFromInt(3), scalarFromInt(4)}

	have, err := Exp(scalars, points, 2, 1)
	assert.Nil(t, err)

	seven := scalarFromInt(7)
	var want ristretto.Point
	want.ScalarMultBase(&seven)

	assert.True(t, want.Equals(&have))
}

func TestSplit(t *testing.T) {
	a := []ristretto.Scalar{scalarFromInt(1), scalarFromInt(2), scalarFromInt(3), scalarFromInt(4)}

	left, right, err := SplitScalars(a, 2)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(left))
	assert.Equal(t, 2, len(right))

	_, _, err = SplitScalars(a, 5)
	assert.NotNil(t, err)
}
