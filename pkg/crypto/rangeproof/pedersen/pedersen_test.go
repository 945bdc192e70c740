package pedersen_test

import (
	"bytes"
	"math/big"
	"testing"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/pedersen"
)

func TestPedersenScalar(t *testing.T) {
	ped := pedersen.New([]byte("random data"))

	s := ristretto.Scalar{}
	s.Rand()

	commitment := ped.CommitToScalar(s)

	assert.NotEqual(t, nil, commitment)
}

func TestCommitWithBlind(t *testing.T) {
	ped := pedersen.New([]byte("random data"))

	var v, blind ristretto.Scalar
	v.SetBigInt(big.NewInt(1000))
	blind.Rand()

	c1 := ped.CommitToScalarWithBlind(v, blind)
	c2 := ped.CommitToScalarWithBlind(v, blind)

	// same value and blind must give the same point
	assert.True(t, c1.EqualValue(c2))

	// v * G + blind * H computed by hand
	var vG, bH, want ristretto.Point
	vG.ScalarMult(&ped.BasePoint, &v)
	bH.ScalarMult(&ped.BlindPoint, &blind)
	want.Add(&vG, &bH)

	assert.True(t, want.Equals(&c1.Value))
}

func TestZeroValueCommit(t *testing.T) {
	ped := pedersen.New([]byte("random data"))

	var zero, blind ristretto.Scalar
	zero.SetZero()
	blind.Rand()

	c := ped.CommitToScalarWithBlind(zero, blind)

	// commitment to zero is blind * H only
	var bH ristretto.Point
	bH.ScalarMult(&ped.BlindPoint, &blind)
	assert.True(t, bH.Equals(&c.Value))
}

func TestCommitToVectors(t *testing.T) {
	ped := pedersen.New([]byte("vec data"))
	ped.BaseVector.Compute(4)

	ped2 := pedersen.New([]byte("vec data 2"))
	ped2.BaseVector.Compute(4)

	v1 := make([]ristretto.Scalar, 4)
	v2 := make([]ristretto.Scalar, 4)
	for i := range v1 {
		v1[i].Rand()
		v2[i].Rand()
	}

	c := ped.CommitToVectors(ped2, v1, v2)

	// blind * BlindPoint + v1 . G + v2 . H computed by hand
	var want, term ristretto.Point
	want.ScalarMult(&ped.BlindPoint, &c.BlindingFactor)
	for i := range v1 {
		term.ScalarMult(&ped.BaseVector.Bases[i], &v1[i])
		want.Add(&want, &term)
		term.ScalarMult(&ped2.BaseVector.Bases[i], &v2[i])
		want.Add(&want, &term)
	}

	assert.True(t, want.Equals(&c.Value))
}

func TestEncodeDecode(t *testing.T) {
	s := ristretto.Scalar{}
	s.Rand()

	c := pedersen.New([]byte("rand")).CommitToScalar(s)
	assert.True(t, c.Equals(c))

	buf := &bytes.Buffer{}
	err := c.Encode(buf)
	assert.Nil(t, err)

	var decC pedersen.Commitment
	err = decC.Decode(buf)
	assert.Nil(t, err)

	ok := decC.EqualValue(c)
	assert.True(t, ok)
}
