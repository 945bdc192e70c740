package rangeproof

import (
	ristretto "github.com/bwesterb/go-ristretto"
)

// BitCommitment holds the bit vectors aL and aR for a committed value,
// where aL is the binary decomposition of the value and aR = aL - 1
type BitCommitment struct {
	AL, AR []ristretto.Scalar
}

// BitCommit decomposes v into n bits
func BitCommit(v uint64, n uint32) BitCommitment {

	bc := BitCommitment{
		AL: make([]ristretto.Scalar, n),
		AR: make([]ristretto.Scalar, n),
	}

	var zero ristretto.Scalar
	zero.SetZero()
	var one ristretto.Scalar
	one.SetOne()

	for i := uint32(0); i < n; i++ {
		if (v>>i)&1 == 1 {
			bc.AL[i] = one
		} else {
			bc.AL[i] = zero
		}
		bc.AR[i].Sub(&bc.AL[i], &one)
	}

	return bc
}

// Ensure checks that the bit vectors recompose to v
func (b *BitCommitment) Ensure(v uint64) bool {

	var one ristretto.Scalar
	one.SetOne()

	var testAL, testAR uint64

	for i := range b.AL {
		if b.AL[i].Equals(&one) {
			testAL += 1 << uint(i)
		}
		if b.AR[i].IsNonZeroI() == 0 {
			testAR += 1 << uint(i)
		}
	}

	return testAL == v && testAR == v
}
