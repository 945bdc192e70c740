package rangeproof

import (
	"math/big"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/vector"
)

// polynomial holds the coefficient vectors of the degree-1 vector
// polynomials l(X) and r(X), plus the coefficients of
// t(X) = <l(X), r(X)> = t0 + t1*X + t2*X^2
type polynomial struct {
	l0, l1 []ristretto.Scalar
	r0, r1 []ristretto.Scalar

	t0, t1, t2 ristretto.Scalar
}

// computePoly assembles l(X) and r(X) from the bit vectors, the blinding
// vectors and the challenges y and z:
//
//	l(X) = (aL - z*1^n) + sL*X
//	r(X) = y^n o (aR + z*1^n + sR*X) + z^2*2^n
func computePoly(aL, aR, sL, sR []ristretto.Scalar, y, z ristretto.Scalar) (*polynomial, error) {

	n := uint32(len(aL))

	// l0 = aL - z*1^n
	l0 := vector.SubScalar(aL, z)

	// l1 = sL
	l1 := sL

	yN := vector.ScalarPowers(y, n)

	// r0 = y^n o (aR + z*1^n) + z^2*2^n
	aRPlusZ := vector.AddScalar(aR, z)

	r0, err := vector.Hadamard(yN, aRPlusZ)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - r0")
	}

	var two ristretto.Scalar
	two.SetBigInt(big.NewInt(2))
	twoN := vector.ScalarPowers(two, n)

	var zSq ristretto.Scalar
	zSq.Square(&z)
	zSqTwoN := vector.MulScalar(twoN, zSq)

	r0, err = vector.Add(r0, zSqTwoN)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - r0 add")
	}

	// r1 = y^n o sR
	r1, err := vector.Hadamard(yN, sR)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - r1")
	}

	poly := &polynomial{
		l0: l0,
		l1: l1,
		r0: r0,
		r1: r1,
	}

	// t0 = <l0, r0>
	poly.t0, err = vector.InnerProduct(l0, r0)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - t0")
	}

	// t2 = <l1, r1>
	poly.t2, err = vector.InnerProduct(l1, r1)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - t2")
	}

	// t1 = <l0, r1> + <l1, r0>
	a, err := vector.InnerProduct(l0, r1)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - t1 left")
	}
	b, err := vector.InnerProduct(l1, r0)
	if err != nil {
		return nil, errors.Wrap(err, "[computePoly] - t1 right")
	}
	poly.t1.Add(&a, &b)

	return poly, nil
}

// computeL evaluates l(X) at x
func (p *polynomial) computeL(x ristretto.Scalar) ([]ristretto.Scalar, error) {
	lx := vector.MulScalar(p.l1, x)
	return vector.Add(p.l0, lx)
}

// computeR evaluates r(X) at x
func (p *polynomial) computeR(x ristretto.Scalar) ([]ristretto.Scalar, error) {
	rx := vector.MulScalar(p.r1, x)
	return vector.Add(p.r0, rx)
}

// eval evaluates t(X) at x
func (p *polynomial) eval(x ristretto.Scalar) ristretto.Scalar {

	var xSq ristretto.Scalar
	xSq.Square(&x)

	var res ristretto.Scalar
	res.MulAdd(&p.t1, &x, &p.t0)

	var t2xSq ristretto.Scalar
	t2xSq.Mul(&p.t2, &xSq)

	res.Add(&res, &t2xSq)

	return res
}

// computeT0 recomputes t0 from the public data;
// t0 = z^2 * v + delta(y, z)
func (p *polynomial) computeT0(y, z, v ristretto.Scalar, n uint32) ristretto.Scalar {

	delta := computeDelta(y, z, n)

	var zSq ristretto.Scalar
	zSq.Square(&z)

	var t0 ristretto.Scalar
	t0.MulAdd(&zSq, &v, &delta)

	return t0
}

// computeDelta computes the polynomial offset
// delta(y, z) = (z - z^2) * <1^n, y^n> - z^3 * <1^n, 2^n>
func computeDelta(y, z ristretto.Scalar, n uint32) ristretto.Scalar {

	var zSq, zCu ristretto.Scalar
	zSq.Square(&z)
	zCu.Mul(&zSq, &z)

	var zMinusZSq ristretto.Scalar
	zMinusZSq.Sub(&z, &zSq)

	sumY := vector.ScalarPowersSum(y, uint64(n))

	var two ristretto.Scalar
	two.SetBigInt(big.NewInt(2))
	sumTwo := vector.ScalarPowersSum(two, uint64(n))

	var left, right, res ristretto.Scalar
	left.Mul(&zMinusZSq, &sumY)
	right.Mul(&zCu, &sumTwo)
	res.Sub(&left, &right)

	return res
}

// sumZTwoN returns the vector z^2 * 2^n, used by the verifier to
// reconstruct the h-vector scalars
func sumZTwoN(z ristretto.Scalar, n uint32) []ristretto.Scalar {

	var two ristretto.Scalar
	two.SetBigInt(big.NewInt(2))
	twoN := vector.ScalarPowers(two, n)

	var zSq ristretto.Scalar
	zSq.Square(&z)

	return vector.MulScalar(twoN, zSq)
}
