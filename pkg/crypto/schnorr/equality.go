package schnorr

import (
	"math/big"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
)

// Serialized equality proof lengths. The basic form covers two
// ciphertexts under the same key, the extended form two ciphertexts
// under different keys.
const (
	EqualityProofSize         = 160
	EqualityProofExtendedSize = 192
)

const (
	equalityLabel         = "veil.EqualityProof.v1"
	equalityExtendedLabel = "veil.EqualityProof.extended.v1"
)

// EqualityProof proves that two ciphertexts under the same public key
// encrypt the same amount: paired Schnorr proofs over the handles plus
// a cross-consistency check that the difference of the two commitments
// equals the claimed point difference.
type EqualityProof struct {
	A1, A2, AP ristretto.Point
	Z1, Z2     ristretto.Scalar
}

// ProveEquality proves ct1 and ct2, both under pk, encrypt the same
// amount. r1 and r2 are the encryption randomness of each.
func ProveEquality(r1, r2 *ristretto.Scalar, pk *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) *EqualityProof {

	tr := newTranscript(equalityLabel)
	appendPoint(tr, "C1", &ct1.C)
	appendPoint(tr, "D1", &ct1.D)
	appendPoint(tr, "C2", &ct2.C)
	appendPoint(tr, "D2", &ct2.D)
	appendPoint(tr, "P", &pk.P)

	var a1, a2 ristretto.Scalar
	a1.Rand()
	a2.Rand()

	proof := &EqualityProof{}
	proof.A1.ScalarMultBase(&a1)
	proof.A2.ScalarMultBase(&a2)

	// AP = (a1 - a2)*P
	var aDiff ristretto.Scalar
	aDiff.Sub(&a1, &a2)
	proof.AP.ScalarMult(&pk.P, &aDiff)

	appendPoint(tr, "A1", &proof.A1)
	appendPoint(tr, "A2", &proof.A2)
	appendPoint(tr, "AP", &proof.AP)
	c := challengeScalar(tr, "c")

	proof.Z1.MulAdd(&c, r1, &a1)
	proof.Z2.MulAdd(&c, r2, &a2)

	return proof
}

// VerifyEquality checks a serialized basic equality proof. Failing any
// of the three equations yields false.
func VerifyEquality(proof []byte, pk *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool {

	p, err := DecodeEqualityProof(proof)
	if err != nil {
		return false
	}
	return p.verify(pk, ct1, ct2)
}

func (p *EqualityProof) verify(pk *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool {

	tr := newTranscript(equalityLabel)
	appendPoint(tr, "C1", &ct1.C)
	appendPoint(tr, "D1", &ct1.D)
	appendPoint(tr, "C2", &ct2.C)
	appendPoint(tr, "D2", &ct2.D)
	appendPoint(tr, "P", &pk.P)
	appendPoint(tr, "A1", &p.A1)
	appendPoint(tr, "A2", &p.A2)
	appendPoint(tr, "AP", &p.AP)
	c := challengeScalar(tr, "c")

	// z1*G == A1 + c*D1
	if !schnorrHolds(&p.Z1, &p.A1, &ct1.D, &c) {
		return false
	}

	// z2*G == A2 + c*D2
	if !schnorrHolds(&p.Z2, &p.A2, &ct2.D, &c) {
		return false
	}

	// (z1 - z2)*P == AP + c*(C1 - C2)
	var zDiff ristretto.Scalar
	zDiff.Sub(&p.Z1, &p.Z2)

	var lhs ristretto.Point
	lhs.ScalarMult(&pk.P, &zDiff)

	var cDiff, rhs ristretto.Point
	cDiff.Sub(&ct1.C, &ct2.C)
	rhs.ScalarMult(&cDiff, &c)
	rhs.Add(&p.AP, &rhs)

	return lhs.Equals(&rhs)
}

// schnorrHolds checks z*G == A + c*X
func schnorrHolds(z *ristretto.Scalar, A, X *ristretto.Point, c *ristretto.Scalar) bool {
	var lhs ristretto.Point
	lhs.ScalarMultBase(z)

	var rhs ristretto.Point
	rhs.ScalarMult(X, c)
	rhs.Add(A, &rhs)

	return lhs.Equals(&rhs)
}

// Bytes serializes the proof as A1 || A2 || AP || z1 || z2
func (p *EqualityProof) Bytes() []byte {
	buf := make([]byte, 0, EqualityProofSize)
	buf = append(buf, p.A1.Bytes()...)
	buf = append(buf, p.A2.Bytes()...)
	buf = append(buf, p.AP.Bytes()...)
	buf = append(buf, p.Z1.Bytes()...)
	buf = append(buf, p.Z2.Bytes()...)
	return buf
}

// DecodeEqualityProof parses a serialized basic equality proof
func DecodeEqualityProof(buf []byte) (*EqualityProof, error) {

	if len(buf) != EqualityProofSize {
		return nil, errors.Errorf("equality proof must be %d bytes long, got %d", EqualityProofSize, len(buf))
	}

	p := &EqualityProof{}

	var pt [32]byte
	for i, target := range []*ristretto.Point{&p.A1, &p.A2, &p.AP} {
		copy(pt[:], buf[i*32:(i+1)*32])
		if ok := target.SetBytes(&pt); !ok {
			return nil, errors.New("point not encodable")
		}
	}

	var sc [32]byte
	copy(sc[:], buf[96:128])
	p.Z1.SetBytes(&sc)
	copy(sc[:], buf[128:160])
	p.Z2.SetBytes(&sc)

	return p, nil
}

// EqualityProofExtended proves that two ciphertexts under different
// public keys encrypt the same amount. The shared response zm ties the
// amount across both commitment equations, and the two handle
// equations are folded with a transcript-derived weight w.
type EqualityProofExtended struct {
	A1, A2, AD ristretto.Point
	Zm, Z1, Z2 ristretto.Scalar
}

// ProveEqualityExtended proves ct1 under pk1 and ct2 under pk2 encrypt
// the same amount
func ProveEqualityExtended(amount uint64, r1, r2 *ristretto.Scalar, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) *EqualityProofExtended {

	var m ristretto.Scalar
	m.SetBigInt(new(big.Int).SetUint64(amount))

	tr := newTranscript(equalityExtendedLabel)
	appendPoint(tr, "C1", &ct1.C)
	appendPoint(tr, "D1", &ct1.D)
	appendPoint(tr, "C2", &ct2.C)
	appendPoint(tr, "D2", &ct2.D)
	appendPoint(tr, "P1", &pk1.P)
	appendPoint(tr, "P2", &pk2.P)

	w := challengeScalar(tr, "w")

	var am, a1, a2 ristretto.Scalar
	am.Rand()
	a1.Rand()
	a2.Rand()

	proof := &EqualityProofExtended{}

	// A1 = am*G + a1*P1
	var amG, aP ristretto.Point
	amG.ScalarMultBase(&am)
	aP.ScalarMult(&pk1.P, &a1)
	proof.A1.Add(&amG, &aP)

	// A2 = am*G + a2*P2
	aP.ScalarMult(&pk2.P, &a2)
	proof.A2.Add(&amG, &aP)

	// AD = (a1 + w*a2)*G
	var aw ristretto.Scalar
	aw.MulAdd(&w, &a2, &a1)
	proof.AD.ScalarMultBase(&aw)

	appendPoint(tr, "A1", &proof.A1)
	appendPoint(tr, "A2", &proof.A2)
	appendPoint(tr, "AD", &proof.AD)
	c := challengeScalar(tr, "c")

	proof.Zm.MulAdd(&c, &m, &am)
	proof.Z1.MulAdd(&c, r1, &a1)
	proof.Z2.MulAdd(&c, r2, &a2)

	return proof
}

// VerifyEqualityExtended checks a serialized extended equality proof:
// both per-side commitment equations, the folded handle equation and
// the commitment-difference equation. Failing any one yields false.
func VerifyEqualityExtended(proof []byte, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool {

	p, err := DecodeEqualityProofExtended(proof)
	if err != nil {
		return false
	}
	return p.verify(pk1, pk2, ct1, ct2)
}

func (p *EqualityProofExtended) verify(pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool {

	tr := newTranscript(equalityExtendedLabel)
	appendPoint(tr, "C1", &ct1.C)
	appendPoint(tr, "D1", &ct1.D)
	appendPoint(tr, "C2", &ct2.C)
	appendPoint(tr, "D2", &ct2.D)
	appendPoint(tr, "P1", &pk1.P)
	appendPoint(tr, "P2", &pk2.P)

	w := challengeScalar(tr, "w")

	appendPoint(tr, "A1", &p.A1)
	appendPoint(tr, "A2", &p.A2)
	appendPoint(tr, "AD", &p.AD)
	c := challengeScalar(tr, "c")

	// zm*G + z1*P1 == A1 + c*C1
	if !commitmentHolds(&p.Zm, &p.Z1, pk1, &p.A1, &ct1.C, &c) {
		return false
	}

	// zm*G + z2*P2 == A2 + c*C2
	if !commitmentHolds(&p.Zm, &p.Z2, pk2, &p.A2, &ct2.C, &c) {
		return false
	}

	// (z1 + w*z2)*G == AD + c*(D1 + w*D2)
	var zw ristretto.Scalar
	zw.MulAdd(&w, &p.Z2, &p.Z1)

	var lhs ristretto.Point
	lhs.ScalarMultBase(&zw)

	var wD2, DwD, rhs ristretto.Point
	wD2.ScalarMult(&ct2.D, &w)
	DwD.Add(&ct1.D, &wD2)
	rhs.ScalarMult(&DwD, &c)
	rhs.Add(&p.AD, &rhs)

	return lhs.Equals(&rhs)
}

// commitmentHolds checks zm*G + zr*P == A + c*C
func commitmentHolds(zm, zr *ristretto.Scalar, pk *elgamal.PublicKey, A, C *ristretto.Point, c *ristretto.Scalar) bool {
	var zmG, zrP, lhs ristretto.Point
	zmG.ScalarMultBase(zm)
	zrP.ScalarMult(&pk.P, zr)
	lhs.Add(&zmG, &zrP)

	var rhs ristretto.Point
	rhs.ScalarMult(C, c)
	rhs.Add(A, &rhs)

	return lhs.Equals(&rhs)
}

// Bytes serializes the proof as A1 || A2 || AD || zm || z1 || z2
func (p *EqualityProofExtended) Bytes() []byte {
	buf := make([]byte, 0, EqualityProofExtendedSize)
	buf = append(buf, p.A1.Bytes()...)
	buf = append(buf, p.A2.Bytes()...)
	buf = append(buf, p.AD.Bytes()...)
	buf = append(buf, p.Zm.Bytes()...)
	buf = append(buf, p.Z1.Bytes()...)
	buf = append(buf, p.Z2.Bytes()...)
	return buf
}

// DecodeEqualityProofExtended parses a serialized extended equality proof
func DecodeEqualityProofExtended(buf []byte) (*EqualityProofExtended, error) {

	if len(buf) != EqualityProofExtendedSize {
		return nil, errors.Errorf("extended equality proof must be %d bytes long, got %d", EqualityProofExtendedSize, len(buf))
	}

	p := &EqualityProofExtended{}

	var pt [32]byte
	for i, target := range []*ristretto.Point{&p.A1, &p.A2, &p.AD} {
		copy(pt[:], buf[i*32:(i+1)*32])
		if ok := target.SetBytes(&pt); !ok {
			return nil, errors.New("point not encodable")
		}
	}

	var sc [32]byte
	copy(sc[:], buf[96:128])
	p.Zm.SetBytes(&sc)
	copy(sc[:], buf[128:160])
	p.Z1.SetBytes(&sc)
	copy(sc[:], buf[160:192])
	p.Z2.SetBytes(&sc)

	return p, nil
}
