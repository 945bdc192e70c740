package schnorr

import (
	"math/big"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
)

// ValidityProofSize is the fixed serialized length:
// one commitment point and two response scalars
const ValidityProofSize = 96

const validityLabel = "veil.ValidityProof.v1"

// ValidityProof is a 2-of-2 Schnorr conjunction proving knowledge of
// the (amount, randomness) pair behind a ciphertext without revealing
// either. The handle equation is folded into the commitment equation
// with a transcript-derived weight w, so a single Schnorr relation
// covers both: C + w*D = m*G + r*(P + w*G).
type ValidityProof struct {
	A      ristretto.Point
	Zm, Zr ristretto.Scalar
}

// ProveValidity proves that ct is a well-formed encryption of amount
// under pk with randomness r
func ProveValidity(amount uint64, r *ristretto.Scalar, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) *ValidityProof {

	var m ristretto.Scalar
	m.SetBigInt(new(big.Int).SetUint64(amount))

	tr := newTranscript(validityLabel)
	appendPoint(tr, "C", &ct.C)
	appendPoint(tr, "D", &ct.D)
	appendPoint(tr, "P", &pk.P)

	w := challengeScalar(tr, "w")

	// Pw = P + w*G
	var wG, Pw ristretto.Point
	wG.ScalarMultBase(&w)
	Pw.Add(&pk.P, &wG)

	var am, ar ristretto.Scalar
	am.Rand()
	ar.Rand()

	// A = am*G + ar*Pw
	var amG, arPw ristretto.Point
	amG.ScalarMultBase(&am)
	arPw.ScalarMult(&Pw, &ar)

	proof := &ValidityProof{}
	proof.A.Add(&amG, &arPw)

	appendPoint(tr, "A", &proof.A)
	c := challengeScalar(tr, "c")

	proof.Zm.MulAdd(&c, &m, &am)
	proof.Zr.MulAdd(&c, r, &ar)

	return proof
}

// VerifyValidity checks a serialized validity proof against a
// ciphertext and public key. The check is a single group equation with
// one comparison at the end; there is no branching on secret data.
func VerifyValidity(proof []byte, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) bool {

	p, err := DecodeValidityProof(proof)
	if err != nil {
		return false
	}
	return p.verify(pk, ct)
}

func (p *ValidityProof) verify(pk *elgamal.PublicKey, ct *elgamal.Ciphertext) bool {

	tr := newTranscript(validityLabel)
	appendPoint(tr, "C", &ct.C)
	appendPoint(tr, "D", &ct.D)
	appendPoint(tr, "P", &pk.P)

	w := challengeScalar(tr, "w")

	var wG, Pw ristretto.Point
	wG.ScalarMultBase(&w)
	Pw.Add(&pk.P, &wG)

	appendPoint(tr, "A", &p.A)
	c := challengeScalar(tr, "c")

	// lhs = zm*G + zr*Pw
	var zmG, zrPw, lhs ristretto.Point
	zmG.ScalarMultBase(&p.Zm)
	zrPw.ScalarMult(&Pw, &p.Zr)
	lhs.Add(&zmG, &zrPw)

	// rhs = A + c*(C + w*D)
	var wD, CwD, rhs ristretto.Point
	wD.ScalarMult(&ct.D, &w)
	CwD.Add(&ct.C, &wD)
	rhs.ScalarMult(&CwD, &c)
	rhs.Add(&p.A, &rhs)

	return lhs.Equals(&rhs)
}

// Bytes serializes the proof as A || zm || zr
func (p *ValidityProof) Bytes() []byte {
	buf := make([]byte, 0, ValidityProofSize)
	buf = append(buf, p.A.Bytes()...)
	buf = append(buf, p.Zm.Bytes()...)
	buf = append(buf, p.Zr.Bytes()...)
	return buf
}

// DecodeValidityProof parses a serialized validity proof
func DecodeValidityProof(buf []byte) (*ValidityProof, error) {

	if len(buf) != ValidityProofSize {
		return nil, errors.Errorf("validity proof must be %d bytes long, got %d", ValidityProofSize, len(buf))
	}

	p := &ValidityProof{}

	var pt [32]byte
	copy(pt[:], buf[0:32])
	if ok := p.A.SetBytes(&pt); !ok {
		return nil, errors.New("point not encodable")
	}

	var sc [32]byte
	copy(sc[:], buf[32:64])
	p.Zm.SetBytes(&sc)
	copy(sc[:], buf[64:96])
	p.Zr.SetBytes(&sc)

	return p, nil
}
