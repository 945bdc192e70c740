package rangeproof

import (
	"math/big"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/fiatshamir"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/pedersen"
)

// compactSeed is the transcript domain tag for the compact proof
const compactSeed = "veil.CompactRange.v1"

// CompactProof is the abbreviated commitment-opening proof used for
// amounts below CompactThreshold. It is a single-round sigma protocol:
// one nonce commitment, two responses and the explicit challenge.
type CompactProof struct {
	A      ristretto.Point
	Zm, Zb ristretto.Scalar
	C      ristretto.Scalar
}

// ProveCompact proves knowledge of the opening of a commitment to v,
// for v below CompactThreshold
func ProveCompact(v uint64, blind ristretto.Scalar) (*CompactProof, pedersen.Commitment, error) {

	if v >= CompactThreshold {
		return nil, pedersen.Commitment{}, errors.Errorf("amount %d is too large for the compact proof", v)
	}

	var amount ristretto.Scalar
	amount.SetBigInt(new(big.Int).SetUint64(v))

	ped := pedersen.New([]byte(generatorSeed))
	V := ped.CommitToScalarWithBlind(amount, blind)

	var am, ab ristretto.Scalar
	am.Rand()
	ab.Rand()

	// A = am*G + ab*H
	var amG, abH, A ristretto.Point
	amG.ScalarMult(&ped.BasePoint, &am)
	abH.ScalarMult(&ped.BlindPoint, &ab)
	A.Add(&amG, &abH)

	hs := fiatshamir.HashCacher{Cache: []byte{}}
	hs.Append([]byte(compactSeed), V.Value.Bytes(), A.Bytes())
	c := hs.Derive()

	// zm = am + c*m ; zb = ab + c*blind
	var zm, zb ristretto.Scalar
	zm.MulAdd(&c, &amount, &am)
	zb.MulAdd(&c, &blind, &ab)

	return &CompactProof{A: A, Zm: zm, Zb: zb, C: c}, V, nil
}

// verifyCompact checks the challenge binding and the single Schnorr
// equation zm*G + zb*H == A + c*V
func verifyCompact(proof []byte, V ristretto.Point) bool {

	cp, err := DecodeCompactProof(proof)
	if err != nil {
		return false
	}

	hs := fiatshamir.HashCacher{Cache: []byte{}}
	hs.Append([]byte(compactSeed), V.Bytes(), cp.A.Bytes())
	c := hs.Derive()

	if !c.Equals(&cp.C) {
		return false
	}

	ped := pedersen.New([]byte(generatorSeed))

	var lhs, zmG, zbH ristretto.Point
	zmG.ScalarMult(&ped.BasePoint, &cp.Zm)
	zbH.ScalarMult(&ped.BlindPoint, &cp.Zb)
	lhs.Add(&zmG, &zbH)

	var rhs, cV ristretto.Point
	cV.ScalarMult(&V, &c)
	rhs.Add(&cp.A, &cV)

	return lhs.Equals(&rhs)
}

// Bytes serializes the proof as A || zm || zb || c
func (cp *CompactProof) Bytes() []byte {
	buf := make([]byte, 0, CompactProofSize)
	buf = append(buf, cp.A.Bytes()...)
	buf = append(buf, cp.Zm.Bytes()...)
	buf = append(buf, cp.Zb.Bytes()...)
	buf = append(buf, cp.C.Bytes()...)
	return buf
}

// DecodeCompactProof parses a serialized compact proof
func DecodeCompactProof(buf []byte) (*CompactProof, error) {

	if len(buf) != CompactProofSize {
		return nil, errors.Errorf("compact proof must be %d bytes long, got %d", CompactProofSize, len(buf))
	}

	cp := &CompactProof{}

	var pt [32]byte
	copy(pt[:], buf[0:32])
	if ok := cp.A.SetBytes(&pt); !ok {
		return nil, errors.New("point not encodable")
	}

	var sc [32]byte
	copy(sc[:], buf[32:64])
	cp.Zm.SetBytes(&sc)
	copy(sc[:], buf[64:96])
	cp.Zb.SetBytes(&sc)
	copy(sc[:], buf[96:128])
	cp.C.SetBytes(&sc)

	return cp, nil
}
