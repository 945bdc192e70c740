package elgamal

import (
	"math/big"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
)

// CiphertextSize is the fixed serialized length: commitment then handle
const CiphertextSize = 64

// MaxFastAmount is the largest amount the fast-decrypt domain allows
const MaxFastAmount uint64 = 1<<32 - 1

// ErrAmountOutOfRange is returned when an amount is outside the domain
// in force at the call site
var ErrAmountOutOfRange = errors.New("amount is out of range")

// Ciphertext is an ElGamal ciphertext split into a commitment
// C = amount*G + r*pubkey and a decrypt handle D = r*G.
//
// The type deliberately carries no reference to the public key it was
// produced under; homomorphic operations on ciphertexts under
// different keys are not checked and yield garbage.
type Ciphertext struct {
	C ristretto.Point
	D ristretto.Point
}

// Encrypt encrypts an amount under a public key, drawing fresh
// randomness on every call. Two encryptions of the same amount are
// unlinkable.
func Encrypt(amount uint64, pk *PublicKey) (*Ciphertext, error) {
	ct, _, err := EncryptWithRandomness(amount, pk)
	return ct, err
}

// EncryptFast is Encrypt restricted to the fast-decrypt domain,
// rejecting amounts above MaxFastAmount
func EncryptFast(amount uint64, pk *PublicKey) (*Ciphertext, error) {
	if amount > MaxFastAmount {
		return nil, ErrAmountOutOfRange
	}
	return Encrypt(amount, pk)
}

// EncryptWithRandomness encrypts an amount and also returns the
// randomness used, which downstream proof generation must be bound to
func EncryptWithRandomness(amount uint64, pk *PublicKey) (*Ciphertext, *ristretto.Scalar, error) {
	var r ristretto.Scalar
	r.Rand()

	ct := EncryptWith(amount, pk, &r)
	return ct, &r, nil
}

// EncryptWith encrypts an amount under a public key with caller-chosen
// randomness. Reusing the same randomness under two keys yields a pair
// of ciphertexts with a shared decrypt handle, which equality proofs
// rely on.
func EncryptWith(amount uint64, pk *PublicKey, r *ristretto.Scalar) *Ciphertext {

	var m ristretto.Scalar
	m.SetBigInt(new(big.Int).SetUint64(amount))

	ct := &Ciphertext{}

	// C = m*G + r*P
	var mG, rP ristretto.Point
	mG.ScalarMultBase(&m)
	rP.ScalarMult(&pk.P, r)
	ct.C.Add(&mG, &rP)

	// D = r*G
	ct.D.ScalarMultBase(r)

	return ct
}

// Add returns the ciphertext of the sum of the two plaintexts.
// Both operands must be under the same public key.
func Add(a, b *Ciphertext) *Ciphertext {
	res := &Ciphertext{}
	res.C.Add(&a.C, &b.C)
	res.D.Add(&a.D, &b.D)
	return res
}

// Sub returns the ciphertext of the difference of the two plaintexts.
// Both operands must be under the same public key.
func Sub(a, b *Ciphertext) *Ciphertext {
	res := &Ciphertext{}
	res.C.Sub(&a.C, &b.C)
	res.D.Sub(&a.D, &b.D)
	return res
}

// ScalarMul returns the ciphertext of the plaintext scaled by k
func ScalarMul(a *Ciphertext, k uint64) *Ciphertext {
	var s ristretto.Scalar
	s.SetBigInt(new(big.Int).SetUint64(k))

	res := &Ciphertext{}
	res.C.ScalarMult(&a.C, &s)
	res.D.ScalarMult(&a.D, &s)
	return res
}

// Bytes serializes the ciphertext as commitment || handle
func (c *Ciphertext) Bytes() []byte {
	buf := make([]byte, 0, CiphertextSize)
	buf = append(buf, c.C.Bytes()...)
	buf = append(buf, c.D.Bytes()...)
	return buf
}

// DecodeCiphertext parses a 64 byte buffer into a ciphertext. It
// rejects wrong lengths but does not confirm that the halves decode to
// valid group elements; callers needing that guarantee must use
// Validate.
func DecodeCiphertext(buf []byte) (*Ciphertext, error) {
	if len(buf) != CiphertextSize {
		return nil, errors.Errorf("ciphertext must be %d bytes long, got %d", CiphertextSize, len(buf))
	}

	ct := &Ciphertext{}

	var b [32]byte
	copy(b[:], buf[:32])
	ct.C.SetBytes(&b)
	copy(b[:], buf[32:])
	ct.D.SetBytes(&b)

	return ct, nil
}

// Validate reports whether a serialized ciphertext decodes to two
// valid group elements
func Validate(buf []byte) bool {
	if len(buf) != CiphertextSize {
		return false
	}

	var b [32]byte
	var p ristretto.Point

	copy(b[:], buf[:32])
	if ok := p.SetBytes(&b); !ok {
		return false
	}
	copy(b[:], buf[32:])
	return p.SetBytes(&b)
}

// Equals returns true if both ciphertexts hold the same points
func (c *Ciphertext) Equals(other *Ciphertext) bool {
	return c.C.Equals(&other.C) && c.D.Equals(&other.D)
}
