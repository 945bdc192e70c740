// Package transfer composes the proofs a confidential transfer needs:
// a range proof that the moved amount is well formed, a validity proof
// on the receiver ciphertext and an equality proof tying the sender and
// receiver ciphertexts to the same amount.
package transfer

import (
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof"
	"github.com/veil-network/veil-crypto/pkg/crypto/schnorr"
)

// ErrInsufficientBalance is returned when the decrypted source balance
// does not cover the requested amount
var ErrInsufficientBalance = errors.New("source balance does not cover the transfer amount")

// ErrBalanceNotDecryptable is returned when the source balance cannot
// be recovered under the given bound, which means either a corrupted
// ciphertext or the wrong secret key
var ErrBalanceNotDecryptable = errors.New("could not decrypt source balance")

// Proof carries everything a verifier needs to accept a transfer. The
// source and destination ciphertexts share their encryption randomness,
// so the equality proof links them through a common decrypt handle.
type Proof struct {
	// SourceCiphertext encrypts the amount under the source key. The
	// new source balance is the old balance minus this ciphertext.
	SourceCiphertext *elgamal.Ciphertext

	// DestCiphertext encrypts the amount under the destination key
	DestCiphertext *elgamal.Ciphertext

	// NewSourceBalance is the old balance minus SourceCiphertext,
	// computed by exact homomorphic subtraction
	NewSourceBalance *elgamal.Ciphertext

	// RangeProof shows the amount lies in [0, 2^64)
	RangeProof []byte

	// RangeCommitment is the Pedersen commitment the range proof
	// verifies against
	RangeCommitment []byte

	// ValidityProof shows DestCiphertext is well formed under the
	// destination key
	ValidityProof []byte

	// EqualityProof shows both ciphertexts encrypt the same amount
	EqualityProof []byte
}

// Prove builds the full proof for moving amount from the source account
// to the destination key. balance is the current source balance
// ciphertext and bound the largest balance the caller considers
// decryptable. Any failure aborts the whole composition.
func Prove(amount uint64, balance *elgamal.Ciphertext, source *elgamal.KeyPair, dest *elgamal.PublicKey, bound uint64) (*Proof, error) {

	current, ok := elgamal.Decrypt(balance, &source.Secret, bound)
	if !ok {
		return nil, ErrBalanceNotDecryptable
	}
	if current < amount {
		return nil, ErrInsufficientBalance
	}

	destCt, r, err := elgamal.EncryptWithRandomness(amount, dest)
	if err != nil {
		return nil, errors.Wrap(err, "could not encrypt transfer amount")
	}

	// same amount and randomness under the source key, so both
	// ciphertexts share the decrypt handle r*G
	srcCt := elgamal.EncryptWith(amount, &source.Public, r)

	rp, err := rangeproof.Prove(amount, *r, rangeproof.Width64)
	if err != nil {
		return nil, errors.Wrap(err, "could not prove transfer amount range")
	}
	rpBytes, err := rp.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "could not serialize range proof")
	}

	validity := schnorr.ProveValidity(amount, r, dest, destCt)
	equality := schnorr.ProveEqualityExtended(amount, r, r, &source.Public, dest, srcCt, destCt)

	return &Proof{
		SourceCiphertext: srcCt,
		DestCiphertext:   destCt,
		NewSourceBalance: elgamal.Sub(balance, srcCt),
		RangeProof:       rpBytes,
		RangeCommitment:  rp.V.Value.Bytes(),
		ValidityProof:    validity.Bytes(),
		EqualityProof:    equality.Bytes(),
	}, nil
}

// Verify checks all three component proofs against the public keys and
// the ciphertexts the proof carries, plus the exactness of the claimed
// new source balance against the old one
func Verify(p *Proof, source, dest *elgamal.PublicKey, balance *elgamal.Ciphertext) bool {

	if p == nil || p.SourceCiphertext == nil || p.DestCiphertext == nil || p.NewSourceBalance == nil {
		return false
	}

	if !p.NewSourceBalance.Equals(elgamal.Sub(balance, p.SourceCiphertext)) {
		return false
	}
	if !rangeproof.Verify(p.RangeProof, p.RangeCommitment) {
		return false
	}
	if !schnorr.VerifyValidity(p.ValidityProof, dest, p.DestCiphertext) {
		return false
	}
	return schnorr.VerifyEqualityExtended(p.EqualityProof, source, dest, p.SourceCiphertext, p.DestCiphertext)
}
