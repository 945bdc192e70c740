package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof"
	"github.com/veil-network/veil-crypto/pkg/crypto/schnorr"
)

const testBound = 100000

func TestTransfer(t *testing.T) {
	src, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	balance, err := elgamal.Encrypt(10000, &src.Public)
	assert.Nil(t, err)

	proof, err := Prove(3000, balance, src, &dst.Public, testBound)
	assert.Nil(t, err)

	assert.Equal(t, rangeproof.ProofSize64, len(proof.RangeProof))
	assert.Equal(t, schnorr.ValidityProofSize, len(proof.ValidityProof))
	assert.Equal(t, schnorr.EqualityProofExtendedSize, len(proof.EqualityProof))

	ok := Verify(proof, &src.Public, &dst.Public, balance)
	assert.True(t, ok)

	remaining, ok := elgamal.Decrypt(proof.NewSourceBalance, &src.Secret, testBound)
	assert.True(t, ok)
	assert.Equal(t, uint64(7000), remaining)

	received, ok := elgamal.Decrypt(proof.DestCiphertext, &dst.Secret, testBound)
	assert.True(t, ok)
	assert.Equal(t, uint64(3000), received)
}

func TestTransferInsufficientBalance(t *testing.T) {
	src, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	balance, err := elgamal.Encrypt(100, &src.Public)
	assert.Nil(t, err)

	_, err = Prove(3000, balance, src, &dst.Public, testBound)
	assert.Equal(t, ErrInsufficientBalance, err)
}

func TestTransferUndecryptableBalance(t *testing.T) {
	src, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	other, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	// balance under a different key cannot be decrypted by src
	balance, err := elgamal.Encrypt(10000, &other.Public)
	assert.Nil(t, err)

	_, err = Prove(3000, balance, src, &dst.Public, testBound)
	assert.Equal(t, ErrBalanceNotDecryptable, err)
}

func TestTransferFullBalance(t *testing.T) {
	src, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	balance, err := elgamal.Encrypt(500, &src.Public)
	assert.Nil(t, err)

	proof, err := Prove(500, balance, src, &dst.Public, testBound)
	assert.Nil(t, err)
	assert.True(t, Verify(proof, &src.Public, &dst.Public, balance))

	remaining, ok := elgamal.Decrypt(proof.NewSourceBalance, &src.Secret, testBound)
	assert.True(t, ok)
	assert.Equal(t, uint64(0), remaining)
}

func TestVerifyRejectsMismatchedCiphertext(t *testing.T) {
	src, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	balance, err := elgamal.Encrypt(10000, &src.Public)
	assert.Nil(t, err)

	proof, err := Prove(3000, balance, src, &dst.Public, testBound)
	assert.Nil(t, err)

	// swap in an unrelated source ciphertext
	forged, err := elgamal.Encrypt(3000, &src.Public)
	assert.Nil(t, err)
	proof.SourceCiphertext = forged

	assert.False(t, Verify(proof, &src.Public, &dst.Public, balance))
}

func TestVerifyRejectsTamperedProofs(t *testing.T) {
	src, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	assert.Nil(t, err)

	balance, err := elgamal.Encrypt(10000, &src.Public)
	assert.Nil(t, err)

	proof, err := Prove(3000, balance, src, &dst.Public, testBound)
	assert.Nil(t, err)

	proof.ValidityProof[10] ^= 1
	assert.False(t, Verify(proof, &src.Public, &dst.Public, balance))

	assert.False(t, Verify(nil, &src.Public, &dst.Public, balance))
}
