package engine

import (
	ristretto "github.com/bwesterb/go-ristretto"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/crypto/transfer"
)

// Implementation is a full proof backend. The engine selects one at
// startup and falls back from the accelerated backend to the native one
// when an operation fails.
type Implementation interface {
	Name() string

	Encrypt(amount uint64, pk *elgamal.PublicKey) (*elgamal.Ciphertext, error)
	EncryptBatch(amounts []uint64, pk *elgamal.PublicKey) ([]*elgamal.Ciphertext, error)
	Decrypt(ct *elgamal.Ciphertext, sk *elgamal.SecretKey, bound uint64) (uint64, bool)

	// ProveRange returns the serialized proof and the commitment it
	// verifies against
	ProveRange(amount uint64) ([]byte, []byte, error)
	ProveRangeBatch(amounts []uint64) ([]RangeProof, error)
	VerifyRange(proof, commitment []byte) bool

	ProveValidity(amount uint64, r *ristretto.Scalar, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) []byte
	VerifyValidity(proof []byte, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) bool

	ProveEquality(amount uint64, r1, r2 *ristretto.Scalar, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) []byte
	VerifyEquality(proof []byte, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool

	Transfer(amount uint64, balance *elgamal.Ciphertext, source *elgamal.KeyPair, dest *elgamal.PublicKey, bound uint64) (*transfer.Proof, error)
	VerifyTransfer(p *transfer.Proof, source, dest *elgamal.PublicKey, balance *elgamal.Ciphertext) bool
}

// RangeProof pairs a serialized range proof with its commitment
type RangeProof struct {
	Proof      []byte
	Commitment []byte
}
