package engine

import (
	ristretto "github.com/bwesterb/go-ristretto"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof"
	"github.com/veil-network/veil-crypto/pkg/crypto/schnorr"
	"github.com/veil-network/veil-crypto/pkg/crypto/transfer"
)

// native serves every operation with direct calls into pkg/crypto
type native struct{}

func (native) Name() string { return "native" }

func (native) Encrypt(amount uint64, pk *elgamal.PublicKey) (*elgamal.Ciphertext, error) {
	return elgamal.Encrypt(amount, pk)
}

func (n native) EncryptBatch(amounts []uint64, pk *elgamal.PublicKey) ([]*elgamal.Ciphertext, error) {
	cts := make([]*elgamal.Ciphertext, len(amounts))
	for i, amount := range amounts {
		ct, err := n.Encrypt(amount, pk)
		if err != nil {
			return nil, err
		}
		cts[i] = ct
	}
	return cts, nil
}

func (native) Decrypt(ct *elgamal.Ciphertext, sk *elgamal.SecretKey, bound uint64) (uint64, bool) {
	return elgamal.Decrypt(ct, sk, bound)
}

func (native) ProveRange(amount uint64) ([]byte, []byte, error) {
	var blind ristretto.Scalar
	blind.Rand()
	return rangeproof.Generate(amount, blind)
}

func (n native) ProveRangeBatch(amounts []uint64) ([]RangeProof, error) {
	proofs := make([]RangeProof, len(amounts))
	for i, amount := range amounts {
		proof, commitment, err := n.ProveRange(amount)
		if err != nil {
			return nil, err
		}
		proofs[i] = RangeProof{Proof: proof, Commitment: commitment}
	}
	return proofs, nil
}

func (native) VerifyRange(proof, commitment []byte) bool {
	return rangeproof.Verify(proof, commitment)
}

func (native) ProveValidity(amount uint64, r *ristretto.Scalar, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) []byte {
	return schnorr.ProveValidity(amount, r, pk, ct).Bytes()
}

func (native) VerifyValidity(proof []byte, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) bool {
	return schnorr.VerifyValidity(proof, pk, ct)
}

func (native) ProveEquality(amount uint64, r1, r2 *ristretto.Scalar, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) []byte {
	return schnorr.ProveEqualityExtended(amount, r1, r2, pk1, pk2, ct1, ct2).Bytes()
}

func (native) VerifyEquality(proof []byte, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool {
	return schnorr.VerifyEqualityExtended(proof, pk1, pk2, ct1, ct2)
}

func (native) Transfer(amount uint64, balance *elgamal.Ciphertext, source *elgamal.KeyPair, dest *elgamal.PublicKey, bound uint64) (*transfer.Proof, error) {
	return transfer.Prove(amount, balance, source, dest, bound)
}

func (native) VerifyTransfer(p *transfer.Proof, source, dest *elgamal.PublicKey, balance *elgamal.Ciphertext) bool {
	return transfer.Verify(p, source, dest, balance)
}
