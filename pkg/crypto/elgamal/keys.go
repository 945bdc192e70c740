package elgamal

import (
	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto"
	"github.com/veil-network/veil-crypto/pkg/crypto/hash"
)

// derivationTag separates ElGamal key derivation from any other use of
// the same signer bytes
const derivationTag = "elgamal:"

// PublicKey is the point S*G for a secret scalar S
type PublicKey struct {
	P ristretto.Point
}

// SecretKey is the scalar used to peel the decrypt handle off a
// ciphertext
type SecretKey struct {
	S ristretto.Scalar
}

// KeyPair holds an ElGamal keypair
type KeyPair struct {
	Public PublicKey
	Secret SecretKey
}

// GenerateKeyPair draws a keypair from the system entropy source.
// It fails only if entropy is unavailable.
func GenerateKeyPair() (*KeyPair, error) {
	seed, err := crypto.RandEntropy(32)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate keypair")
	}
	return NewKeyPair(seed), nil
}

// NewKeyPair derives a keypair deterministically from a seed.
// The same seed always yields the same keys.
func NewKeyPair(seed []byte) *KeyPair {
	kp := &KeyPair{}
	kp.Secret.S.Derive(seed)
	kp.Public.P.ScalarMultBase(&kp.Secret.S)
	return kp
}

// DeriveKeyPair derives a keypair from signer bytes and a domain
// separation label, with no persisted state; the same (signer, label)
// always yields the same keys.
func DeriveKeyPair(signer []byte, label string) (*KeyPair, error) {
	msg := make([]byte, 0, len(signer)+len(derivationTag)+len(label))
	msg = append(msg, signer...)
	msg = append(msg, derivationTag...)
	msg = append(msg, label...)

	seed, err := hash.Blake2b512(msg)
	if err != nil {
		return nil, errors.Wrap(err, "could not derive keypair")
	}
	return NewKeyPair(seed), nil
}

// Bytes returns the 32 byte encoding of the public key
func (pk *PublicKey) Bytes() []byte {
	return pk.P.Bytes()
}

// SetBytes decodes a public key, rejecting encodings which are not
// valid group elements
func (pk *PublicKey) SetBytes(buf []byte) error {
	if len(buf) != 32 {
		return errors.Errorf("public key must be 32 bytes long, got %d", len(buf))
	}
	var b [32]byte
	copy(b[:], buf)
	if ok := pk.P.SetBytes(&b); !ok {
		return errors.New("public key is not a valid group element")
	}
	return nil
}

// Bytes returns the 32 byte encoding of the secret key
func (sk *SecretKey) Bytes() []byte {
	return sk.S.Bytes()
}

// SetBytes decodes a secret key
func (sk *SecretKey) SetBytes(buf []byte) error {
	if len(buf) != 32 {
		return errors.Errorf("secret key must be 32 bytes long, got %d", len(buf))
	}
	var b [32]byte
	copy(b[:], buf)
	sk.S.SetBytes(&b)
	return nil
}
