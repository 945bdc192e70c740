package elgamal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.Nil(t, err)

	for _, amount := range []uint64{0, 1, 42, 999, 1000} {
		ct, err := Encrypt(amount, &kp.Public)
		require.Nil(t, err)

		have, ok := Decrypt(ct, &kp.Secret, 1000)
		assert.True(t, ok, "amount %d", amount)
		assert.Equal(t, amount, have)
	}
}

func TestDecryptOutsideBound(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.Nil(t, err)

	ct, err := Encrypt(500, &kp.Public)
	require.Nil(t, err)

	_, ok := Decrypt(ct, &kp.Secret, 100)
	assert.False(t, ok)
}

func TestDecryptWrongKey(t *testing.T) {
	kp, _ := GenerateKeyPair()
	other, _ := GenerateKeyPair()

	ct, err := Encrypt(77, &kp.Public)
	require.Nil(t, err)

	_, ok := Decrypt(ct, &other.Secret, 200)
	assert.False(t, ok)
}

func TestUnlinkability(t *testing.T) {
	kp, _ := GenerateKeyPair()

	a, err := Encrypt(1234, &kp.Public)
	require.Nil(t, err)
	b, err := Encrypt(1234, &kp.Public)
	require.Nil(t, err)

	// fresh randomness must make both components differ
	assert.False(t, a.C.Equals(&b.C))
	assert.False(t, a.D.Equals(&b.D))
}

func TestHomomorphicOps(t *testing.T) {
	kp, _ := GenerateKeyPair()

	ctA, _ := Encrypt(300, &kp.Public)
	ctB, _ := Encrypt(200, &kp.Public)

	sum, ok := Decrypt(Add(ctA, ctB), &kp.Secret, 1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(500), sum)

	diff, ok := Decrypt(Sub(ctA, ctB), &kp.Secret, 1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(100), diff)

	scaled, ok := Decrypt(ScalarMul(ctB, 3), &kp.Secret, 1000)
	assert.True(t, ok)
	assert.Equal(t, uint64(600), scaled)
}

func TestSerializeRoundTrip(t *testing.T) {
	kp, _ := GenerateKeyPair()

	ct, err := Encrypt(888, &kp.Public)
	require.Nil(t, err)

	buf := ct.Bytes()
	assert.Equal(t, CiphertextSize, len(buf))

	decoded, err := DecodeCiphertext(buf)
	require.Nil(t, err)
	assert.True(t, ct.Equals(decoded))

	assert.True(t, Validate(buf))
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	for _, size := range []int{0, 32, 63, 65, 128} {
		_, err := DecodeCiphertext(make([]byte, size))
		assert.NotNil(t, err, "size %d", size)
	}

	assert.False(t, Validate(make([]byte, 63)))
}

func TestEncryptFastDomain(t *testing.T) {
	kp, _ := GenerateKeyPair()

	_, err := EncryptFast(MaxFastAmount, &kp.Public)
	assert.Nil(t, err)

	_, err = EncryptFast(MaxFastAmount+1, &kp.Public)
	assert.Equal(t, ErrAmountOutOfRange, err)
}

func TestDeterministicDerivation(t *testing.T) {
	signer := bytes.Repeat([]byte{7}, 64)

	a, err := DeriveKeyPair(signer, "token-account-1")
	require.Nil(t, err)
	b, err := DeriveKeyPair(signer, "token-account-1")
	require.Nil(t, err)

	assert.Equal(t, a.Public.Bytes(), b.Public.Bytes())
	assert.Equal(t, a.Secret.Bytes(), b.Secret.Bytes())

	c, err := DeriveKeyPair(signer, "token-account-2")
	require.Nil(t, err)
	assert.NotEqual(t, a.Public.Bytes(), c.Public.Bytes())
}

func TestSeededScenario(t *testing.T) {
	seed := bytes.Repeat([]byte{42}, 32)
	kp := NewKeyPair(seed)

	again := NewKeyPair(seed)
	assert.Equal(t, kp.Public.Bytes(), again.Public.Bytes())

	ct, err := Encrypt(1000, &kp.Public)
	require.Nil(t, err)

	have, ok := Decrypt(ct, &kp.Secret, 2000)
	assert.True(t, ok)
	assert.Equal(t, uint64(1000), have)
}

func TestDecryptTable(t *testing.T) {
	kp, _ := GenerateKeyPair()

	table := NewDecryptTable(1 << 10)
	assert.Equal(t, uint64(1<<10), table.Bound())

	ct, err := Encrypt(777, &kp.Public)
	require.Nil(t, err)

	have, ok := table.Decrypt(ct, &kp.Secret)
	assert.True(t, ok)
	assert.Equal(t, uint64(777), have)

	big, err := Encrypt(5000, &kp.Public)
	require.Nil(t, err)
	_, ok = table.Decrypt(big, &kp.Secret)
	assert.False(t, ok)
}

func TestKeyEncoding(t *testing.T) {
	kp, _ := GenerateKeyPair()

	var pk PublicKey
	err := pk.SetBytes(kp.Public.Bytes())
	require.Nil(t, err)
	assert.True(t, pk.P.Equals(&kp.Public.P))

	err = pk.SetBytes(make([]byte, 16))
	assert.NotNil(t, err)

	var sk SecretKey
	err = sk.SetBytes(kp.Secret.Bytes())
	require.Nil(t, err)
	assert.True(t, sk.S.Equals(&kp.Secret.S))
}
