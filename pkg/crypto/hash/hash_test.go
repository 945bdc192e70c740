package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSha3256(t *testing.T) {
	digest, err := Sha3256([]byte("hello world"))
	assert.Nil(t, err)
	assert.Equal(t, 32, len(digest))

	again, err := Sha3256([]byte("hello world"))
	assert.Nil(t, err)
	assert.Equal(t, digest, again)
}

func TestBlake2b512(t *testing.T) {
	digest, err := Blake2b512([]byte("hello world"))
	assert.Nil(t, err)
	assert.Equal(t, 64, len(digest))

	other, err := Blake2b512([]byte("hello worlds"))
	assert.Nil(t, err)
	assert.NotEqual(t, digest, other)
}
