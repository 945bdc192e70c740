package elgamal

import (
	ristretto "github.com/bwesterb/go-ristretto"
)

// Decrypt recovers the amount from a ciphertext by peeling off the
// handle, T = C - s*D, and linear-searching {0*G, 1*G, ..., bound*G}
// for a match. Returns false when the amount lies outside the bound.
func Decrypt(ct *Ciphertext, sk *SecretKey, bound uint64) (uint64, bool) {

	T := decodePoint(ct, sk)

	var G ristretto.Point
	G.SetBase()

	var cur ristretto.Point
	cur.SetZero()

	for i := uint64(0); i <= bound; i++ {
		if cur.Equals(&T) {
			return i, true
		}
		cur.Add(&cur, &G)
	}

	return 0, false
}

func decodePoint(ct *Ciphertext, sk *SecretKey) ristretto.Point {
	var sD, T ristretto.Point
	sD.ScalarMult(&ct.D, &sk.S)
	T.Sub(&ct.C, &sD)
	return T
}

// DecryptTable precomputes the map i -> i*G up to a bound, trading
// memory for repeated decryptions in constant time per lookup
type DecryptTable struct {
	bound uint64
	table map[[32]byte]uint64
}

// NewDecryptTable builds the lookup table for amounts in [0, bound]
func NewDecryptTable(bound uint64) *DecryptTable {
	t := &DecryptTable{
		bound: bound,
		table: make(map[[32]byte]uint64, bound+1),
	}

	var G ristretto.Point
	G.SetBase()

	var cur ristretto.Point
	cur.SetZero()

	var key [32]byte
	for i := uint64(0); i <= bound; i++ {
		cur.BytesInto(&key)
		t.table[key] = i
		cur.Add(&cur, &G)
	}

	return t
}

// Bound returns the largest amount the table can recover
func (t *DecryptTable) Bound() uint64 {
	return t.bound
}

// Decrypt recovers the amount via the precomputed table
func (t *DecryptTable) Decrypt(ct *Ciphertext, sk *SecretKey) (uint64, bool) {
	T := decodePoint(ct, sk)

	var key [32]byte
	T.BytesInto(&key)

	amount, ok := t.table[key]
	return amount, ok
}
