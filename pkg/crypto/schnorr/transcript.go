package schnorr

import (
	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// Challenge derivation runs over merlin transcripts, so every challenge
// is bound to the full statement that precedes it.

func newTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

func appendPoint(t *merlin.Transcript, label string, p *ristretto.Point) {
	t.AppendMessage([]byte(label), p.Bytes())
}

func challengeScalar(t *merlin.Transcript, label string) ristretto.Scalar {
	data := t.ExtractBytes([]byte(label), 64)

	var buf [64]byte
	copy(buf[:], data)

	var s ristretto.Scalar
	s.SetReduced(&buf)
	return s
}
