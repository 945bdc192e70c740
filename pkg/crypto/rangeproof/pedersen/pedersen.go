package pedersen

import (
	"encoding/binary"
	"io"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	generator "github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/generators"
)

// Pedersen holds the generator vector alongside the two base points
// used to commit to scalars
type Pedersen struct {
	BaseVector *generator.Generator
	BlindPoint ristretto.Point // used to commit the blinding scalars
	BasePoint  ristretto.Point // used to commit the amount scalars
}

// New will set up the BaseVector, returning a Pedersen struct.
// genData is the byte slice that will be used
// to form the unique set of generators
func New(genData []byte) *Pedersen {
	gen := generator.New(genData)

	var blindPoint ristretto.Point
	var basePoint ristretto.Point

	blindPoint.Derive([]byte("blindPoint"))
	basePoint.SetBase()

	return &Pedersen{
		BaseVector: gen,
		BlindPoint: blindPoint,
		BasePoint:  basePoint,
	}
}

// Commitment represents a Pedersen Commitment,
// storing the committed point and the random blinding factor
type Commitment struct {
	// Value is the point which has been committed to
	Value ristretto.Point
	// BlindingFactor is the blinding scalar.
	// Note that n vectors have 1 blinding factor
	BlindingFactor ristretto.Scalar
}

func (p *Pedersen) commitToScalars(blind *ristretto.Scalar, scalars ...ristretto.Scalar) ristretto.Point {

	n := len(scalars)

	var sum ristretto.Point
	sum.SetZero()

	if blind != nil {
		var blindPoint ristretto.Point
		blindPoint.ScalarMult(&p.BlindPoint, blind)
		sum.Add(&sum, &blindPoint)
	}

	if len(p.BaseVector.Bases) < n {
		diff := n - len(p.BaseVector.Bases)
		p.BaseVector.Compute(uint32(diff))
	}

	for i := 0; i < n; i++ {

		bi := scalars[i]
		Hi := p.BaseVector.Bases[i]

		// H_i * b_i
		product := ristretto.Point{}
		product.ScalarMult(&Hi, &bi)

		sum.Add(&sum, &product)
	}

	return sum
}

// CommitToScalar generates a Commitment to a scalar v,
// s.t. V = v * BasePoint + blind * BlindPoint
// with a freshly drawn blinding scalar
func (p *Pedersen) CommitToScalar(v ristretto.Scalar) Commitment {

	blind := ristretto.Scalar{}
	blind.Rand()

	return p.CommitToScalarWithBlind(v, blind)
}

// CommitToScalarWithBlind generates a Commitment to a scalar v
// using the blinding scalar supplied by the caller. Proof generation
// uses this to bind a commitment to the exact randomness used for
// an encryption.
func (p *Pedersen) CommitToScalarWithBlind(v, blind ristretto.Scalar) Commitment {

	// v * Base
	var vBase ristretto.Point
	vBase.ScalarMult(&p.BasePoint, &v)
	// blind * BlindPoint
	var blindPoint ristretto.Point
	blindPoint.ScalarMult(&p.BlindPoint, &blind)

	var sum ristretto.Point
	sum.SetZero()
	sum.Add(&vBase, &blindPoint)

	return Commitment{
		Value:          sum,
		BlindingFactor: blind,
	}
}

// CommitToVectors commits to two vectors under one blinding factor.
// v1 is committed against this Pedersen's base vector, v2 against q's.
// Callers hand in a second committer so both base vectors can come from
// a precomputed cache rather than being re-derived per commitment.
func (p *Pedersen) CommitToVectors(q *Pedersen, v1, v2 []ristretto.Scalar) Commitment {

	blind := ristretto.Scalar{}
	blind.Rand()

	var sum ristretto.Point
	sum.SetZero()

	c1 := p.commitToScalars(&blind, v1...)
	sum.Add(&sum, &c1)

	c2 := q.commitToScalars(nil, v2...)
	sum.Add(&sum, &c2)

	return Commitment{
		Value:          sum,
		BlindingFactor: blind,
	}
}

// Encode a commitment's point into w
func (c *Commitment) Encode(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, c.Value.Bytes())
}

// Decode a commitment's point from r
func (c *Commitment) Decode(r io.Reader) error {
	if c == nil {
		return errors.New("struct is nil")
	}

	var cBytes [32]byte
	if err := binary.Read(r, binary.BigEndian, &cBytes); err != nil {
		return err
	}
	if ok := c.Value.SetBytes(&cBytes); !ok {
		return errors.New("point not encodable")
	}
	return nil
}

// Equals returns true if both commitments hold the same point and
// blinding factor
func (c *Commitment) Equals(other Commitment) bool {
	return c.Value.Equals(&other.Value) && c.BlindingFactor.Equals(&other.BlindingFactor)
}

// EqualValue returns true if both commitments hold the same point
func (c *Commitment) EqualValue(other Commitment) bool {
	return c.Value.Equals(&other.Value)
}
