package rangeproof

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/big"
	"math/bits"
	"sync"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/fiatshamir"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/innerproduct"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/pedersen"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof/vector"
)

// generatorSeed is the domain tag the generator vectors are derived from
const generatorSeed = "veil.BulletProof.vec1"

// The generator vectors are deterministic in the seed and bit width, so
// they are derived once per width and shared by every prover and
// verifier in the process. The cached committers are never mutated
// after construction, which makes concurrent use safe.
var (
	genMu sync.Mutex
	gens  = make(map[uint32]*genPair)
)

type genPair struct {
	ped  *pedersen.Pedersen // G vector, base and blind points
	ped2 *pedersen.Pedersen // H vector
}

func sharedGens(n uint32) *genPair {
	genMu.Lock()
	defer genMu.Unlock()

	if g, ok := gens[n]; ok {
		return g
	}

	ped := pedersen.New([]byte(generatorSeed))
	ped.BaseVector.Compute(n)

	ped2 := pedersen.New(append([]byte(generatorSeed), uint8(1)))
	ped2.BaseVector.Compute(n)

	g := &genPair{ped: ped, ped2: ped2}
	gens[n] = g
	return g
}

// Supported bit widths for the full proof
const (
	Width32 uint32 = 32
	Width64 uint32 = 64
)

// CompactThreshold is the bound below which amounts are proven with
// the compact commitment-opening proof instead of a full bulletproof
const CompactThreshold uint64 = 1 << 16

// Serialized proof sizes. Verification dispatches on these.
const (
	CompactProofSize = 128
	ProofSize32      = 610
	ProofSize64      = 674
)

// Proof is the constructed bulletproof for a single committed value
type Proof struct {
	V  pedersen.Commitment // commitment to the value, 32 byte curve point
	A  ristretto.Point     // commitment to the bit vectors
	S  ristretto.Point     // commitment to the blinding vectors
	T1 ristretto.Point
	T2 ristretto.Point

	// N is the bit width of the proven range
	N uint32

	taux ristretto.Scalar
	mu   ristretto.Scalar
	t    ristretto.Scalar

	IPProof *innerproduct.Proof
}

// Prove will prove that v lies in [0, 2^n), binding the commitment to
// the blinding scalar supplied by the caller
func Prove(v uint64, blind ristretto.Scalar, n uint32) (*Proof, error) {

	if n != Width32 && n != Width64 {
		return nil, errors.Errorf("unsupported bit width %d", n)
	}
	if n == Width32 && v > (1<<32)-1 {
		return nil, errors.New("value is out of the 32 bit range")
	}

	var amount ristretto.Scalar
	amount.SetBigInt(new(big.Int).SetUint64(v))

	g := sharedGens(n)
	ped, ped2 := g.ped, g.ped2

	// commitment to v
	V := ped.CommitToScalarWithBlind(amount, blind)

	// Fiat-Shamir transcript
	hs := fiatshamir.HashCacher{Cache: []byte{}}
	hs.Append(V.Value.Bytes())

	// bit commitments to v
	bc := BitCommit(v, n)

	// A = alpha*H + aL*G + aR*H'
	A := ped.CommitToVectors(ped2, bc.AL, bc.AR)

	// S = rho*H + sL*G + sR*H'
	sL, sR := make([]ristretto.Scalar, n), make([]ristretto.Scalar, n)
	for i := uint32(0); i < n; i++ {
		sL[i].Rand()
		sR[i].Rand()
	}
	S := ped.CommitToVectors(ped2, sL, sR)

	hs.Append(A.Value.Bytes(), S.Value.Bytes())

	y, z := computeYAndZ(hs)

	poly, err := computePoly(bc.AL, bc.AR, sL, sR, y, z)
	if err != nil {
		return nil, errors.Wrap(err, "[Prove] - poly")
	}

	// commit to the t(X) coefficients
	T1 := ped.CommitToScalar(poly.t1)
	T2 := ped.CommitToScalar(poly.t2)

	hs.Append(z.Bytes(), T1.Value.Bytes(), T2.Value.Bytes())

	x := computeX(hs)

	taux := computeTaux(x, z, T1.BlindingFactor, T2.BlindingFactor, blind)
	mu := computeMu(x, A.BlindingFactor, S.BlindingFactor)

	l, err := poly.computeL(x)
	if err != nil {
		return nil, errors.Wrap(err, "[Prove] - l")
	}
	r, err := poly.computeR(x)
	if err != nil {
		return nil, errors.Wrap(err, "[Prove] - r")
	}
	t, err := vector.InnerProduct(l, r)
	if err != nil {
		return nil, errors.Wrap(err, "[Prove] - t")
	}

	// a zero challenge would collapse the transcript binding
	if x.IsNonZeroI() == 0 || y.IsNonZeroI() == 0 || z.IsNonZeroI() == 0 {
		return nil, errors.New("[Prove] - one of the challenge scalars x, y or z was zero; generate the proof again")
	}

	hs.Append(x.Bytes(), taux.Bytes(), mu.Bytes(), t.Bytes())

	// inner product argument
	Q := ristretto.Point{}
	w := hs.Derive()
	Q.ScalarMult(&ped.BasePoint, &w)

	var yinv ristretto.Scalar
	yinv.Inverse(&y)
	Hpf := vector.ScalarPowers(yinv, n)

	G := ped.BaseVector.Bases
	H := ped2.BaseVector.Bases

	ip, err := innerproduct.Generate(G, H, l, r, Hpf, Q)
	if err != nil {
		return nil, errors.Wrap(err, "[Prove] - ipproof")
	}

	return &Proof{
		V:       V,
		A:       A.Value,
		S:       S.Value,
		T1:      T1.Value,
		T2:      T2.Value,
		N:       n,
		t:       t,
		taux:    taux,
		mu:      mu,
		IPProof: ip,
	}, nil
}

func computeYAndZ(hs fiatshamir.HashCacher) (ristretto.Scalar, ristretto.Scalar) {

	var y ristretto.Scalar
	y.Derive(hs.Result())

	var z ristretto.Scalar
	z.Derive(y.Bytes())

	return y, z
}

func computeX(hs fiatshamir.HashCacher) ristretto.Scalar {
	var x ristretto.Scalar
	x.Derive(hs.Result())
	return x
}

// taux is the blinding polynomial evaluated at x:
// taux = t1Blind * x + t2Blind * x^2 + z^2 * vBlind
func computeTaux(x, z, t1Blind, t2Blind, vBlind ristretto.Scalar) ristretto.Scalar {

	var tau1X ristretto.Scalar
	tau1X.Mul(&x, &t1Blind)

	var xSq ristretto.Scalar
	xSq.Square(&x)

	var tau2XSq ristretto.Scalar
	tau2XSq.Mul(&xSq, &t2Blind)

	var zSq ristretto.Scalar
	zSq.Square(&z)

	var zSqBlind ristretto.Scalar
	zSqBlind.Mul(&zSq, &vBlind)

	var res ristretto.Scalar
	res.Add(&tau1X, &tau2XSq)
	res.Add(&res, &zSqBlind)

	return res
}

// alpha is the blinding factor for A, rho the blinding factor for S;
// mu = alpha + rho * x
func computeMu(x, alpha, rho ristretto.Scalar) ristretto.Scalar {

	var mu ristretto.Scalar
	mu.MulAdd(&rho, &x, &alpha)

	return mu
}

// Verify takes a serialized proof and a 32 byte commitment and returns
// true only if the proof is valid. Any parse failure, wrong length or
// algebraic mismatch yields false, never an error.
func Verify(proof, commitment []byte) bool {

	if len(commitment) != 32 {
		return false
	}
	var vBytes [32]byte
	copy(vBytes[:], commitment)

	var V ristretto.Point
	if ok := V.SetBytes(&vBytes); !ok {
		return false
	}

	switch len(proof) {
	case CompactProofSize:
		return verifyCompact(proof, V)
	case ProofSize32, ProofSize64:
		p, err := DecodeProof(proof)
		if err != nil {
			return false
		}
		p.V.Value = V
		return p.verify() == nil
	default:
		return false
	}
}

// verify recomputes every Fiat-Shamir challenge from the proof's own
// commitments and checks the final algebraic identity
func (p *Proof) verify() error {

	if p.N != Width32 && p.N != Width64 {
		return errors.Errorf("unsupported bit width %d", p.N)
	}
	if p.IPProof == nil {
		return errors.New("proof has no inner product argument")
	}
	if uint32(1)<<uint(len(p.IPProof.L)) != p.N {
		return errors.New("inner product argument does not match the bit width")
	}

	g := sharedGens(p.N)
	ped := g.ped
	G := g.ped.BaseVector.Bases
	H := g.ped2.BaseVector.Bases

	// reconstruct the challenges
	hs := fiatshamir.HashCacher{Cache: []byte{}}
	hs.Append(p.V.Value.Bytes())
	hs.Append(p.A.Bytes(), p.S.Bytes())
	y, z := computeYAndZ(hs)
	hs.Append(z.Bytes(), p.T1.Bytes(), p.T2.Bytes())
	x := computeX(hs)
	hs.Append(x.Bytes(), p.taux.Bytes(), p.mu.Bytes(), p.t.Bytes())
	w := hs.Derive()

	return p.megacheck(x, y, z, w, ped.BasePoint, ped.BlindPoint, G, H)
}

// megacheck folds the polynomial identity check and the inner product
// megacheck into one equation, weighted by a random scalar c
func (p *Proof) megacheck(x, y, z, w ristretto.Scalar, G, H ristretto.Point, GVec, HVec []ristretto.Point) error {

	n := p.N

	var c ristretto.Scalar
	c.Rand()

	uSq, uInvSq, s := p.IPProof.VerifScalars()
	if s == nil {
		return errors.New("inner product argument is malformed")
	}

	sInv := make([]ristretto.Scalar, len(s))
	copy(sInv, s)

	// reverse s
	for i, j := 0, len(sInv)-1; i < j; i, j = i+1, j-1 {
		sInv[i], sInv[j] = sInv[j], sInv[i]
	}

	var c1, c2, c3, c4, c5, c6, c7, c8, c9, c10, c11 ristretto.Point

	// g vector scalars : c * (a*s + z), points : GVec
	as := vector.MulScalar(s, p.IPProof.A)
	g := vector.AddScalar(as, z)
	g = vector.MulScalar(g, c)

	c1, err := vector.Exp(g, GVec, int(n), 1)
	if err != nil {
		return err
	}

	// h vector scalars : c * (y^-n o (b*sInv - z^2*2^n) - z), points : HVec
	bs := vector.MulScalar(sInv, p.IPProof.B)
	zSqTwoN := sumZTwoN(z, n)
	h, err := vector.Sub(bs, zSqTwoN)
	if err != nil {
		return errors.Wrap(err, "[h1]")
	}

	var yinv ristretto.Scalar
	yinv.Inverse(&y)
	Hpf := vector.ScalarPowers(yinv, n)

	h, err = vector.Hadamard(h, Hpf)
	if err != nil {
		return errors.Wrap(err, "[h2]")
	}
	h = vector.SubScalar(h, z)
	h = vector.MulScalar(h, c)

	c2, err = vector.Exp(h, HVec, int(n), 1)
	if err != nil {
		return err
	}

	// G basepoint scalar : c*w*(ab - t) + (t - delta(y,z)), point : G
	delta := computeDelta(y, z, n)
	var tMinusDelta ristretto.Scalar
	tMinusDelta.Sub(&p.t, &delta)

	var abMinusT ristretto.Scalar
	abMinusT.Mul(&p.IPProof.A, &p.IPProof.B)
	abMinusT.Sub(&abMinusT, &p.t)

	var cw ristretto.Scalar
	cw.Mul(&c, &w)

	var gBP ristretto.Scalar
	gBP.MulAdd(&cw, &abMinusT, &tMinusDelta)

	c3.ScalarMult(&G, &gBP)

	// H basepoint scalar : c*mu + taux, point : H
	var cmu ristretto.Scalar
	cmu.Mul(&p.mu, &c)

	var hBP ristretto.Scalar
	hBP.Add(&cmu, &p.taux)

	c4.ScalarMult(&H, &hBP)

	// scalar : c, point : A
	c5.ScalarMult(&p.A, &c)

	// scalar : c*x, point : S
	var cx ristretto.Scalar
	cx.Mul(&c, &x)
	c6.ScalarMult(&p.S, &cx)

	// scalar : u^2 challenges, points : Lj
	c7, err = vector.Exp(uSq, p.IPProof.L, len(p.IPProof.L), 1)
	if err != nil {
		return err
	}
	c7.ScalarMult(&c7, &c)

	// scalar : u^-2 challenges, points : Rj
	c8, err = vector.Exp(uInvSq, p.IPProof.R, len(p.IPProof.R), 1)
	if err != nil {
		return err
	}
	c8.ScalarMult(&c8, &c)

	// scalar : z^2, point : V
	var zSq ristretto.Scalar
	zSq.Square(&z)
	c9.ScalarMult(&p.V.Value, &zSq)

	// scalar : x, point : T1
	c10.ScalarMult(&p.T1, &x)

	// scalar : x^2, point : T2
	var xSq ristretto.Scalar
	xSq.Square(&x)
	c11.ScalarMult(&p.T2, &xSq)

	var sum ristretto.Point
	sum.SetZero()
	sum.Add(&c1, &c2)
	sum.Add(&sum, &c3)
	sum.Add(&sum, &c4)
	sum.Sub(&sum, &c5)
	sum.Sub(&sum, &c6)
	sum.Sub(&sum, &c7)
	sum.Sub(&sum, &c8)
	sum.Sub(&sum, &c9)
	sum.Sub(&sum, &c10)
	sum.Sub(&sum, &c11)

	var zero ristretto.Point
	zero.SetZero()

	if !zero.Equals(&sum) {
		return errors.New("megacheck failed")
	}

	return nil
}

// Generate proves v in the variant selected by its magnitude and returns
// the serialized proof alongside the 32 byte commitment. A zero blinding
// scalar is resampled, since it would commit to the bare value.
func Generate(v uint64, blind ristretto.Scalar) ([]byte, []byte, error) {

	for blind.IsNonZeroI() == 0 {
		blind.Rand()
	}

	if v < CompactThreshold {
		cp, V, err := ProveCompact(v, blind)
		if err != nil {
			return nil, nil, err
		}
		return cp.Bytes(), V.Value.Bytes(), nil
	}

	width := Width64
	if v <= (1<<32)-1 {
		width = Width32
	}

	p, err := Prove(v, blind, width)
	if err != nil {
		return nil, nil, err
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, nil, err
	}
	return buf, p.V.Value.Bytes(), nil
}

// Size returns the serialized proof size for a given amount
func Size(v uint64) int {
	if v < CompactThreshold {
		return CompactProofSize
	}
	if v <= (1<<32)-1 {
		return ProofSize32
	}
	return ProofSize64
}

// Bytes serializes the proof without its commitment:
// a 2 byte big-endian bit width, the four commitment points, the three
// response scalars, then the inner product argument
func (p *Proof) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := p.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode the proof into w
func (p *Proof) Encode(w io.Writer) error {

	if err := binary.Write(w, binary.BigEndian, uint16(p.N)); err != nil {
		return err
	}

	for _, pt := range []*ristretto.Point{&p.A, &p.S, &p.T1, &p.T2} {
		if err := binary.Write(w, binary.BigEndian, pt.Bytes()); err != nil {
			return err
		}
	}
	for _, s := range []*ristretto.Scalar{&p.taux, &p.mu, &p.t} {
		if err := binary.Write(w, binary.BigEndian, s.Bytes()); err != nil {
			return err
		}
	}
	return p.IPProof.Encode(w)
}

// DecodeProof parses a serialized full proof. The commitment is carried
// separately and must be set by the caller before verification.
func DecodeProof(buf []byte) (*Proof, error) {

	if len(buf) != ProofSize32 && len(buf) != ProofSize64 {
		return nil, errors.Errorf("proof must be %d or %d bytes long, got %d", ProofSize32, ProofSize64, len(buf))
	}

	p := &Proof{}
	r := bytes.NewReader(buf)

	var width uint16
	if err := binary.Read(r, binary.BigEndian, &width); err != nil {
		return nil, err
	}
	p.N = uint32(width)

	expected := ProofSize32
	if p.N == Width64 {
		expected = ProofSize64
	} else if p.N != Width32 {
		return nil, errors.Errorf("unsupported bit width %d", p.N)
	}
	if len(buf) != expected {
		return nil, errors.Errorf("a %d bit proof must be %d bytes long, got %d", p.N, expected, len(buf))
	}

	for _, pt := range []*ristretto.Point{&p.A, &p.S, &p.T1, &p.T2} {
		if err := readerToPoint(r, pt); err != nil {
			return nil, err
		}
	}
	for _, s := range []*ristretto.Scalar{&p.taux, &p.mu, &p.t} {
		if err := readerToScalar(r, s); err != nil {
			return nil, err
		}
	}

	p.IPProof = &innerproduct.Proof{}
	if err := p.IPProof.Decode(r); err != nil {
		return nil, err
	}

	if bits.Len32(p.N)-1 != len(p.IPProof.L) {
		return nil, errors.New("inner product argument does not match the bit width")
	}

	return p, nil
}

// Equals returns true if two proofs are identical
func (p *Proof) Equals(other Proof, includeCommits bool) bool {
	if includeCommits && !p.V.EqualValue(other.V) {
		return false
	}

	ok := p.A.Equals(&other.A)
	if !ok {
		return ok
	}
	ok = p.S.Equals(&other.S)
	if !ok {
		return ok
	}
	ok = p.T1.Equals(&other.T1)
	if !ok {
		return ok
	}
	ok = p.T2.Equals(&other.T2)
	if !ok {
		return ok
	}
	ok = p.taux.Equals(&other.taux)
	if !ok {
		return ok
	}
	ok = p.mu.Equals(&other.mu)
	if !ok {
		return ok
	}
	ok = p.t.Equals(&other.t)
	if !ok {
		return ok
	}
	return p.IPProof.Equals(*other.IPProof)
}

func readerToPoint(r io.Reader, p *ristretto.Point) error {
	var x [32]byte
	if err := binary.Read(r, binary.BigEndian, &x); err != nil {
		return err
	}
	if ok := p.SetBytes(&x); !ok {
		return errors.New("point not encodable")
	}
	return nil
}

func readerToScalar(r io.Reader, s *ristretto.Scalar) error {
	var x [32]byte
	if err := binary.Read(r, binary.BigEndian, &x); err != nil {
		return err
	}
	s.SetBytes(&x)
	return nil
}
