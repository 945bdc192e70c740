// Package engine dispatches proof operations to a backend. The
// accelerated backend is probed once with a self test; when the probe
// or a later operation fails, the engine falls back to the native
// backend and keeps serving. Every served operation leaves a
// performance sample behind.
package engine

import (
	"sync"
	"time"

	ristretto "github.com/bwesterb/go-ristretto"
	"github.com/pkg/errors"
	logrus "github.com/sirupsen/logrus"

	"github.com/veil-network/veil-crypto/pkg/config"
	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/crypto/transfer"
)

var log = logrus.WithField("process", "engine")

// Backend force settings, matching the engine.implementation config key
const (
	ImplAuto        = "auto"
	ImplNative      = "native"
	ImplAccelerated = "accelerated"
)

// Engine selects a backend and guards every call with panic recovery
// and native fallback
type Engine struct {
	forced string

	native Implementation
	accel  Implementation

	probeOnce *sync.Once
	selected  Implementation

	ring      *sampleRing
	slowProof time.Duration
	probeWait time.Duration
}

// New builds an engine from the loaded configuration
func New() *Engine {
	cfg := config.Get()

	capacity := cfg.Performance.SampleCapacity
	if capacity == 0 {
		capacity = 1000
	}

	return &Engine{
		forced:    cfg.Engine.Implementation,
		native:    native{},
		accel:     newAccelerated(cfg.Engine.MaxConcurrency, cfg.Engine.BatchSize, cfg.Performance.DecryptBound),
		probeOnce: new(sync.Once),
		ring:      newSampleRing(capacity),
		slowProof: time.Duration(cfg.Engine.SlowProofMillis) * time.Millisecond,
		probeWait: time.Duration(cfg.Engine.InitTimeoutMillis) * time.Millisecond,
	}
}

// backend returns the implementation serving this engine, probing the
// accelerated one on first use
func (e *Engine) backend() Implementation {
	e.probeOnce.Do(func() {
		switch e.forced {
		case ImplNative:
			e.selected = e.native
		case ImplAccelerated:
			e.selected = e.accel
		default:
			e.selected = e.probe()
		}
		log.WithField("impl", e.selected.Name()).Info("backend selected")
	})
	return e.selected
}

// probe runs the accelerated self test, bounded by the configured init
// timeout. Any failure selects the native backend.
func (e *Engine) probe() Implementation {
	accel, ok := e.accel.(*accelerated)
	if !ok {
		return e.accel
	}

	done := make(chan error, 1)
	go func() {
		done <- guard(accel.selfTest)
	}()

	wait := e.probeWait
	if wait <= 0 {
		wait = 2 * time.Second
	}

	select {
	case err := <-done:
		if err != nil {
			log.WithError(err).Warn("accelerated backend failed self test")
			return e.native
		}
		return e.accel
	case <-time.After(wait):
		log.WithField("timeout", wait).Warn("accelerated backend self test timed out")
		return e.native
	}
}

// ResetForTest clears the memoized backend selection and the retained
// samples. Test helper only.
func (e *Engine) ResetForTest() {
	e.probeOnce = new(sync.Once)
	e.selected = nil
	e.ring.reset()
}

// Stats aggregates the retained performance samples per operation
func (e *Engine) Stats() map[string]OpStats {
	return aggregate(e.ring.snapshot())
}

// Samples returns the retained samples oldest first
func (e *Engine) Samples() []PerformanceSample {
	return e.ring.snapshot()
}

// guard converts a backend panic into an error
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("backend panic: %v", r)
		}
	}()
	return fn()
}

// run serves one operation with fallback: the selected backend first,
// the native one when the selected backend fails. It records a sample
// naming the backend that actually served.
func (e *Engine) run(op string, batch int, fn func(impl Implementation) error) error {
	impl := e.backend()

	start := time.Now()
	err := guard(func() error { return fn(impl) })

	if err != nil && impl != e.native {
		log.WithError(err).WithField("op", op).Warn("accelerated backend failed, retrying natively")
		impl = e.native
		start = time.Now()
		err = guard(func() error { return fn(impl) })
	}

	e.ring.record(PerformanceSample{
		Op:             op,
		Implementation: impl.Name(),
		Duration:       time.Since(start),
		BatchSize:      batch,
		Recorded:       time.Now(),
	})
	return err
}

func (e *Engine) Encrypt(amount uint64, pk *elgamal.PublicKey) (*elgamal.Ciphertext, error) {
	var ct *elgamal.Ciphertext
	err := e.run("encrypt", 1, func(impl Implementation) error {
		var err error
		ct, err = impl.Encrypt(amount, pk)
		return err
	})
	return ct, err
}

func (e *Engine) EncryptBatch(amounts []uint64, pk *elgamal.PublicKey) ([]*elgamal.Ciphertext, error) {
	var cts []*elgamal.Ciphertext
	err := e.run("encrypt_batch", len(amounts), func(impl Implementation) error {
		var err error
		cts, err = impl.EncryptBatch(amounts, pk)
		return err
	})
	return cts, err
}

func (e *Engine) Decrypt(ct *elgamal.Ciphertext, sk *elgamal.SecretKey, bound uint64) (uint64, bool) {
	var amount uint64
	var ok bool
	err := e.run("decrypt", 1, func(impl Implementation) error {
		amount, ok = impl.Decrypt(ct, sk, bound)
		return nil
	})
	if err != nil {
		return 0, false
	}
	return amount, ok
}

func (e *Engine) ProveRange(amount uint64) ([]byte, []byte, error) {
	var proof, commitment []byte

	start := time.Now()
	err := e.run("prove_range", 1, func(impl Implementation) error {
		var err error
		proof, commitment, err = impl.ProveRange(amount)
		return err
	})
	e.warnSlow("prove_range", time.Since(start))

	return proof, commitment, err
}

func (e *Engine) ProveRangeBatch(amounts []uint64) ([]RangeProof, error) {
	var proofs []RangeProof
	err := e.run("prove_range_batch", len(amounts), func(impl Implementation) error {
		var err error
		proofs, err = impl.ProveRangeBatch(amounts)
		return err
	})
	return proofs, err
}

func (e *Engine) VerifyRange(proof, commitment []byte) bool {
	var ok bool
	err := e.run("verify_range", 1, func(impl Implementation) error {
		ok = impl.VerifyRange(proof, commitment)
		return nil
	})
	return err == nil && ok
}

func (e *Engine) ProveValidity(amount uint64, r *ristretto.Scalar, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) ([]byte, error) {
	var proof []byte
	err := e.run("prove_validity", 1, func(impl Implementation) error {
		proof = impl.ProveValidity(amount, r, pk, ct)
		return nil
	})
	return proof, err
}

func (e *Engine) VerifyValidity(proof []byte, pk *elgamal.PublicKey, ct *elgamal.Ciphertext) bool {
	var ok bool
	err := e.run("verify_validity", 1, func(impl Implementation) error {
		ok = impl.VerifyValidity(proof, pk, ct)
		return nil
	})
	return err == nil && ok
}

func (e *Engine) ProveEquality(amount uint64, r1, r2 *ristretto.Scalar, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) ([]byte, error) {
	var proof []byte
	err := e.run("prove_equality", 1, func(impl Implementation) error {
		proof = impl.ProveEquality(amount, r1, r2, pk1, pk2, ct1, ct2)
		return nil
	})
	return proof, err
}

func (e *Engine) VerifyEquality(proof []byte, pk1, pk2 *elgamal.PublicKey, ct1, ct2 *elgamal.Ciphertext) bool {
	var ok bool
	err := e.run("verify_equality", 1, func(impl Implementation) error {
		ok = impl.VerifyEquality(proof, pk1, pk2, ct1, ct2)
		return nil
	})
	return err == nil && ok
}

func (e *Engine) Transfer(amount uint64, balance *elgamal.Ciphertext, source *elgamal.KeyPair, dest *elgamal.PublicKey, bound uint64) (*transfer.Proof, error) {
	var p *transfer.Proof

	start := time.Now()
	err := e.run("transfer", 1, func(impl Implementation) error {
		var err error
		p, err = impl.Transfer(amount, balance, source, dest, bound)
		return err
	})
	e.warnSlow("transfer", time.Since(start))

	return p, err
}

func (e *Engine) VerifyTransfer(p *transfer.Proof, source, dest *elgamal.PublicKey, balance *elgamal.Ciphertext) bool {
	var ok bool
	err := e.run("verify_transfer", 1, func(impl Implementation) error {
		ok = impl.VerifyTransfer(p, source, dest, balance)
		return nil
	})
	return err == nil && ok
}

func (e *Engine) warnSlow(op string, elapsed time.Duration) {
	if e.slowProof > 0 && elapsed > e.slowProof {
		log.WithField("op", op).
			WithField("elapsed", elapsed).
			WithField("target", e.slowProof).
			Warn("proof generation exceeded latency target")
	}
}
