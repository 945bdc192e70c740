package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veil-network/veil-crypto/pkg/config"
	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
	"github.com/veil-network/veil-crypto/pkg/crypto/rangeproof"
)

// panicking fails every encrypt to exercise the fallback path
type panicking struct {
	native
}

func (panicking) Name() string { return "accelerated" }

func (panicking) Encrypt(amount uint64, pk *elgamal.PublicKey) (*elgamal.Ciphertext, error) {
	panic("backend unavailable")
}

func newTestEngine(forced string) *Engine {
	return &Engine{
		forced:    forced,
		native:    native{},
		accel:     newAccelerated(2, 4, 100),
		probeOnce: new(sync.Once),
		ring:      newSampleRing(1000),
		probeWait: 30 * time.Second,
	}
}

func TestEngineRoundTrip(t *testing.T) {
	e := newTestEngine(ImplNative)

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	ct, err := e.Encrypt(1000, &kp.Public)
	require.Nil(t, err)

	amount, ok := e.Decrypt(ct, &kp.Secret, 2000)
	assert.True(t, ok)
	assert.Equal(t, uint64(1000), amount)
}

func TestEngineAccelerated(t *testing.T) {
	e := newTestEngine(ImplAccelerated)

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	ct, err := e.Encrypt(250, &kp.Public)
	require.Nil(t, err)

	// two decrypts, second served from the cached lookup table
	for i := 0; i < 2; i++ {
		amount, ok := e.Decrypt(ct, &kp.Secret, 1000)
		assert.True(t, ok)
		assert.Equal(t, uint64(250), amount)
	}

	for _, s := range e.Samples() {
		assert.Equal(t, "accelerated", s.Implementation)
	}
}

func TestEngineProbeSelectsAccelerated(t *testing.T) {
	e := newTestEngine(ImplAuto)
	assert.Equal(t, "accelerated", e.backend().Name())
}

func TestFallback(t *testing.T) {
	e := newTestEngine(ImplAccelerated)
	e.accel = panicking{}

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	ct, err := e.Encrypt(77, &kp.Public)
	require.Nil(t, err)

	amount, ok := elgamal.Decrypt(ct, &kp.Secret, 100)
	assert.True(t, ok)
	assert.Equal(t, uint64(77), amount)

	// the sample must record the backend that actually served
	samples := e.Samples()
	require.Equal(t, 1, len(samples))
	assert.Equal(t, "native", samples[0].Implementation)
}

func TestEngineBatch(t *testing.T) {
	e := newTestEngine(ImplAccelerated)

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	amounts := []uint64{1, 2, 3, 4, 5}
	cts, err := e.EncryptBatch(amounts, &kp.Public)
	require.Nil(t, err)
	require.Equal(t, len(amounts), len(cts))

	for i, ct := range cts {
		amount, ok := elgamal.Decrypt(ct, &kp.Secret, 10)
		assert.True(t, ok)
		assert.Equal(t, amounts[i], amount)
	}

	samples := e.Samples()
	require.Equal(t, 1, len(samples))
	assert.Equal(t, len(amounts), samples[0].BatchSize)
}

func TestBatchItemPanicRecovered(t *testing.T) {
	a := newAccelerated(2, 4, 100)

	err := a.fanOut(5, func(i int) error {
		if i == 3 {
			panic("bad table entry")
		}
		return nil
	})
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "batch item 3")

	// the single-item short circuit recovers too
	err = a.fanOut(1, func(i int) error {
		panic("bad table entry")
	})
	require.NotNil(t, err)
}

func TestBatchChunking(t *testing.T) {
	// batch size below the item count forces multiple waves
	a := newAccelerated(2, 2, 50)

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	amounts := []uint64{9, 8, 7, 6, 5}
	cts, err := a.EncryptBatch(amounts, &kp.Public)
	require.Nil(t, err)
	require.Equal(t, len(amounts), len(cts))

	for i, ct := range cts {
		amount, ok := a.Decrypt(ct, &kp.Secret, 50)
		assert.True(t, ok)
		assert.Equal(t, amounts[i], amount)
	}
}

func TestConfiguredBatchAndBound(t *testing.T) {
	original := config.Get()
	defer config.Mock(&original)

	cfg := original
	cfg.Engine.BatchSize = 8
	cfg.Engine.MaxConcurrency = 3
	cfg.Performance.DecryptBound = 500
	config.Mock(&cfg)

	e := New()

	a, ok := e.accel.(*accelerated)
	require.True(t, ok)
	assert.Equal(t, 8, a.batchSize)
	assert.Equal(t, 3, a.concurrency)
	assert.Equal(t, uint64(500), a.defaultBound)

	// the self test warms the table for the configured bound
	require.Nil(t, a.selfTest())
	a.mu.Lock()
	_, warmed := a.tables[uint64(500)]
	a.mu.Unlock()
	assert.True(t, warmed)
}

func TestEngineRangeProof(t *testing.T) {
	e := newTestEngine(ImplNative)

	proof, commitment, err := e.ProveRange(3000)
	require.Nil(t, err)
	assert.Equal(t, rangeproof.CompactProofSize, len(proof))
	assert.True(t, e.VerifyRange(proof, commitment))
}

func TestEngineTransfer(t *testing.T) {
	e := newTestEngine(ImplNative)

	src, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)
	dst, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	balance, err := e.Encrypt(10000, &src.Public)
	require.Nil(t, err)

	proof, err := e.Transfer(3000, balance, src, &dst.Public, 20000)
	require.Nil(t, err)
	assert.True(t, e.VerifyTransfer(proof, &src.Public, &dst.Public, balance))
}

func TestStats(t *testing.T) {
	e := newTestEngine(ImplNative)

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	for i := 0; i < 5; i++ {
		_, err := e.Encrypt(uint64(i), &kp.Public)
		require.Nil(t, err)
	}

	stats := e.Stats()
	require.Contains(t, stats, "encrypt")
	assert.Equal(t, 5, stats["encrypt"].Count)
	assert.Equal(t, 0.0, stats["encrypt"].AcceleratedRatio)
	assert.True(t, stats["encrypt"].MeanLatency > 0)
}

func TestRingEviction(t *testing.T) {
	ring := newSampleRing(3)

	for i := 0; i < 5; i++ {
		ring.record(PerformanceSample{Op: "encrypt", Duration: time.Duration(i)})
	}

	samples := ring.snapshot()
	require.Equal(t, 3, len(samples))

	// oldest first, the first two evicted
	assert.Equal(t, time.Duration(2), samples[0].Duration)
	assert.Equal(t, time.Duration(4), samples[2].Duration)
}

func TestResetForTest(t *testing.T) {
	e := newTestEngine(ImplNative)

	kp, err := elgamal.GenerateKeyPair()
	require.Nil(t, err)

	_, err = e.Encrypt(1, &kp.Public)
	require.Nil(t, err)
	require.NotEmpty(t, e.Samples())

	e.ResetForTest()
	assert.Empty(t, e.Samples())
	assert.Nil(t, e.selected)

	// next call re-selects a backend
	_, err = e.Encrypt(1, &kp.Public)
	require.Nil(t, err)
	assert.Equal(t, "native", e.backend().Name())
}
