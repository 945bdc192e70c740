package engine

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/veil-network/veil-crypto/pkg/crypto/elgamal"
)

// maxTableBound caps the decrypt lookup tables the accelerated backend
// will build. Bounds above it fall through to the linear search.
const maxTableBound uint64 = 1 << 20

// accelerated layers amortized fast paths over the native backend:
// decrypt lookup tables shared across calls and concurrent fan-out for
// the batch entry points. Single-item semantics are identical to
// native.
type accelerated struct {
	native

	concurrency int
	batchSize   int

	// defaultBound is the decrypt bound whose lookup table is built
	// up front, during the self test, instead of on first use
	defaultBound uint64

	mu     sync.Mutex
	tables map[uint64]*elgamal.DecryptTable
}

func newAccelerated(concurrency, batchSize int, defaultBound uint64) *accelerated {
	if concurrency < 1 {
		concurrency = 1
	}
	if batchSize < 1 {
		batchSize = 64
	}
	if defaultBound == 0 || defaultBound > maxTableBound {
		defaultBound = 100
	}
	return &accelerated{
		concurrency:  concurrency,
		batchSize:    batchSize,
		defaultBound: defaultBound,
		tables:       make(map[uint64]*elgamal.DecryptTable),
	}
}

func (a *accelerated) Name() string { return "accelerated" }

// Decrypt serves from a lookup table built once per bound. The first
// call for a bound pays the table construction, every later call is a
// single map probe per candidate handle.
func (a *accelerated) Decrypt(ct *elgamal.Ciphertext, sk *elgamal.SecretKey, bound uint64) (uint64, bool) {
	if bound > maxTableBound {
		return elgamal.Decrypt(ct, sk, bound)
	}

	a.mu.Lock()
	table, ok := a.tables[bound]
	if !ok {
		table = elgamal.NewDecryptTable(bound)
		a.tables[bound] = table
	}
	a.mu.Unlock()

	return table.Decrypt(ct, sk)
}

func (a *accelerated) EncryptBatch(amounts []uint64, pk *elgamal.PublicKey) ([]*elgamal.Ciphertext, error) {
	cts := make([]*elgamal.Ciphertext, len(amounts))

	err := a.fanOut(len(amounts), func(i int) error {
		ct, err := elgamal.Encrypt(amounts[i], pk)
		if err != nil {
			return err
		}
		cts[i] = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cts, nil
}

func (a *accelerated) ProveRangeBatch(amounts []uint64) ([]RangeProof, error) {
	proofs := make([]RangeProof, len(amounts))

	err := a.fanOut(len(amounts), func(i int) error {
		proof, commitment, err := a.ProveRange(amounts[i])
		if err != nil {
			return err
		}
		proofs[i] = RangeProof{Proof: proof, Commitment: commitment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proofs, nil
}

// fanOut runs fn for every index in chunks of the configured batch
// size, each chunk bounded by the configured concurrency. The first
// error aborts after the current chunk drains. A panic in fn is turned
// into an error so a failing item can never take the process down.
func (a *accelerated) fanOut(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	if n == 1 {
		return a.runItem(0, fn)
	}

	for start := 0; start < n; start += a.batchSize {
		end := start + a.batchSize
		if end > n {
			end = n
		}

		var wg sync.WaitGroup
		sem := make(chan struct{}, a.concurrency)
		errs := make(chan error, end-start)

		for i := start; i < end; i++ {
			wg.Add(1)
			sem <- struct{}{}

			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := a.runItem(i, fn); err != nil {
					errs <- err
				}
			}(i)
		}

		wg.Wait()
		close(errs)

		if err := <-errs; err != nil {
			return err
		}
	}
	return nil
}

// runItem wraps a single fn call so a panic surfaces as an error on
// the goroutine that ran it
func (a *accelerated) runItem(i int, fn func(i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("batch item %d panicked: %v", i, r)
		}
	}()
	return fn(i)
}

// selfTest is the probe the engine runs before trusting the backend: a
// known-answer encrypt, table decrypt and range proof round trip. The
// decrypt leg warms the lookup table for the configured default bound.
func (a *accelerated) selfTest() error {
	kp, err := elgamal.GenerateKeyPair()
	if err != nil {
		return errors.Wrap(err, "self test could not generate keys")
	}

	known := uint64(42)
	if known >= a.defaultBound {
		known = a.defaultBound - 1
	}

	ct, err := a.Encrypt(known, &kp.Public)
	if err != nil {
		return errors.Wrap(err, "self test could not encrypt")
	}

	amount, ok := a.Decrypt(ct, &kp.Secret, a.defaultBound)
	if !ok || amount != known {
		return errors.New("self test decrypt mismatch")
	}

	proof, commitment, err := a.ProveRange(known)
	if err != nil {
		return errors.Wrap(err, "self test could not prove")
	}
	if !a.VerifyRange(proof, commitment) {
		return errors.New("self test proof did not verify")
	}
	return nil
}
