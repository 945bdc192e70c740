package config

type loggerConfiguration struct {
	Level  string
	Output string
	Format string
}

// pkg/engine package configs.
type engineConfiguration struct {
	// Implementation forces a backend: auto, native or accelerated.
	// Auto probes the accelerated backend once and falls back to
	// native when the probe fails.
	Implementation string

	// BatchSize is the chunk size batch calls fan out in. Larger
	// batches are processed in waves of this many items.
	BatchSize int

	// MaxConcurrency bounds the goroutines a batch call spawns
	MaxConcurrency int

	// InitTimeoutMillis bounds the accelerated backend probe
	InitTimeoutMillis int64

	// SlowProofMillis is the advisory threshold above which a range
	// proof generation is logged as slow
	SlowProofMillis int64
}

// Performance parameters.
type performanceConfiguration struct {
	// SampleCapacity is how many performance samples the engine
	// retains before evicting the oldest
	SampleCapacity int

	// DecryptBound is the largest balance the engine's decrypt
	// lookup table covers
	DecryptBound uint64
}
