package translog

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/internal/options"
	"github.com/rs/zerolog"
)

const (
	// DefaultSampleSize is the number of records sampled during byte order detection.
	DefaultSampleSize = 100
	// DefaultIndexSize is the maximum number of time index markers.
	DefaultIndexSize = 1000
	// DefaultMaxEventDuration bounds an event scan, in seconds after the event start.
	DefaultMaxEventDuration = 3600.0

	minWindowSize = 4096
	maxWindowSize = 1 << 20
)

// Config holds the settings used to open a transition log.
type Config struct {
	engine           endian.EndianEngine
	patchCount       int
	sampleSize       int
	rng              *rand.Rand
	indexSize        int
	windowSize       int
	maxEventDuration float64
	zeroBasedIDs     bool
	indexCachePath   string
	logger           zerolog.Logger
}

func newConfig() *Config {
	return &Config{
		sampleSize:       DefaultSampleSize,
		indexSize:        DefaultIndexSize,
		maxEventDuration: DefaultMaxEventDuration,
		logger:           zerolog.Nop(),
	}
}

func (c *Config) random() *rand.Rand {
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec
	}

	return c.rng
}

// windowFor picks the window size for a log whose index buckets hold width records.
func (c *Config) windowFor(width int64) int {
	if c.windowSize > 0 {
		return c.windowSize
	}

	return int(min(max(width, minWindowSize), maxWindowSize))
}

// Option configures how a transition log is opened.
type Option = options.Option[*Config]

// WithByteOrder pins the byte order and skips detection.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *Config) error {
		if engine == nil {
			return fmt.Errorf("byte order engine must not be nil")
		}
		c.engine = engine

		return nil
	})
}

// WithPatchCount sets the number of patches N in the fault model. Detection
// accepts patch ids in [1, N] and needs N unless the byte order is pinned.
func WithPatchCount(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("patch count must be positive, got %d", n)
		}
		c.patchCount = n

		return nil
	})
}

// WithSampleSize sets how many random records byte order detection inspects.
func WithSampleSize(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("sample size must be positive, got %d", n)
		}
		c.sampleSize = n

		return nil
	})
}

// WithRand sets the random source used to pick detection samples.
func WithRand(rng *rand.Rand) Option {
	return options.NoError(func(c *Config) {
		c.rng = rng
	})
}

// WithIndexSize caps the number of time index markers.
func WithIndexSize(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("index size must be positive, got %d", n)
		}
		c.indexSize = n

		return nil
	})
}

// WithWindowSize sets the number of records decoded per window refill.
// By default the window matches the index bucket width, clamped to [4096, 1<<20].
func WithWindowSize(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("window size must be positive, got %d", n)
		}
		c.windowSize = n

		return nil
	})
}

// WithMaxEventDuration sets the scan ceiling for event assembly, in seconds.
func WithMaxEventDuration(seconds float64) Option {
	return options.New(func(c *Config) error {
		if !(seconds > 0) || math.IsInf(seconds, 1) {
			return fmt.Errorf("max event duration must be positive and finite, got %v", seconds)
		}
		c.maxEventDuration = seconds

		return nil
	})
}

// WithZeroBasedPatchIDs treats on-disk patch ids as 0-based. Decoded ids are
// shifted by one so callers always see 1-based ids.
func WithZeroBasedPatchIDs() Option {
	return options.NoError(func(c *Config) {
		c.zeroBasedIDs = true
	})
}

// WithIndexCache stores the time index in a sidecar file at path and reuses
// it on later opens of the same log.
func WithIndexCache(path string) Option {
	return options.NoError(func(c *Config) {
		c.indexCachePath = path
	})
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}
