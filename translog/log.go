package translog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/internal/options"
	"github.com/arloliu/slipstate/record"
	"github.com/rs/zerolog"
)

// Stats counts window activity on a Log.
type Stats struct {
	// BatchReads is the number of window refills.
	BatchReads int64
	// BackwardReads is the number of refills that moved the window backwards.
	BackwardReads int64
	// RecordsDecoded is the total number of records decoded by refills.
	RecordsDecoded int64
}

// Log is an opened transition log.
type Log struct {
	r      io.ReaderAt
	closer io.Closer
	size   int64
	count  int64
	engine endian.EndianEngine
	index  *TimeIndex
	win    window
	stats  Stats

	windowSize       int
	zeroBasedIDs     bool
	maxEventDuration float64
	logger           zerolog.Logger
}

// Open opens the log at path read-only, resolves its byte order and builds
// its time index. The file stays open until Close.
func Open(path string, opts ...Option) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transition log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat transition log: %w", err)
	}

	l, err := NewLog(f, info.Size(), opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	l.closer = f

	return l, nil
}

// NewLog creates a Log over size bytes of r. Close on the returned Log does
// not close r.
//
// Parameters:
//   - r: source of the raw records
//   - size: number of bytes of r that belong to the log
//   - opts: open options
//
// Returns:
//   - *Log: ready for queries
//   - error: option, detection, index or index cache errors
func NewLog(r io.ReaderAt, size int64, opts ...Option) (*Log, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if size < 0 {
		return nil, fmt.Errorf("negative log size %d", size)
	}

	count := size / record.Size
	if rem := size % record.Size; rem != 0 {
		cfg.logger.Warn().
			Int64("size", size).
			Int64("trailing_bytes", rem).
			Msg("transition log size is not a multiple of the record size, ignoring partial record")
	}

	l := &Log{
		r:                r,
		size:             size,
		count:            count,
		zeroBasedIDs:     cfg.zeroBasedIDs,
		maxEventDuration: cfg.maxEventDuration,
		logger:           cfg.logger,
	}

	if cfg.indexCachePath != "" {
		if l.loadCache(cfg) {
			return l, nil
		}
	}

	engine := cfg.engine
	if engine == nil {
		var err error
		if engine, err = detectByteOrder(r, count, cfg); err != nil {
			return nil, err
		}
		l.logger.Debug().Str("byte_order", endian.Name(engine)).Msg("detected byte order")
	}
	l.engine = engine

	index, err := BuildTimeIndex(r, count, engine, cfg.indexSize)
	if err != nil {
		return nil, err
	}
	l.setIndex(index, cfg)

	if cfg.indexCachePath != "" {
		if err := saveIndexCache(cfg.indexCachePath, l); err != nil {
			l.logger.Warn().Err(err).Str("path", cfg.indexCachePath).Msg("failed to write time index cache")
		}
	}

	return l, nil
}

// loadCache tries to reuse a cached index. It reports whether l is ready.
func (l *Log) loadCache(cfg *Config) bool {
	cached, err := loadIndexCache(cfg.indexCachePath, l.size, l.count)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Info().Err(err).Str("path", cfg.indexCachePath).Msg("rebuilding time index")
		}

		return false
	}

	if cfg.engine != nil && cfg.engine != cached.engine {
		l.logger.Info().Str("path", cfg.indexCachePath).Msg("cached byte order differs from requested, rebuilding time index")
		return false
	}

	if want := min(int64(cfg.indexSize), l.count); int64(cached.index.Len()) != want {
		l.logger.Info().Str("path", cfg.indexCachePath).Msg("cached index size differs from requested, rebuilding time index")
		return false
	}

	if err := verifyCachedIndex(l.r, cached); err != nil {
		l.logger.Info().Err(err).Str("path", cfg.indexCachePath).Msg("cached index does not match log, rebuilding time index")
		return false
	}

	l.engine = cached.engine
	l.setIndex(cached.index, cfg)
	l.logger.Debug().Str("path", cfg.indexCachePath).Int("markers", cached.index.Len()).Msg("loaded time index cache")

	return true
}

func (l *Log) setIndex(index *TimeIndex, cfg *Config) {
	l.index = index
	l.windowSize = cfg.windowFor(index.BucketWidth())
}

// Count returns the number of complete records in the log.
func (l *Log) Count() int64 {
	return l.count
}

// Size returns the log size in bytes, including any trailing partial record.
func (l *Log) Size() int64 {
	return l.size
}

// ByteOrder returns the byte order used to decode the log.
func (l *Log) ByteOrder() endian.EndianEngine {
	return l.engine
}

// Index returns the time index.
func (l *Log) Index() *TimeIndex {
	return l.index
}

// WindowSize returns the number of records decoded per refill.
func (l *Log) WindowSize() int {
	return l.windowSize
}

// Stats returns the window counters accumulated so far.
func (l *Log) Stats() Stats {
	return l.stats
}

// Transition returns the record at index i.
func (l *Log) Transition(i int64) (record.Transition, error) {
	if i < 0 || i >= l.count {
		return record.Transition{}, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, l.count)
	}

	off, err := l.read(i)
	if err != nil {
		return record.Transition{}, err
	}

	return l.win.records[off], nil
}

// Close releases the underlying file, if the Log opened it.
func (l *Log) Close() error {
	l.win = window{}
	if l.closer == nil {
		return nil
	}

	err := l.closer.Close()
	l.closer = nil

	return err
}
