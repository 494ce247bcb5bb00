package translog

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/internal/options"
	"github.com/arloliu/slipstate/record"
)

// DetectByteOrder infers the byte order of a log holding count records.
//
// It decodes the patch id of randomly sampled records under both byte orders
// and picks the order for which every sampled id lies in [1, N], where N is
// set with WithPatchCount. The check is probabilistic and cheap; it does not
// validate the whole file.
//
// Parameters:
//   - r: source of the raw records
//   - count: number of complete records in r
//   - opts: WithPatchCount is required; WithSampleSize, WithRand and
//     WithZeroBasedPatchIDs are honored
//
// Returns:
//   - endian.EndianEngine: the detected byte order
//   - error: errs.ErrAmbiguousByteOrder when both orders fit,
//     errs.ErrUndetectableByteOrder when neither does
func DetectByteOrder(r io.ReaderAt, count int64, opts ...Option) (endian.EndianEngine, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return detectByteOrder(r, count, cfg)
}

func detectByteOrder(r io.ReaderAt, count int64, cfg *Config) (endian.EndianEngine, error) {
	if cfg.patchCount <= 0 {
		return nil, errs.ErrPatchCountRequired
	}
	if count < 1 {
		return nil, errs.ErrNotEnoughRecords
	}

	little := endian.GetLittleEndianEngine()
	big := endian.GetBigEndianEngine()
	littleOK, bigOK := true, true

	rng := cfg.random()
	var buf [record.Size]byte
	for range cfg.sampleSize {
		i := rng.Int64N(count)
		if err := readFull(r, buf[:], i*record.Size); err != nil {
			return nil, fmt.Errorf("read sample record %d: %w", i, err)
		}

		littleOK = littleOK && cfg.validPatchID(record.PatchIDAt(buf[:], little))
		bigOK = bigOK && cfg.validPatchID(record.PatchIDAt(buf[:], big))
		if !littleOK && !bigOK {
			break
		}
	}

	switch {
	case littleOK && bigOK:
		return nil, fmt.Errorf("%w (patch count %d, %d samples)", errs.ErrAmbiguousByteOrder, cfg.patchCount, cfg.sampleSize)
	case littleOK:
		return little, nil
	case bigOK:
		return big, nil
	default:
		return nil, fmt.Errorf("%w (patch count %d)", errs.ErrUndetectableByteOrder, cfg.patchCount)
	}
}

func (c *Config) patchID(raw int32) int32 {
	if c.zeroBasedIDs {
		return raw + 1
	}

	return raw
}

func (c *Config) validPatchID(raw int32) bool {
	id := c.patchID(raw)
	return id >= 1 && int(id) <= c.patchCount
}

// readFull fills buf from r at off. A short read is reported as
// errs.ErrTruncatedRecord.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: got %d of %d bytes at offset %d", errs.ErrTruncatedRecord, n, len(buf), off)
	}

	return err
}
