package translog

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/arloliu/slipstate/endian"
	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/internal/hash"
	"github.com/arloliu/slipstate/record"
)

// Index cache layout, always little-endian:
//
//	magic    [4]byte "STIX"
//	version  uint16
//	order    uint8   0 little, 1 big
//	flags    uint8   reserved
//	logSize  int64
//	count    int64
//	width    int64
//	markers  uint32
//	markers * (time float64, index int64)
//	checksum uint64  xxHash64 of every preceding byte
const (
	cacheMagic      = "STIX"
	cacheVersion    = 1
	cacheHeaderSize = 4 + 2 + 1 + 1 + 8 + 8 + 8 + 4
	cacheMarkerSize = 16
	cacheSumSize    = 8

	// cacheVerifyMarkers is how many cached markers are checked against the log on load.
	cacheVerifyMarkers = 16
)

type cachedIndex struct {
	engine endian.EndianEngine
	index  *TimeIndex
}

func encodeIndexCache(l *Log) []byte {
	le := endian.GetLittleEndianEngine()
	markers := l.index.markers

	buf := make([]byte, 0, cacheHeaderSize+len(markers)*cacheMarkerSize+cacheSumSize)
	buf = append(buf, cacheMagic...)
	buf = le.AppendUint16(buf, cacheVersion)
	if l.engine == endian.GetBigEndianEngine() {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, 0)
	buf = le.AppendUint64(buf, uint64(l.size))        //nolint: gosec
	buf = le.AppendUint64(buf, uint64(l.count))       //nolint: gosec
	buf = le.AppendUint64(buf, uint64(l.index.width)) //nolint: gosec
	buf = le.AppendUint32(buf, uint32(len(markers)))  //nolint: gosec
	for _, m := range markers {
		buf = le.AppendUint64(buf, math.Float64bits(m.Time))
		buf = le.AppendUint64(buf, uint64(m.Index)) //nolint: gosec
	}

	return le.AppendUint64(buf, hash.Checksum(buf))
}

func decodeIndexCache(data []byte, logSize, count int64) (*cachedIndex, error) {
	le := endian.GetLittleEndianEngine()

	if len(data) < cacheHeaderSize+cacheSumSize {
		return nil, fmt.Errorf("%w: %d bytes is too short", errs.ErrInvalidIndexCache, len(data))
	}
	if !bytes.Equal(data[0:4], []byte(cacheMagic)) {
		return nil, fmt.Errorf("%w: bad magic", errs.ErrInvalidIndexCache)
	}

	body, sum := data[:len(data)-cacheSumSize], le.Uint64(data[len(data)-cacheSumSize:])
	if hash.Checksum(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", errs.ErrInvalidIndexCache)
	}

	if v := le.Uint16(data[4:6]); v != cacheVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidIndexCache, v)
	}

	var engine endian.EndianEngine
	switch data[6] {
	case 0:
		engine = endian.GetLittleEndianEngine()
	case 1:
		engine = endian.GetBigEndianEngine()
	default:
		return nil, fmt.Errorf("%w: unknown byte order %d", errs.ErrInvalidIndexCache, data[6])
	}

	cachedSize := int64(le.Uint64(data[8:16]))   //nolint: gosec
	cachedCount := int64(le.Uint64(data[16:24])) //nolint: gosec
	width := int64(le.Uint64(data[24:32]))       //nolint: gosec
	n := int(le.Uint32(data[32:36]))
	if cachedSize != logSize || cachedCount != count {
		return nil, fmt.Errorf("%w: cache describes %d records in %d bytes, log has %d records in %d bytes",
			errs.ErrInvalidIndexCache, cachedCount, cachedSize, count, logSize)
	}
	if len(body) != cacheHeaderSize+n*cacheMarkerSize {
		return nil, fmt.Errorf("%w: marker count %d does not match cache length", errs.ErrInvalidIndexCache, n)
	}

	markers := make([]Marker, n)
	off := cacheHeaderSize
	for i := range markers {
		markers[i].Time = math.Float64frombits(le.Uint64(data[off : off+8]))
		markers[i].Index = int64(le.Uint64(data[off+8 : off+16])) //nolint: gosec
		off += cacheMarkerSize
	}

	index, err := newTimeIndex(markers, width)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidIndexCache, err)
	}

	return &cachedIndex{engine: engine, index: index}, nil
}

// verifyCachedIndex re-reads the times of evenly spaced markers, always
// including the first and last, and fails when any differs from the log.
// Size and count alone do not tell two logs apart.
func verifyCachedIndex(r io.ReaderAt, cached *cachedIndex) error {
	n := cached.index.Len()
	if n == 0 {
		return nil
	}

	checks := min(n, cacheVerifyMarkers)
	var buf [8]byte
	for k := range checks {
		i := 0
		if checks > 1 {
			i = k * (n - 1) / (checks - 1)
		}
		m := cached.index.Marker(i)

		if err := readFull(r, buf[:], m.Index*record.Size); err != nil {
			return fmt.Errorf("%w: read marker %d: %w", errs.ErrInvalidIndexCache, i, err)
		}
		if got := record.TimeAt(buf[:], cached.engine); math.Float64bits(got) != math.Float64bits(m.Time) {
			return fmt.Errorf("%w: marker %d at record %d has time %v, log has %v",
				errs.ErrInvalidIndexCache, i, m.Index, m.Time, got)
		}
	}

	return nil
}

func loadIndexCache(path string, logSize, count int64) (*cachedIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return decodeIndexCache(data, logSize, count)
}

// saveIndexCache writes the cache through a temporary file so readers never
// observe a partial cache.
func saveIndexCache(path string, l *Log) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(encodeIndexCache(l)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
