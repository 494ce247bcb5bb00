package format

import (
	"fmt"

	"github.com/arloliu/slipstate/errs"
)

type (
	// State is the mechanical state of a patch, stored as a single byte code.
	State uint8
	// CompressionType selects the block compressor used for point-source files.
	CompressionType uint8
)

const (
	Locked         State = 0 // Locked represents a patch at rest.
	NucleatingSlip State = 1 // NucleatingSlip represents slow slip preceding rupture.
	EarthquakeSlip State = 2 // EarthquakeSlip represents seismic slip at the patch slip velocity.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// ParseState decodes a state code. Any code other than 0, 1 or 2 returns
// errs.ErrUnknownState; there is no fallback state.
func ParseState(code uint8) (State, error) {
	switch State(code) {
	case Locked, NucleatingSlip, EarthquakeSlip:
		return State(code), nil
	default:
		return 0, fmt.Errorf("%w: %d", errs.ErrUnknownState, code)
	}
}

// Code returns the on-disk byte for the state.
func (s State) Code() uint8 {
	return uint8(s)
}

// IsSlipping reports whether the patch is slipping, either nucleating or seismically.
func (s State) IsSlipping() bool {
	return s == NucleatingSlip || s == EarthquakeSlip
}

func (s State) String() string {
	switch s {
	case Locked:
		return "Locked"
	case NucleatingSlip:
		return "NucleatingSlip"
	case EarthquakeSlip:
		return "EarthquakeSlip"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// CompressionFromExtension maps a file extension (with or without the leading
// dot) to a compression type. Unknown extensions map to CompressionNone.
func CompressionFromExtension(ext string) CompressionType {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}

	switch ext {
	case "zst", "zstd":
		return CompressionZstd
	case "s2":
		return CompressionS2
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}
