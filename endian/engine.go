// Package endian provides byte order utilities for decoding simulator logs.
//
// Transition logs are written in the byte order of whatever machine ran the
// simulator, and the files carry no marker saying which one it was. Every
// decoder in slipstate therefore works against an EndianEngine chosen at open
// time, either pinned by the caller or detected by sampling the file.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	t := engine.Uint64(buf[0:8])
//
// Engines can also be looked up by name, which is how the CLI and the index
// cache refer to them:
//
//	engine, err := endian.Parse("big")
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine values are the immutable binary.LittleEndian and
// binary.BigEndian singletons, so they can be compared with ==.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native returns the engine matching the host's byte order.
func Native() EndianEngine {
	// 0x0100 puts 0x01 at the lowest address only on big-endian hosts.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNative reports whether engine matches the host byte order.
func IsNative(engine EndianEngine) bool {
	return engine == Native()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Name returns "little" or "big" for the given engine.
func Name(engine EndianEngine) string {
	switch engine {
	case binary.LittleEndian:
		return "little"
	case binary.BigEndian:
		return "big"
	default:
		return "unknown"
	}
}

// Parse resolves an engine from a name. It accepts "little", "big" and the
// short forms "le" and "be", case-insensitively.
func Parse(name string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "little", "le", "little-endian", "littleendian":
		return binary.LittleEndian, nil
	case "big", "be", "big-endian", "bigendian":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", name)
	}
}
