// Package hash wraps xxHash64 for integrity checks on files slipstate writes
// next to the logs it reads.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum returns the xxHash64 of data.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
