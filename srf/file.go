package srf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/arloliu/slipstate/compress"
	"github.com/arloliu/slipstate/internal/pool"
)

// WriteFile writes points to path, compressed according to its extension.
func WriteFile(path string, version Version, points []Point) error {
	codec, err := compress.ForPath(path)
	if err != nil {
		return err
	}

	buf := pool.GetTextBuffer()
	defer pool.PutTextBuffer(buf)

	if err := Write(buf, version, points); err != nil {
		return err
	}

	data, err := codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}

	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a point-source file, decompressing it according to its extension.
func ReadFile(path string) (Version, []Point, error) {
	codec, err := compress.ForPath(path)
	if err != nil {
		return 0, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}

	data, err = codec.Decompress(data)
	if err != nil {
		return 0, nil, fmt.Errorf("decompress %s: %w", path, err)
	}

	return Read(bytes.NewReader(data))
}
