package compress

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/arloliu/slipstate/errs"
	"github.com/arloliu/slipstate/format"
	"github.com/stretchr/testify/require"
)

// pointSourceText builds a document shaped like a point-source file.
func pointSourceText(points int) []byte {
	var sb strings.Builder
	sb.WriteString("1.0\n")
	fmt.Fprintf(&sb, "POINTS %d\n", points)
	for i := range points {
		fmt.Fprintf(&sb, "%.6f %.6f %.6e 90.000000 60.000000 %.6e 0.000000 0.100000\n",
			-118+float64(i)*0.001, 34+float64(i)*0.002, 5.5, 1e10)
		sb.WriteString("180.000000 2.000000 12 0.000000 0 0.000000 0\n")
		for range 2 {
			sb.WriteString("  1.000000e+02  1.000000e+02  1.000000e+02  1.000000e+02  1.000000e+02  1.000000e+02\n")
		}
	}

	return []byte(sb.String())
}

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"Zstd": NewZstdCompressor(),
		"S2":   NewS2Compressor(),
		"LZ4":  NewLZ4Compressor(),
	}
}

func TestCreateCodec(t *testing.T) {
	testCases := []struct {
		ct       format.CompressionType
		expected Codec
	}{
		{format.CompressionNone, NoOpCompressor{}},
		{format.CompressionZstd, ZstdCompressor{}},
		{format.CompressionS2, S2Compressor{}},
		{format.CompressionLZ4, LZ4Compressor{}},
	}

	for _, tc := range testCases {
		t.Run(tc.ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(tc.ct, "srf")
			require.NoError(t, err)
			require.IsType(t, tc.expected, codec)

			shared, err := GetCodec(tc.ct)
			require.NoError(t, err)
			require.IsType(t, tc.expected, shared)
		})
	}

	_, err := CreateCodec(format.CompressionType(0x7f), "srf")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	require.Contains(t, err.Error(), "srf")

	_, err = GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestForPath(t *testing.T) {
	tests := map[string]Codec{
		"event.srf":          NoOpCompressor{},
		"event":              NoOpCompressor{},
		"out/event.srf.zst":  ZstdCompressor{},
		"out/event.srf.zstd": ZstdCompressor{},
		"event.srf.s2":       S2Compressor{},
		"event.srf.lz4":      LZ4Compressor{},
	}

	for path, expected := range tests {
		codec, err := ForPath(path)
		require.NoError(t, err)
		require.IsType(t, expected, codec, path)
	}
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)

			out, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"tiny":     []byte("1.0\nPOINTS 0\n"),
		"small":    pointSourceText(3),
		"large":    pointSourceText(5000),
		"one byte": {'x'},
	}

	for name, codec := range getAllCodecs() {
		for pname, payload := range payloads {
			t.Run(name+"/"+pname, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				out, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, payload, out)
			})
		}
	}
}

func TestCodecs_CompressPointSourceText(t *testing.T) {
	payload := pointSourceText(2000)

	for name, codec := range getAllCodecs() {
		if name == "NoOp" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(payload)/2)
		})
	}
}

func TestCodecs_InvalidData(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 16)

	for name, codec := range getAllCodecs() {
		if name == "NoOp" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestNoOpCompressor_SharesInput(t *testing.T) {
	codec := NewNoOpCompressor()
	data := []byte("POINTS 1")

	out, err := codec.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])

	out, err = codec.Decompress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}

func TestCodecs_ConcurrentUsage(t *testing.T) {
	payload := pointSourceText(200)

	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errCh := make(chan error, 16)
			for range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					compressed, err := codec.Compress(payload)
					if err != nil {
						errCh <- err
						return
					}
					out, err := codec.Decompress(compressed)
					if err != nil {
						errCh <- err
						return
					}
					if !bytes.Equal(payload, out) {
						errCh <- fmt.Errorf("%s: round trip mismatch", name)
					}
				}()
			}
			wg.Wait()
			close(errCh)

			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
