// Package compress provides whole-document codecs for point-source files.
//
// Point-source files are plain text and compress well. The codecs here are
// selected by format.CompressionType, which in turn is chosen from the file
// extension:
//
//	.srf       format.CompressionNone  NoOpCompressor
//	.srf.zst   format.CompressionZstd  ZstdCompressor
//	.srf.s2    format.CompressionS2    S2Compressor
//	.srf.lz4   format.CompressionLZ4   LZ4Compressor
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(text)
//
// Each codec compresses a complete document in one call. Zstd and S2 use the
// klauspost/compress block APIs; LZ4 uses the pierrec/lz4 frame format.
//
// # Thread Safety
//
// All codecs are stateless values. Encoders and decoders are drawn from
// sync.Pool instances, so a codec may be used from many goroutines.
package compress
