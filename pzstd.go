// Package pzstd provides Zstandard compression and decompression backed
// by libzstd, with one-shot helpers, io.Reader/io.Writer streaming
// sessions, chunk iterators, dictionary training and batch operations
// over segmented buffers.
//
// A Compressor or Decompressor holds one native context and supports a
// single operation at a time; concurrent use of the same context fails
// with ErrState.  For parallelism, create one context per goroutine or
// use MultiCompress/MultiDecompress.
package pzstd

import (
	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/strm"
)

// DefaultLevel mirrors ZSTD_CLEVEL_DEFAULT.
const DefaultLevel = 3

// FlushMode selects how much encoder state Flush pushes downstream.
type FlushMode = strm.FlushMode

const (
	FlushBlock = strm.FlushBlock
	FlushFrame = strm.FlushFrame
)

// MinLevel returns the smallest (fastest) supported compression level.
func MinLevel() int {
	return czstd.MinLevel()
}

// MaxLevel returns the largest (strongest) supported compression level.
func MaxLevel() int {
	return czstd.MaxLevel()
}

// CompressBound returns the worst-case compressed size for srcSize
// input bytes.
func CompressBound(srcSize int) int {
	return czstd.CompressBound(srcSize)
}

// Version returns the libzstd version string, e.g. "1.5.6".
func Version() string {
	return czstd.VersionString()
}

// VersionNumber returns the libzstd version as MMmmpp.
func VersionNumber() uint {
	return czstd.VersionNumber()
}

// RecommendedCInSize returns the input staging size libzstd recommends
// for compression streams.
func RecommendedCInSize() int {
	return czstd.CStreamInSize()
}

// RecommendedCOutSize returns the output staging size libzstd
// recommends for compression streams.
func RecommendedCOutSize() int {
	return czstd.CStreamOutSize()
}

// RecommendedDInSize returns the input staging size libzstd recommends
// for decompression streams.
func RecommendedDInSize() int {
	return czstd.DStreamInSize()
}

// RecommendedDOutSize returns the output staging size libzstd
// recommends for decompression streams.
func RecommendedDOutSize() int {
	return czstd.DStreamOutSize()
}

// Compress appends the compressed form of 'src' to 'dst' using a
// throwaway context.  Reuse a Compressor on hot paths.
func Compress(dst, src []byte, opts ...OptT) ([]byte, error) {
	c, err := NewCompressor(opts...)
	if err != nil {
		return dst, err
	}
	defer c.Close()
	return c.Compress(dst, src)
}

// Decompress appends the decompressed form of 'src' to 'dst' using a
// throwaway context.  Reuse a Decompressor on hot paths.
func Decompress(dst, src []byte, opts ...OptT) ([]byte, error) {
	d, err := NewDecompressor(opts...)
	if err != nil {
		return dst, err
	}
	defer d.Close()
	return d.Decompress(dst, src)
}
