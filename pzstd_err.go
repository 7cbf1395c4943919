package pzstd

import (
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// Sentinel errors.  Errors returned by this package wrap one of these;
// test with errors.Is.
var (
	// ErrClosed is returned on use of a closed context or session.
	ErrClosed error = zerr.ErrClosed

	// ErrState is returned when a context already has an operation in
	// flight.
	ErrState error = zerr.ErrState

	// ErrValidation is returned for invalid arguments or options.
	ErrValidation error = zerr.ErrValidation

	// ErrAlloc is returned when an output buffer cannot grow within its
	// configured limit.
	ErrAlloc error = zerr.ErrAlloc

	// ErrCompress wraps native compression failures.
	ErrCompress error = zerr.ErrCompress

	// ErrDecompress wraps native decompression failures, including
	// corrupt or truncated input.
	ErrDecompress error = zerr.ErrDecompress

	// ErrUnsupported is returned for operations the input cannot
	// support.
	ErrUnsupported error = zerr.ErrUnsupported

	// ErrSeek is returned for rewinding or end-relative seeks.
	ErrSeek error = zerr.ErrSeek

	// ErrContentSize is returned when decompressed output does not match
	// the size recorded in the frame header.
	ErrContentSize error = zerr.ErrContentSize

	// ErrFrame is returned for unparseable frame headers.
	ErrFrame error = zerr.ErrFrame

	// ErrDictTrain wraps dictionary training failures.
	ErrDictTrain error = zerr.ErrDictTrain

	// ErrSegment is returned for segments extending past their parent
	// buffer.
	ErrSegment error = zerr.ErrSegment
)
