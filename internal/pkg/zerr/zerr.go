package zerr

import "fmt"

type constError string

func (err constError) Error() string {
	return string(err)
}

const (
	ErrClosed      constError = "zstd closed"
	ErrState       constError = "zstd invalid session state"
	ErrValidation  constError = "zstd invalid argument"
	ErrAlloc       constError = "zstd fail allocate output buffer"
	ErrCompress    constError = "zstd fail compress"
	ErrDecompress  constError = "zstd fail decompress"
	ErrUnsupported constError = "zstd unsupported operation"
	ErrSeek        constError = "zstd bad seek"
	ErrContentSize constError = "zstd content size mismatch"
	ErrFrame       constError = "zstd bad frame header"
	ErrDictTrain   constError = "zstd fail train dictionary"
	ErrSegment     constError = "zstd segment out of bounds"
)

// Wrap a native zstd error under one of the sentinels above,
// preserving the library's error text for the caller.
func Wrap(sentinel constError, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}

func Wrapf(sentinel constError, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
