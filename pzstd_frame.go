package pzstd

import (
	"github.com/pzstd-dev/pzstd/internal/pkg/czstd"
	"github.com/pzstd-dev/pzstd/internal/pkg/zerr"
)

// FrameParams describes a frame header.
type FrameParams struct {
	ContentSize    uint64 // valid when HasContentSize
	HasContentSize bool
	WindowSize     uint64
	DictID         uint32 // 0 when absent
	HasChecksum    bool
}

// GetFrameParams parses the header of the frame starting at src[0].
// Fails with ErrFrame on malformed or truncated headers.
func GetFrameParams(src []byte) (FrameParams, error) {
	hdr, err := czstd.FrameHeader(src)
	if err != nil {
		return FrameParams{}, zerr.Wrap(zerr.ErrFrame, err)
	}

	fp := FrameParams{
		WindowSize:  hdr.WindowSize,
		DictID:      hdr.DictID,
		HasChecksum: hdr.Checksum,
	}
	if hdr.ContentSize != czstd.ContentSizeUnknown {
		fp.ContentSize = hdr.ContentSize
		fp.HasContentSize = true
	}
	return fp, nil
}

// FrameContentSize returns the decompressed size recorded in the frame
// header at src[0].  'known' is false when the header omits it.
func FrameContentSize(src []byte) (size uint64, known bool, err error) {
	switch v := czstd.GetFrameContentSize(src); v {
	case czstd.ContentSizeError:
		return 0, false, zerr.Wrapf(zerr.ErrFrame, "invalid frame header")
	case czstd.ContentSizeUnknown:
		return 0, false, nil
	default:
		return v, true, nil
	}
}

// FrameHeaderSize returns the byte length of the frame header at
// src[0].
func FrameHeaderSize(src []byte) (int, error) {
	n, err := czstd.FrameHeaderSize(src)
	if err != nil {
		return 0, zerr.Wrap(zerr.ErrFrame, err)
	}
	return n, nil
}
