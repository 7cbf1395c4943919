package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pzstd-dev/pzstd"
)

// Demonstrate writing a compressed zstd frame.
func compress(out io.Writer) error {

	cmp, err := pzstd.NewCompressor(pzstd.WithLevel(3))
	if err != nil {
		return err
	}

	// Always close to release the native context; defer is added here
	// in case of error.  A double close is noop and will cause no issues.
	defer cmp.Close()

	wr, err := cmp.Writer(out)
	if err != nil {
		return err
	}
	defer wr.Close()

	// Use the io.Writer interface
	if _, err := wr.Write([]byte("How now")); err != nil {
		return err
	}

	// Force a flush; data written so far becomes decodable
	if err := wr.Flush(pzstd.FlushBlock); err != nil {
		return err
	}

	// Use the io.ReaderFrom interface
	rd := bytes.NewReader([]byte(" brown cow"))
	if _, err := wr.ReadFrom(rd); err != nil {
		return err
	}

	// Close() ends the frame and releases the Compressor for the next
	// operation.
	return wr.Close()
}

// Demonstrate decompressing a zstd frame.
func decompress(src io.Reader, dst io.Writer) error {

	dec, err := pzstd.NewDecompressor()
	if err != nil {
		return err
	}
	defer dec.Close()

	// CopyStream pumps the whole stream through the native context.
	if _, _, err := dec.CopyStream(dst, src); err != nil {
		return err
	}

	return dec.Close()
}

func main() {

	var (
		compressedData bytes.Buffer
		decompressData bytes.Buffer
	)

	// Run example compress routine
	if err := compress(&compressedData); err != nil {
		panic(err)
	}

	// Run example decompress routine
	if err := decompress(&compressedData, &decompressData); err != nil {
		panic(err)
	}

	// Output the result
	fmt.Println(decompressData.String())
}
