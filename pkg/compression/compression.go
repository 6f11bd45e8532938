// Package compression decodes HTTP response bodies according to their
// Content-Encoding header.
package compression

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// Encoding represents a supported content coding.
type Encoding int

const (
	None Encoding = iota
	Gzip
	Deflate
	Brotli
	Zstd
)

// Detect maps a Content-Encoding header value to an Encoding.
// Supports: gzip, x-gzip, deflate, br, brotli, zstd, identity.
func Detect(contentEncoding string) Encoding {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		return Gzip
	case "deflate", "x-deflate":
		return Deflate
	case "br", "brotli":
		return Brotli
	case "zstd", "zstandard":
		return Zstd
	default:
		return None
	}
}

// AcceptEncoding returns the Accept-Encoding value advertising every
// coding Decompress can handle.
func AcceptEncoding() string {
	return "gzip, deflate, br, zstd"
}

// Decompress decodes data with the given encoding. None returns the data
// unchanged.
func Decompress(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case Deflate:
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		return io.ReadAll(r)
	case Brotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	case Zstd:
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return data, nil
	}
}
