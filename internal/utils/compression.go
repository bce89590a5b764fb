package utils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Codec identifies a compression format
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZstd
	CodecXz
)

// String returns the string representation of Codec
func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gzip"
	case CodecZstd:
		return "zstd"
	case CodecXz:
		return "xz"
	default:
		return "none"
	}
}

// CodecForPath picks a codec from the file extension
func CodecForPath(path string) Codec {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return CodecGzip
	case strings.HasSuffix(path, ".zst"):
		return CodecZstd
	case strings.HasSuffix(path, ".xz"):
		return CodecXz
	default:
		return CodecNone
	}
}

// Compress compresses data with the given codec
func Compress(data []byte, codec Codec) ([]byte, error) {
	var buf bytes.Buffer

	var w io.WriteCloser
	switch codec {
	case CodecNone:
		return data, nil
	case CodecGzip:
		w = gzip.NewWriter(&buf)
	case CodecZstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		w = zw
	case CodecXz:
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		w = xw
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decompresses data with the given codec
func Decompress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone:
		return data, nil
	case CodecGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CodecZstd:
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case CodecXz:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", codec)
	}
}
