package pagecache

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

// CompressionCodec represents a value compression algorithm.
type CompressionCodec string

const (
	CompressionNone CompressionCodec = "none"
	CompressionGzip CompressionCodec = "gzip"
)

var (
	compressMagic = []byte("PGZ1")

	ErrValueTooLarge      = errors.New("pagecache: page exceeds max size")
	ErrUnsupportedCodec   = errors.New("pagecache: unsupported compression codec")
	ErrCorruptCompression = errors.New("pagecache: corrupt compressed payload")
)

func encodeValue(codec CompressionCodec, value []byte) ([]byte, error) {
	switch codec {
	case CompressionNone, "":
		return value, nil
	case CompressionGzip:
		var buf bytes.Buffer
		buf.Write(compressMagic)
		zw, _ := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
		if _, err := zw.Write(value); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrUnsupportedCodec
	}
}

// decodeValue passes through values that were written without compression so
// a store can switch codecs without being flushed.
func decodeValue(in []byte) ([]byte, error) {
	if len(in) < len(compressMagic) || !bytes.Equal(in[:len(compressMagic)], compressMagic) {
		return in, nil
	}
	gr, err := gzip.NewReader(bytes.NewReader(in[len(compressMagic):]))
	if err != nil {
		return nil, ErrCorruptCompression
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, ErrCorruptCompression
	}
	return out, nil
}
