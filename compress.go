package memvfs

import (
	"bytes"
	"io"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4"
)

// compress wraps in using algo, for ExportCompressed. CompressNone returns
// in unchanged.
func compress(algo CompressAlgorithm, in []byte) ([]byte, error) {
	switch algo {
	case CompressNone:
		return in, nil
	case CompressSnappy:
		return snappy.Encode(nil, in), nil
	case CompressLZ4:
		buf := &bytes.Buffer{}
		w := lz4.NewWriter(buf)
		w.NoChecksum = true
		if _, err := w.Write(in); err != nil {
			return nil, wrapError(CodeIOErr, err, "lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, wrapError(CodeIOErr, err, "lz4 compress flush")
		}
		return buf.Bytes(), nil
	default:
		return nil, wrapError(CodeIOErr, nil, "unknown compression algorithm")
	}
}

// decompress reverses compress, for ImportCompressed.
func decompress(algo CompressAlgorithm, in []byte) ([]byte, error) {
	switch algo {
	case CompressNone:
		return in, nil
	case CompressSnappy:
		out, err := snappy.Decode(nil, in)
		if err != nil {
			return nil, wrapError(CodeCorrupt, err, "snappy decompress")
		}
		return out, nil
	case CompressLZ4:
		buf := &bytes.Buffer{}
		r := lz4.NewReader(bytes.NewReader(in))
		if _, err := io.Copy(buf, r); err != nil {
			return nil, wrapError(CodeCorrupt, err, "lz4 decompress")
		}
		return buf.Bytes(), nil
	default:
		return nil, wrapError(CodeIOErr, nil, "unknown compression algorithm")
	}
}
