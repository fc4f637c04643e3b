package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	// ErrUnknownAlgorithm is returned for an unsupported algorithm name.
	ErrUnknownAlgorithm = errors.New("codec: unknown algorithm")

	// ErrInvalidLevel is returned for a level outside 0..9.
	ErrInvalidLevel = errors.New("codec: invalid level")
)

// MaxLevel is the highest compression level. Level 0 selects the codec's
// default.
const MaxLevel = 9

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// NewWriter returns a WriteCloser that compresses into w. Close flushes the
// codec but does not close w.
func NewWriter(w io.Writer, alg Algorithm, level int) (io.WriteCloser, error) {
	if level < 0 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	switch alg {
	case None:
		return nopWriteCloser{w}, nil

	case Bzip2:
		var conf *bzip2.WriterConfig
		if level > 0 {
			conf = &bzip2.WriterConfig{Level: level}
		}
		zw, err := bzip2.NewWriter(w, conf)
		if err != nil {
			return nil, fmt.Errorf("codec: bzip2 writer: %w", err)
		}
		return zw, nil

	case Gzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("codec: gzip writer: %w", err)
		}
		return zw, nil

	case Zstd:
		speed := zstd.SpeedDefault
		if level > 0 {
			speed = zstd.EncoderLevelFromZstd(level)
		}
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(speed))
		if err != nil {
			return nil, fmt.Errorf("codec: zstd writer: %w", err)
		}
		return zw, nil

	case LZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
			return nil, fmt.Errorf("codec: lz4 writer: %w", err)
		}
		return zw, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// NewReader returns a ReadCloser that decompresses r. Close releases codec
// resources but does not close r.
func NewReader(r io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None:
		return io.NopCloser(r), nil

	case Bzip2:
		zr, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, fmt.Errorf("codec: bzip2 reader: %w", err)
		}
		return zr, nil

	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("codec: gzip reader: %w", err)
		}
		return zr, nil

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("codec: zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil

	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
