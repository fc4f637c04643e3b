package codec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData(n int) []byte {
	rnd := rand.New(rand.NewPCG(7, 11))
	words := []string{"alpha ", "beta ", "gamma ", "delta\n", "epsilon ", "zeta "}
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[rnd.IntN(len(words))])
	}
	return b.Bytes()[:n]
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{
		"":      Bzip2,
		"bz2":   Bzip2,
		"BZIP2": Bzip2,
		"gz":    Gzip,
		"zstd":  Zstd,
		"zst":   Zstd,
		"lz4":   LZ4,
		"none":  None,
		"raw":   None,
	}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAlgorithm("brotli")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestDetectAlgorithm(t *testing.T) {
	assert.Equal(t, Bzip2, DetectAlgorithm("data.txt.bz2"))
	assert.Equal(t, Bzip2, DetectAlgorithm("backup.TBZ2"))
	assert.Equal(t, Gzip, DetectAlgorithm("a.gz"))
	assert.Equal(t, Zstd, DetectAlgorithm("a.zst"))
	assert.Equal(t, LZ4, DetectAlgorithm("dir/a.lz4"))
	assert.Equal(t, None, DetectAlgorithm("a.txt"))

	assert.Equal(t, "data.txt", TrimExtension("data.txt.bz2", Bzip2))
	assert.Equal(t, "data.txt", TrimExtension("data.txt", Gzip))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	data := sampleData(100 << 10)
	for _, alg := range Algorithms {
		for _, level := range []int{0, 1, MaxLevel} {
			t.Run(alg.String()+"/level="+strconv.Itoa(level), func(t *testing.T) {
				var packed bytes.Buffer
				zw, err := NewWriter(&packed, alg, level)
				require.NoError(t, err)
				_, err = zw.Write(data)
				require.NoError(t, err)
				require.NoError(t, zw.Close())

				if alg != None {
					assert.Less(t, packed.Len(), len(data), "text should compress")
				}

				zr, err := NewReader(&packed, alg)
				require.NoError(t, err)
				got, err := io.ReadAll(zr)
				require.NoError(t, err)
				require.NoError(t, zr.Close())
				assert.True(t, bytes.Equal(data, got), "round trip mismatch")
			})
		}
	}
}

func TestWriterInvalidArgs(t *testing.T) {
	_, err := NewWriter(io.Discard, Bzip2, 10)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = NewWriter(io.Discard, Bzip2, -1)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = NewWriter(io.Discard, "snappy", 1)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = NewReader(strings.NewReader(""), "snappy")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestStageRoundTrip(t *testing.T) {
	ctx := context.Background()
	data := sampleData(256 << 10)
	for _, alg := range Algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			enc, err := Encode(ctx, bytes.NewReader(data), Options{Algorithm: alg, Capacity: 8})
			require.NoError(t, err)
			dec, err := Decode(ctx, enc, Options{Algorithm: alg, Capacity: 13})
			require.NoError(t, err)

			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got), "round trip mismatch")

			require.NoError(t, dec.Close())
			require.NoError(t, enc.Close())

			assert.Equal(t, int64(len(data)), enc.Stats().In)
			assert.Positive(t, dec.Stats().In)
			assert.LessOrEqual(t, dec.Stats().In, enc.Stats().Out)
			assert.Equal(t, int64(len(data)), dec.Stats().Out)
		})
	}
}

func TestStageEmptyInput(t *testing.T) {
	enc, err := Encode(context.Background(), bytes.NewReader(nil), Options{})
	require.NoError(t, err)
	packed, err := io.ReadAll(enc)
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	dec, err := Decode(context.Background(), bytes.NewReader(packed), Options{})
	require.NoError(t, err)
	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStageDecodeCorrupt(t *testing.T) {
	dec, err := Decode(context.Background(), strings.NewReader("definitely not bzip2 data"), Options{Algorithm: Bzip2})
	require.NoError(t, err)
	_, err = io.ReadAll(dec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "codec: decode bzip2")
	assert.Error(t, dec.Close())
}

type failingReader struct {
	n int
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, errors.New("disk on fire")
	}
	n := min(len(p), f.n)
	for i := range n {
		p[i] = 'x'
	}
	f.n -= n
	return n, nil
}

func TestStageSourceError(t *testing.T) {
	enc, err := Encode(context.Background(), &failingReader{n: 1000}, Options{Algorithm: Gzip})
	require.NoError(t, err)
	_, err = io.Copy(io.Discard, enc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestStageCloseEarly(t *testing.T) {
	data := sampleData(1 << 20)
	enc, err := Encode(context.Background(), bytes.NewReader(data), Options{Algorithm: None, Capacity: 16})
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(enc, buf)
	require.NoError(t, err)

	// The producer is blocked on a full channel; Close must release it.
	require.NoError(t, enc.Close())
	assert.Less(t, enc.Stats().Out, int64(len(data)))
}

func TestStageInvalidOptions(t *testing.T) {
	_, err := Encode(context.Background(), strings.NewReader(""), Options{Level: 42})
	assert.ErrorIs(t, err, ErrInvalidLevel)
	_, err = Decode(context.Background(), strings.NewReader(""), Options{Algorithm: "rar"})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	_, err = Encode(context.Background(), strings.NewReader(""), Options{Capacity: -1})
	assert.Error(t, err)
}
