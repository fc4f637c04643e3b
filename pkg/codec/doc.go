// Package codec wires stream compressors to buffer.Channel.
//
// NewWriter and NewReader adapt the supported formats (bzip2, gzip, zstd,
// lz4) to io.WriteCloser and io.ReadCloser. Encode and Decode run a codec in
// a producer goroutine and hand back a Stage, an io.ReadCloser that reads the
// producer's output through a bounded channel:
//
//	st, err := codec.Encode(ctx, file, codec.Options{Algorithm: codec.Bzip2, Level: 9})
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//	_, err = io.Copy(dst, st)
package codec
