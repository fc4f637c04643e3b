// Package buffer provides Channel, a fixed-capacity thread-safe byte buffer
// that connects a producer goroutine to a consumer goroutine.
//
// Writers block while the buffer is full and readers block while it is empty,
// so a Channel bounds memory and paces both sides. Close signals the end of
// the stream without discarding anything still buffered:
//
//	ch, err := buffer.New(4 << 10)
//	if err != nil {
//		return err
//	}
//
//	go func() {
//		defer ch.Close()
//		io.Copy(ch, src)
//	}()
//
//	// Reads drain the buffered bytes, then return io.EOF.
//	_, err = io.Copy(dst, ch)
//
// A Read copies whatever is available after a single wake-up and may return
// fewer bytes than requested; callers loop on partial reads as with any
// io.Reader. Next returns EOS instead of an error at the end of the stream.
//
// The baseline methods block indefinitely. ReadContext, WriteContext and
// WriteByteContext also return when their context ends.
package buffer
