package buffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// EOS is the value returned by Next once the channel is closed and drained.
const EOS = -1

var (
	// ErrInvalidArgument is returned for a non-positive capacity or an
	// out-of-range peek index.
	ErrInvalidArgument = errors.New("buffer: invalid argument")

	// ErrIndexOutOfRange is returned by Peek. It also matches
	// ErrInvalidArgument.
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrInvalidArgument)

	// ErrClosed is returned by writes after Close. It also matches
	// io.ErrClosedPipe.
	ErrClosed = fmt.Errorf("buffer: write to closed channel: %w", io.ErrClosedPipe)
)

// Channel is a thread-safe fixed-size circular byte buffer that decouples one
// writer from one reader. Writes block while the buffer is full and reads
// block while it is empty. Close marks the end of the stream: readers drain
// whatever is still buffered and then observe io.EOF (or EOS from Next).
//
// Closing wakes blocked readers only. A writer blocked on a full buffer waits
// for a reader to free space; Close never releases it. Callers must not close
// the channel while a Write is still in progress.
//
// Channel implements io.Reader, io.Writer, io.ByteReader, io.ByteWriter,
// io.WriterTo and io.Closer.
type Channel struct {
	notEmpty *sync.Cond
	notFull  *sync.Cond

	mu     sync.Mutex
	buf    []byte
	head   int // next write position
	tail   int // next read position
	count  int
	closed bool

	written int64
	read    int64
}

// New creates a Channel holding at most capacity bytes.
func New(capacity int) (*Channel, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be positive", ErrInvalidArgument, capacity)
	}
	c := &Channel{buf: make([]byte, capacity)}
	c.notEmpty = sync.NewCond(&c.mu)
	c.notFull = sync.NewCond(&c.mu)
	return c, nil
}

// Clear discards all buffered bytes and zeroes the storage. It does not
// reopen a closed channel. Writers blocked on a full buffer are woken.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.buf)
	c.head, c.tail, c.count = 0, 0, 0
	c.notFull.Broadcast()
}

// Close marks the end of the stream. Buffered bytes stay readable. Close is
// idempotent and always returns nil.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.notEmpty.Broadcast()
	return nil
}

// WriteByte appends b, blocking while the buffer is full.
func (c *Channel) WriteByte(b byte) error {
	return c.WriteByteContext(context.Background(), b)
}

// WriteByteContext is WriteByte with cancellation while blocked.
func (c *Channel) WriteByteContext(ctx context.Context, b byte) error {
	_, err := c.WriteContext(ctx, []byte{b})
	return err
}

// Write appends all of p, blocking as many times as needed while the buffer
// is full. It returns len(p) and a nil error unless the channel was already
// closed, in which case nothing is written and ErrClosed is returned.
func (c *Channel) Write(p []byte) (int, error) {
	return c.WriteContext(context.Background(), p)
}

// WriteContext is Write with cancellation. If ctx ends while the call is
// blocked, it returns the number of bytes already written and ctx.Err().
func (c *Channel) WriteContext(ctx context.Context, p []byte) (int, error) {
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, c.wake(c.notFull))
		defer stop()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}

	wn := 0
	for len(p) > 0 {
		for c.count == len(c.buf) {
			if err := ctx.Err(); err != nil {
				return wn, err
			}
			c.notFull.Wait()
		}

		free := len(c.buf) - c.count
		n := copy(c.buf[c.head:min(c.head+free, len(c.buf))], p)
		if n < free {
			n += copy(c.buf[:free-n], p[n:])
		}

		wasEmpty := c.count == 0
		c.head = (c.head + n) % len(c.buf)
		c.count += n
		c.written += int64(n)
		p = p[n:]
		wn += n
		if wasEmpty {
			c.notEmpty.Signal()
		}
	}
	return wn, nil
}

// Next returns the next byte as an int in [0, 255], blocking while the
// buffer is empty. It returns EOS once the channel is closed and drained.
func (c *Channel) Next() int {
	b, err := c.ReadByte()
	if err != nil {
		return EOS
	}
	return int(b)
}

// ReadByte returns the next byte, blocking while the buffer is empty. It
// returns io.EOF once the channel is closed and drained.
func (c *Channel) ReadByte() (byte, error) {
	var p [1]byte
	if _, err := c.ReadContext(context.Background(), p[:]); err != nil {
		return 0, err
	}
	return p[0], nil
}

// Read copies buffered bytes into p. It blocks while the buffer is empty and
// the channel is open, then copies what is available in one pass, which may
// be fewer than len(p) bytes. It never waits to fill p. Once the channel is
// closed and drained, Read returns 0, io.EOF.
func (c *Channel) Read(p []byte) (int, error) {
	return c.ReadContext(context.Background(), p)
}

// ReadContext is Read with cancellation. If ctx ends while the call is
// blocked, it returns 0 and ctx.Err().
func (c *Channel) ReadContext(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, c.wake(c.notEmpty))
		defer stop()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for c.count == 0 {
		if c.closed {
			return 0, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		c.notEmpty.Wait()
	}
	return c.readLocked(p), nil
}

func (c *Channel) readLocked(p []byte) int {
	avail := min(c.count, len(p))
	n := copy(p[:avail], c.buf[c.tail:min(c.tail+avail, len(c.buf))])
	if n < avail {
		n += copy(p[n:avail], c.buf[:avail-n])
	}

	wasFull := c.count == len(c.buf)
	c.tail = (c.tail + n) % len(c.buf)
	c.count -= n
	c.read += int64(n)
	if wasFull {
		c.notFull.Signal()
	}
	return n
}

// WriteTo drains the channel into w until the end of the stream.
func (c *Channel) WriteTo(w io.Writer) (int64, error) {
	chunk := make([]byte, min(len(c.buf), 32<<10))
	var total int64
	for {
		n, err := c.Read(chunk)
		if n > 0 {
			wn, werr := w.Write(chunk[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if wn != n {
				return total, io.ErrShortWrite
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Peek returns the byte at offset i from the read position without
// consuming it. Offsets are checked against the capacity, not the number of
// buffered bytes: offsets at or beyond Len return stale storage.
func (c *Channel) Peek(i int) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.buf) {
		return 0, fmt.Errorf("%w: peek %d, capacity %d", ErrIndexOutOfRange, i, len(c.buf))
	}
	return c.buf[(c.tail+i)%len(c.buf)], nil
}

// IsEmpty reports whether no bytes are buffered.
func (c *Channel) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count == 0
}

// IsFull reports whether the buffer holds Cap bytes.
func (c *Channel) IsFull() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count == len(c.buf)
}

// IsClosed reports whether Close has been called.
func (c *Channel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Len returns the number of buffered bytes.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Cap returns the fixed capacity.
func (c *Channel) Cap() int {
	return len(c.buf)
}

// BytesWritten returns the total number of bytes ever written.
func (c *Channel) BytesWritten() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// BytesRead returns the total number of bytes ever read.
func (c *Channel) BytesRead() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read
}

// wake returns a func that broadcasts cond under the lock, so a waiter
// re-checks its context.
func (c *Channel) wake(cond *sync.Cond) func() {
	return func() {
		c.mu.Lock()
		cond.Broadcast()
		c.mu.Unlock()
	}
}
