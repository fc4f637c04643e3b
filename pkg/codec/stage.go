package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jzebedee/bz2portable/pkg/buffer"
)

// DefaultCapacity is the channel capacity used when Options.Capacity is zero.
const DefaultCapacity = 64 << 10

// Options configures a Stage.
type Options struct {
	// Algorithm is the stream format. Empty means Bzip2.
	Algorithm Algorithm

	// Level is the compression level, 0 for the codec default. Ignored when
	// decoding.
	Level int

	// Capacity is the size in bytes of the channel between the producer
	// goroutine and the reader. Zero means DefaultCapacity.
	Capacity int

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Algorithm == "" {
		o.Algorithm = Bzip2
	}
	if o.Capacity == 0 {
		o.Capacity = DefaultCapacity
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Stats reports how many bytes a Stage consumed and produced.
type Stats struct {
	In  int64 `json:"in" yaml:"in"`
	Out int64 `json:"out" yaml:"out"`
}

// Stage runs a codec in a producer goroutine that writes its output into a
// bounded buffer.Channel. The Stage itself is the consumer side: Read drains
// the channel until the producer closes it.
//
// The producer never writes after closing the channel, and closes it exactly
// once. If it fails, Read returns the error once the bytes produced before the
// failure have been drained.
type Stage struct {
	ch     *buffer.Channel
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger

	mu  sync.Mutex
	err error
	in  int64
}

// Encode returns a Stage whose Read yields the compressed form of src.
func Encode(ctx context.Context, src io.Reader, opts Options) (*Stage, error) {
	opts = opts.withDefaults()
	if opts.Level < 0 || opts.Level > MaxLevel {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, opts.Level)
	}
	alg, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	opts.Algorithm = alg
	return start(ctx, opts, "encode", func(s *Stage, w io.Writer) error {
		zw, err := NewWriter(w, opts.Algorithm, opts.Level)
		if err != nil {
			return err
		}
		n, err := io.Copy(zw, src)
		s.addIn(n)
		if err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
}

// Decode returns a Stage whose Read yields the decompressed form of src.
func Decode(ctx context.Context, src io.Reader, opts Options) (*Stage, error) {
	opts = opts.withDefaults()
	alg, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	opts.Algorithm = alg
	return start(ctx, opts, "decode", func(s *Stage, w io.Writer) error {
		cr := &countingReader{r: src}
		zr, err := NewReader(cr, opts.Algorithm)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, zr)
		s.addIn(cr.n)
		if cerr := zr.Close(); err == nil {
			err = cerr
		}
		return err
	})
}

func start(ctx context.Context, opts Options, op string, produce func(*Stage, io.Writer) error) (*Stage, error) {
	ch, err := buffer.New(opts.Capacity)
	if err != nil {
		return nil, fmt.Errorf("codec: %s: %w", op, err)
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Stage{
		ch:     ch,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: opts.Logger.With("op", op, "algorithm", opts.Algorithm),
	}

	go func() {
		defer close(s.done)
		err := produce(s, &channelWriter{ctx: ctx, ch: ch})
		if err != nil {
			err = fmt.Errorf("codec: %s %s: %w", op, opts.Algorithm, err)
			s.setErr(err)
		}
		ch.Close()
		s.logger.Debug("stage finished", "in", s.Stats().In, "out", ch.BytesWritten(), "error", err)
	}()
	return s, nil
}

// Read reads codec output. It returns io.EOF after the producer finished
// successfully and all output was drained, or the producer's error.
func (s *Stage) Read(p []byte) (int, error) {
	n, err := s.ch.Read(p)
	if err == io.EOF {
		if perr := s.Err(); perr != nil {
			return n, perr
		}
	}
	return n, err
}

// WriteTo copies all codec output to w.
func (s *Stage) WriteTo(w io.Writer) (int64, error) {
	n, err := s.ch.WriteTo(w)
	if err != nil {
		return n, err
	}
	return n, s.Err()
}

// Close stops the producer if it is still running and waits for it to exit.
// It returns the producer's error, ignoring cancellation caused by Close.
func (s *Stage) Close() error {
	s.cancel()
	<-s.done
	if err := s.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Err returns the producer's error, if any.
func (s *Stage) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns the bytes consumed from the source and produced into the
// channel so far.
func (s *Stage) Stats() Stats {
	s.mu.Lock()
	in := s.in
	s.mu.Unlock()
	return Stats{In: in, Out: s.ch.BytesWritten()}
}

func (s *Stage) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Stage) addIn(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.in += n
}

// channelWriter adapts a Channel to io.Writer with cancellation, so a
// producer blocked on a full channel exits when the consumer goes away.
type channelWriter struct {
	ctx context.Context
	ch  *buffer.Channel
}

func (w *channelWriter) Write(p []byte) (int, error) {
	return w.ch.WriteContext(w.ctx, p)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
