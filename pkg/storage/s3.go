package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/jzebedee/bz2portable/pkg/buffer"
)

// DefaultUploadBuffer is the default capacity of the channel between an
// S3 writer and its upload goroutine.
const DefaultUploadBuffer = 1 << 20

// S3Client abstracts the S3 API operations used by [S3Store]. Uploads go
// through the multipart upload manager, so the client also has to serve
// the multipart calls. The [s3.Client] type satisfies this interface.
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store implements FileStore backed by Amazon S3 or any S3-compatible
// object store.
//
// All storage paths are mapped to S3 keys under an optional prefix.
type S3Store struct {
	client       S3Client
	uploader     *manager.Uploader
	bucket       string
	prefix       string
	uploadBuffer int
	logger       *slog.Logger
}

// NewS3 creates an S3-backed FileStore. Prefix is prepended to all object
// keys; pass "" for no prefix.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		logger:   slog.Default(),
	}
}

func (s *S3Store) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

// Read opens the named object for reading via GetObject.
// Returns an error wrapping os.ErrNotExist if the key does not exist.
func (s *S3Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("storage: read %s: %w", path, os.ErrNotExist)
		}
		return nil, err
	}
	return out.Body, nil
}

// Write returns a writer that streams data to S3.
//
// Written bytes pass through a bounded buffer.Channel that the upload
// manager drains in parts: a body shorter than one part becomes a single
// PutObject, anything longer a multipart upload. The length is never needed
// up front, and a slow upload applies backpressure to the writer. Close ends
// the stream and blocks until the upload finishes, returning any S3 error.
func (s *S3Store) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	size := s.uploadBuffer
	if size <= 0 {
		size = DefaultUploadBuffer
	}
	ch, err := buffer.New(size)
	if err != nil {
		return nil, err
	}

	key := s.key(path)
	writeCtx, cancel := context.WithCancel(ctx)
	w := &s3Writer{ch: ch, ctx: writeCtx, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer cancel()
		out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   ch,
		})
		w.uploadErr = err
		var uploadID string
		if out != nil {
			uploadID = out.UploadID
		}
		s.logger.Debug("s3 upload finished", "bucket", s.bucket, "key", key, "bytes", ch.BytesRead(), "upload_id", uploadID, "error", err)
	}()
	return w, nil
}

// Delete removes the named object via DeleteObject.
// S3 DeleteObject is already idempotent (returns success for missing keys).
func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	return err
}

// Exists checks whether the named object exists via HeadObject.
func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// s3Writer feeds a background upload through a buffer.Channel. When the
// upload ends early, writeCtx is cancelled so a Write blocked on a full
// channel returns instead of waiting for a reader that is gone.
type s3Writer struct {
	ch        *buffer.Channel
	ctx       context.Context
	done      chan struct{}
	uploadErr error
}

func (w *s3Writer) Write(p []byte) (int, error) {
	n, err := w.ch.WriteContext(w.ctx, p)
	if err != nil && w.ctx.Err() != nil {
		// The upload goroutine cancels writeCtx on its way out.
		<-w.done
		if w.uploadErr != nil {
			return n, w.uploadErr
		}
	}
	return n, err
}

// Close signals end of stream to the uploader, waits for the upload
// goroutine and returns the upload error, if any.
func (w *s3Writer) Close() error {
	w.ch.Close()
	<-w.done
	return w.uploadErr
}

// isS3NotFound reports whether err indicates the S3 object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func newS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Compile-time interface check.
var _ FileStore = (*S3Store)(nil)
