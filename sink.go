package md2doc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

// Sink receives a finished artifact: it saves, streams or uploads the
// payload behind h. The handle is only valid until Accept returns.
type Sink interface {
	Accept(ctx context.Context, h *Handle) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, h *Handle) error

// Accept calls f(ctx, h).
func (f SinkFunc) Accept(ctx context.Context, h *Handle) error {
	return f(ctx, h)
}

// Handle is a transient reference to an artifact payload, valid for the
// duration of one hand-off.
type Handle struct {
	mu          sync.Mutex
	filename    string
	contentType string
	data        []byte
	released    bool
}

func newHandle(art Artifact) *Handle {
	return &Handle{
		filename:    art.Filename,
		contentType: art.ContentType,
		data:        art.Data,
	}
}

// Filename returns the suggested file name.
func (h *Handle) Filename() string { return h.filename }

// ContentType returns the payload MIME type.
func (h *Handle) ContentType() string { return h.contentType }

// Size returns the payload length in bytes, or 0 once released.
func (h *Handle) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

// Bytes returns the payload. The slice must not be retained after Accept
// returns. Returns ErrHandleReleased once the hand-off is over.
func (h *Handle) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, ErrHandleReleased
	}
	return h.data, nil
}

// WriteTo writes the payload to w.
func (h *Handle) WriteTo(w io.Writer) (int64, error) {
	data, err := h.Bytes()
	if err != nil {
		return 0, err
	}
	return bytes.NewReader(data).WriteTo(w)
}

// Released reports whether the hand-off has ended.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *Handle) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	h.data = nil
}

// Deliver hands art to sink through a Handle that is released when the
// hand-off ends, whether the sink succeeds, fails or panics. An invalid
// artifact is never handed off. Sink failures are reported as
// ErrDeliveryFailed wrapping the sink's error.
func Deliver(ctx context.Context, art Artifact, sink Sink) (err error) {
	if sink == nil {
		return fmt.Errorf("%w: nil sink", ErrDeliveryFailed)
	}
	if err := art.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h := newHandle(art)
	defer h.release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: sink panicked: %v", ErrDeliveryFailed, r)
		}
	}()

	if err := sink.Accept(ctx, h); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// FileSink saves artifacts into Dir under their suggested file name. The
// file is written atomically; an empty Dir means the current directory.
type FileSink struct {
	Dir string
}

// Path returns where an artifact named filename will be written.
func (s FileSink) Path(filename string) string {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filename)
}

// Accept writes the payload to disk.
func (s FileSink) Accept(_ context.Context, h *Handle) error {
	data, err := h.Bytes()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.Path(h.Filename()), data, 0o644); err != nil {
		return fmt.Errorf("saving %s: %w", h.Filename(), err)
	}
	return nil
}

// WriterSink streams artifacts to W, for example standard output.
type WriterSink struct {
	W io.Writer
}

// Accept copies the payload to the writer.
func (s WriterSink) Accept(_ context.Context, h *Handle) error {
	if s.W == nil {
		return fmt.Errorf("writer sink: nil writer")
	}
	if _, err := h.WriteTo(s.W); err != nil {
		return fmt.Errorf("writing %s: %w", h.Filename(), err)
	}
	return nil
}
