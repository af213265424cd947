package app

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MaxPendingAttachments caps how many files can wait in the buffer for the
// next outgoing message.
const MaxPendingAttachments = 5

var ErrTooManyAttachments = errors.New("attachment limit exceeded")

// EncodeFunc turns a file path into an encoded attachment. It runs off the
// UI loop; AttachmentBuffer serializes the completions.
type EncodeFunc func(path string) (FilePart, error)

// AttachmentBuffer holds encoded attachments until they are consumed into a
// message. Adds are encoded asynchronously and land in completion order, not
// submission order; callers that show the list must tolerate that.
type AttachmentBuffer struct {
	mu      sync.Mutex
	pending []FilePart

	encode EncodeFunc

	// OnChange, when set, fires after every append/remove/clear so the UI
	// can repaint. Called without the lock held.
	OnChange func()
}

func NewAttachmentBuffer(encode EncodeFunc) *AttachmentBuffer {
	if encode == nil {
		encode = EncodeFile
	}
	return &AttachmentBuffer{encode: encode}
}

// Add accepts a batch of file paths for encoding. The cap check is atomic
// over the whole batch: if current + incoming would exceed the limit, no
// file from the batch is accepted.
func (b *AttachmentBuffer) Add(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	b.mu.Lock()
	if len(b.pending)+len(paths) > MaxPendingAttachments {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d pending, %d incoming, max %d",
			ErrTooManyAttachments, len(b.pending), len(paths), MaxPendingAttachments)
	}
	b.mu.Unlock()

	for _, path := range paths {
		go func(path string) {
			part, err := b.encode(path)
			if err != nil {
				return
			}
			b.mu.Lock()
			b.pending = append(b.pending, part)
			b.mu.Unlock()
			b.notify()
		}(path)
	}
	return nil
}

// append is the synchronous entry used by tests and by callers that already
// hold an encoded part.
func (b *AttachmentBuffer) Append(part FilePart) {
	b.mu.Lock()
	b.pending = append(b.pending, part)
	b.mu.Unlock()
	b.notify()
}

func (b *AttachmentBuffer) RemoveAt(index int) {
	b.mu.Lock()
	if index < 0 || index >= len(b.pending) {
		b.mu.Unlock()
		return
	}
	b.pending = append(b.pending[:index], b.pending[index+1:]...)
	b.mu.Unlock()
	b.notify()
}

// List returns a copy of the pending attachments.
func (b *AttachmentBuffer) List() []FilePart {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FilePart, len(b.pending))
	copy(out, b.pending)
	return out
}

func (b *AttachmentBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *AttachmentBuffer) Clear() {
	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()
	b.notify()
}

// Take returns the pending attachments and empties the buffer in one step.
// Ownership of the returned parts transfers to the caller.
func (b *AttachmentBuffer) Take() []FilePart {
	b.mu.Lock()
	out := b.pending
	b.pending = nil
	b.mu.Unlock()
	b.notify()
	return out
}

func (b *AttachmentBuffer) notify() {
	if b.OnChange != nil {
		b.OnChange()
	}
}

// EncodeFile reads a file and encodes it as a data URI attachment. The mime
// type comes from the extension, falling back to content sniffing.
func EncodeFile(path string) (FilePart, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FilePart{}, errors.New("missing path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FilePart{}, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	return FilePart{
		Data:     "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
		Name:     filepath.Base(path),
	}, nil
}
