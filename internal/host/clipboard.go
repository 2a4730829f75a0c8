package host

import (
	"context"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes the clipboard as text.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, s string) error
}

// SystemClipboard uses the OS clipboard (pbcopy, xclip/xsel/wl-clipboard, or
// the Windows API).
type SystemClipboard struct{}

func (SystemClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return clipboard.ReadAll()
}

func (SystemClipboard) WriteText(ctx context.Context, s string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return clipboard.WriteAll(s)
}

// SystemClipboardSupported reports whether a clipboard utility is available.
func SystemClipboardSupported() bool {
	return !clipboard.Unsupported
}

// MemoryClipboard is an in-process clipboard for tests and headless use.
// ReadErr and WriteErr, when set, are returned instead of touching the text.
type MemoryClipboard struct {
	mu       sync.Mutex
	text     string
	writes   int
	ReadErr  error
	WriteErr error
}

// NewMemoryClipboard returns a clipboard holding text.
func NewMemoryClipboard(text string) *MemoryClipboard {
	return &MemoryClipboard{text: text}
}

func (m *MemoryClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

func (m *MemoryClipboard) WriteText(ctx context.Context, s string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = s
	m.writes++
	return nil
}

// Set replaces the text as if another program copied it.
func (m *MemoryClipboard) Set(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = s
}

// Text returns the current text.
func (m *MemoryClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many successful writes happened.
func (m *MemoryClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
