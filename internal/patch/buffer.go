// Package patch stages generated patch content in memory. A buffer is handed
// to the assembler as a read only view after it is closed, and at teardown its
// content is either persisted to its target path for debugging or a leftover
// file of a previous run is removed.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Mode defines how the buffer content is persisted.
type Mode uint8

// persistence modes.
const (
	Text Mode = iota
	Binary
)

// Origin defines which tool generated the buffer content, it selects the
// keep policy that applies at teardown.
type Origin uint8

// content origins.
const (
	OriginInserter Origin = iota
	OriginMeiMei
)

func (o Origin) String() string {
	switch o {
	case OriginInserter:
		return "inserter"
	case OriginMeiMei:
		return "meimei"
	default:
		return fmt.Sprintf("origin(%d)", uint8(o))
	}
}

// KeepPolicy defines per origin whether staged content is persisted at
// teardown instead of being removed.
type KeepPolicy struct {
	Inserter bool
	MeiMei   bool
}

// Keep returns whether content of the given origin is persisted.
func (p KeepPolicy) Keep(origin Origin) bool {
	if origin == OriginMeiMei {
		return p.MeiMei
	}
	return p.Inserter
}

// State is the lifecycle state of a buffer.
type State uint8

// buffer states.
const (
	Open State = iota
	Closed
	Finalized
)

var (
	// ErrNotOpen is returned when writing to or closing a buffer that is not open.
	ErrNotOpen = errors.New("patch buffer is not open")
	// ErrNotClosed is returned when requesting the view of a buffer that is not closed.
	ErrNotClosed = errors.New("patch buffer is not closed")
	// ErrFinalized is returned when using a buffer after its teardown.
	ErrFinalized = errors.New("patch buffer is finalized")
)

// View is the read only content of a closed buffer as consumed by the
// assembler. Data aliases the buffer storage and must not be modified.
type View struct {
	Name string // logical file name, lower case
	Data []byte
}

// Buffer accumulates generated patch content.
type Buffer struct {
	logger *log.Logger

	path string // target path on disk
	name string
	mode Mode
	keep bool

	state State
	data  bytes.Buffer
}

// New returns an open and empty buffer for the given target path. An empty
// path creates a buffer that never touches the disk.
func New(logger *log.Logger, path string, mode Mode, origin Origin, policy KeepPolicy) *Buffer {
	return &Buffer{
		logger: logger,
		path:   path,
		name:   strings.ToLower(path),
		mode:   mode,
		keep:   policy.Keep(origin),
	}
}

// Path returns the target path of the buffer.
func (b *Buffer) Path() string {
	return b.path
}

// State returns the lifecycle state of the buffer.
func (b *Buffer) State() State {
	return b.state
}

// Len returns the number of bytes appended since the last clear.
func (b *Buffer) Len() int {
	return b.data.Len()
}

// Write appends data to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.state != Open {
		return 0, ErrNotOpen
	}
	return b.data.Write(p)
}

// Printf appends formatted text to the buffer.
func (b *Buffer) Printf(format string, args ...any) error {
	if b.state != Open {
		return ErrNotOpen
	}
	_, err := fmt.Fprintf(&b.data, format, args...)
	return err
}

// Close ends accumulation and makes the view of the content available.
func (b *Buffer) Close() error {
	if b.state != Open {
		return ErrNotOpen
	}
	b.state = Closed
	return nil
}

// View returns the content of the closed buffer. The view is computed from the
// current storage on every call.
func (b *Buffer) View() (View, error) {
	if b.state != Closed {
		return View{}, ErrNotClosed
	}
	return View{
		Name: b.name,
		Data: b.data.Bytes(),
	}, nil
}

// Clear discards the accumulated content and reopens the buffer.
func (b *Buffer) Clear() error {
	if b.state == Finalized {
		return ErrFinalized
	}
	b.data.Reset()
	b.state = Open
	return nil
}

// Teardown persists the closed content to the target path if the keep policy
// of the buffer origin is enabled, otherwise it removes an existing file at
// the target path. Failures are logged and not returned, teardown always
// finalizes the buffer.
func (b *Buffer) Teardown() {
	if b.state == Finalized {
		return
	}
	snapshot := b.snapshot()
	b.state = Finalized
	b.data = bytes.Buffer{}

	if b.path == "" {
		return
	}

	if b.keep {
		if err := b.persist(snapshot); err != nil {
			b.logger.Error("Persisting patch file failed", log.String("path", b.path), log.Err(err))
			return
		}
		b.logger.Debug("Kept patch file", log.String("path", b.path), log.Int("size", len(snapshot)))
		return
	}

	err := os.Remove(b.path)
	switch {
	case err == nil:
		b.logger.Debug("Removed leftover patch file", log.String("path", b.path))
	case !errors.Is(err, os.ErrNotExist):
		b.logger.Warn("Removing patch file failed", log.String("path", b.path), log.Err(err))
	}
}

// snapshot returns the closed content, an unclosed buffer has no content to
// persist.
func (b *Buffer) snapshot() []byte {
	if b.state != Closed {
		return nil
	}
	return b.data.Bytes()
}

func (b *Buffer) persist(data []byte) error {
	if b.mode == Text && runtime.GOOS == "windows" {
		data = bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n"))
	}

	if err := os.WriteFile(b.path, data, 0644); err != nil {
		return fmt.Errorf("writing patch file: %w", err)
	}
	return nil
}
