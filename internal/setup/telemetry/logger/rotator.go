// Package logger provides the file writer behind each session log.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ringBuffer keeps the most recent lines written to a log file.
type ringBuffer struct {
	lines []string
	head  int // next write position
	size  int
	seen  int // lines added since the last rotation
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{lines: make([]string, capacity)}
}

func (rb *ringBuffer) add(line string) {
	rb.lines[rb.head] = line
	rb.head = (rb.head + 1) % len(rb.lines)
	if rb.size < len(rb.lines) {
		rb.size++
	}
	rb.seen++
}

// snapshot returns the buffered lines oldest first.
func (rb *ringBuffer) snapshot() []string {
	result := make([]string, rb.size)
	start := (rb.head - rb.size + len(rb.lines)) % len(rb.lines)
	for i := range rb.size {
		result[i] = rb.lines[(start+i)%len(rb.lines)]
	}
	return result
}

// LogRotator caps a log file at roughly maxLines lines. Once twice that many
// lines have been written, the file is rewritten with only the newest maxLines.
type LogRotator struct {
	writer   io.Writer
	buffer   *ringBuffer
	filePath string
	mu       sync.Mutex
}

// NewLogRotator wraps the writer of filePath. A non-positive maxLines disables rotation.
func NewLogRotator(writer io.Writer, maxLines int, filePath string) *LogRotator {
	r := &LogRotator{
		writer:   writer,
		filePath: filePath,
	}
	if maxLines > 0 {
		r.buffer = newRingBuffer(maxLines)
	}
	return r
}

// Write implements io.Writer.
func (r *LogRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.writer.Write(p)
	if err != nil || r.buffer == nil {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		r.buffer.add(line)
		if r.buffer.seen >= 2*len(r.buffer.lines) {
			if err := r.rotate(); err != nil {
				return n, fmt.Errorf("failed to rotate log file: %w", err)
			}
			r.buffer.seen = r.buffer.size
		}
	}

	return n, nil
}

// rotate replaces the file with the buffered lines and reopens it for appending.
func (r *LogRotator) rotate() error {
	lines := r.buffer.snapshot()
	if len(lines) == 0 {
		return nil
	}

	temp, err := os.CreateTemp(filepath.Dir(r.filePath), "rotate-*.log")
	if err != nil {
		return err
	}
	tempPath := temp.Name()

	_, err = temp.WriteString(strings.Join(lines, "\n") + "\n")
	if err == nil {
		err = temp.Sync()
	}
	if closeErr := temp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if closer, ok := r.writer.(io.Closer); ok {
		_ = closer.Close()
	}

	// Windows refuses to rename over an existing file
	_ = os.Remove(r.filePath)

	if err := os.Rename(tempPath, r.filePath); err != nil {
		return err
	}

	file, err := os.OpenFile(r.filePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	r.writer = file

	return nil
}
