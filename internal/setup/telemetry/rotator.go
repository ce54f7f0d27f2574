package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// lineBuffer keeps the most recent lines written to a log file.
type lineBuffer struct {
	lines     []string
	head      int // next write position
	size      int
	totalSeen int
}

func newLineBuffer(capacity int) *lineBuffer {
	return &lineBuffer{lines: make([]string, max(capacity, 1))}
}

func (b *lineBuffer) add(line string) {
	b.lines[b.head] = line
	b.head = (b.head + 1) % len(b.lines)
	if b.size < len(b.lines) {
		b.size++
	}
	b.totalSeen++
}

// snapshot returns the buffered lines oldest first.
func (b *lineBuffer) snapshot() []string {
	result := make([]string, b.size)
	start := (b.head - b.size + len(b.lines)) % len(b.lines)
	for i := range b.size {
		result[i] = b.lines[(start+i)%len(b.lines)]
	}
	return result
}

// LogRotator is an io.Writer that caps a log file at roughly maxLines lines.
// Once twice the capacity has been written the file is rewritten with only the
// most recent lines.
type LogRotator struct {
	writer   io.Writer
	buffer   *lineBuffer
	filePath string
	mu       sync.Mutex
}

// NewLogRotator creates a new LogRotator writing to the already opened file at filePath.
func NewLogRotator(writer io.Writer, maxLines int, filePath string) *LogRotator {
	return &LogRotator{
		writer:   writer,
		buffer:   newLineBuffer(maxLines),
		filePath: filePath,
	}
}

// Write implements io.Writer.
func (w *LogRotator) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.writer.Write(p)
	if err != nil {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		w.buffer.add(line)
		if w.buffer.totalSeen >= len(w.buffer.lines)*2 {
			if err := w.rotate(); err != nil {
				return n, fmt.Errorf("failed to rotate log file: %w", err)
			}
			w.buffer.totalSeen = w.buffer.size
		}
	}

	return n, nil
}

// rotate replaces the file with the buffered lines.
func (w *LogRotator) rotate() error {
	lines := w.buffer.snapshot()
	if len(lines) == 0 {
		return nil
	}

	temp, err := os.CreateTemp(filepath.Dir(w.filePath), "temp-log-")
	if err != nil {
		return err
	}
	tempPath := temp.Name()

	if _, err := temp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return err
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if closer, ok := w.writer.(io.Closer); ok {
		closer.Close()
	}

	if err := os.Rename(tempPath, w.filePath); err != nil {
		return err
	}

	file, err := os.OpenFile(w.filePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.writer = file

	return nil
}
