package services

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/armon/circbuf"
)

// logBufferSize bounds the in-memory log capture. At typical line
// lengths this holds a few thousand recent lines.
const logBufferSize = 256 * 1024

// LogBuffer keeps the tail of the process log in a fixed byte ring so
// /api/logs can serve recent lines without any log files. Oldest
// output falls off the front as new output arrives.
type LogBuffer struct {
	mu  sync.Mutex
	buf *circbuf.Buffer
}

// NewLogBuffer returns an empty buffer.
func NewLogBuffer() *LogBuffer {
	buf, err := circbuf.NewBuffer(logBufferSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &LogBuffer{buf: buf}
}

// Write appends log output. Implements io.Writer so the buffer can sit
// behind the standard logger.
func (l *LogBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// Lines returns up to n of the most recent complete log lines, oldest
// first. When the ring has wrapped, the partial first line is dropped.
func (l *LogBuffer) Lines(n int) []string {
	l.mu.Lock()
	data := string(l.buf.Bytes())
	wrapped := l.buf.TotalWritten() > l.buf.Size()
	l.mu.Unlock()

	lines := strings.Split(data, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if wrapped && len(lines) > 0 {
		lines = lines[1:]
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Install tees the standard logger through the buffer while keeping
// stderr output for the platform's log collector.
func (l *LogBuffer) Install() {
	log.SetOutput(io.MultiWriter(os.Stderr, l))
}
