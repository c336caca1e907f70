// Package chatlog provides the line-oriented sinks the chat core writes its
// command audit and message history to. The hosting process owns them.
package chatlog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// LineSink appends one line at a time.
type LineSink interface {
	AppendLine(line string) error
}

// LineSource replays previously appended lines in order.
type LineSource interface {
	Lines() ([]string, error)
}

// File is an append-only log file. The same file backs the public message
// history and its replay.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	return &File{path: path, f: f}, nil
}

func (l *File) AppendLine(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return os.ErrClosed
	}
	_, err := l.f.WriteString(strings.TrimRight(line, "\r\n") + "\n")
	return err
}

// Lines reads the file from the start. A missing file has no lines.
func (l *File) Lines() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Memory keeps lines in process. Used where no file is wanted.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

func (m *Memory) AppendLine(line string) error {
	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Lines() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

// Discard drops every line.
var Discard LineSink = discard{}

type discard struct{}

func (discard) AppendLine(string) error { return nil }
