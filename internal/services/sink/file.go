package sink

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// File appends blocks to a log file opened once with O_APPEND.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenFile opens (creating if needed) path for appending. Existing content is kept.
func OpenFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create output dir")
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open output file %s", path)
	}

	return &File{path: path, f: f}, nil
}

// Path returns the file location.
func (s *File) Path() string {
	return s.path
}

func (s *File) Write(block string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return errors.Errorf("output file %s is closed", s.path)
	}
	if _, err := s.f.WriteString(block); err != nil {
		return errors.Wrapf(err, "append to %s", s.path)
	}
	return nil
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
