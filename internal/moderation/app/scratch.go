package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// 讓 test 可以替換檔案系統操作
var (
	createDir = func(path string) error {
		return os.MkdirAll(path, 0o755)
	}

	removeFile = func(path string) error {
		return os.Remove(path)
	}

	removeDir = func(path string) error {
		return os.RemoveAll(path)
	}
)

// Scratch 單一 job 的暫存檔集合，Cleanup 之後不會留下任何檔案
type Scratch struct {
	dir   string
	mu    sync.Mutex
	paths []string
}

// NewScratch create job_{videoID}_{rand} under root
func NewScratch(root, videoID string) (*Scratch, error) {
	dir := filepath.Join(root, fmt.Sprintf("job_%s_%s", safeName(videoID), uuid.NewString()[:8]))
	if err := createDir(dir); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", dir, err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir scratch directory of the job
func (s *Scratch) Dir() string {
	return s.dir
}

// Path register name and return its full path. 先登記再寫檔
func (s *Scratch) Path(name string) string {
	p := filepath.Join(s.dir, safeName(name))
	s.mu.Lock()
	s.paths = append(s.paths, p)
	s.mu.Unlock()
	return p
}

// Paths registered so far
func (s *Scratch) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Cleanup remove every registered file and the directory itself. Safe to call twice.
func (s *Scratch) Cleanup() error {
	s.mu.Lock()
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := removeFile(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := removeDir(s.dir); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// safeName 只保留檔名安全字元
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, s)
}
