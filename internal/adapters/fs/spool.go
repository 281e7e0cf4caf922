// Package fs implements the batch spool on the local file system.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/hubstore/internal/domain"
)

const (
	batchExt  = ".json"
	failedExt = ".failed"
	tmpExt    = ".tmp"
)

// Spool implements ports.BatchSpool using a directory of JSON files.
type Spool struct {
	dir string
	now func() time.Time
}

// NewSpool creates a Spool rooted at dir.
func NewSpool(dir string) *Spool {
	return &Spool{dir: dir, now: time.Now}
}

// Dir returns the spool directory.
func (s *Spool) Dir() string {
	return s.dir
}

// IsBatchFile reports whether name is a spooled batch waiting for submission.
func IsBatchFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, batchExt) && !strings.HasPrefix(base, ".")
}

// Enqueue validates data as a batch and writes it atomically.
// Uses atomic write (write to temp file, then rename) so watchers never see partial files.
func (s *Spool) Enqueue(ctx context.Context, data []byte) (string, error) {
	if _, err := domain.DecodeBatch(data); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%020d-%s%s", s.now().UnixNano(), uuid.NewString(), batchExt)
	path := filepath.Join(s.dir, name)
	// Hidden temp name so IsBatchFile ignores it.
	tmp := filepath.Join(s.dir, "."+name+tmpExt)

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return name, nil
}

// Pending lists spooled batches in name order, which is enqueue order.
func (s *Spool) Pending(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsBatchFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and decodes a spooled batch.
func (s *Spool) Load(ctx context.Context, name string) (any, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	batch, err := domain.DecodeBatch(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return batch, nil
}

// Complete removes a delivered batch.
func (s *Spool) Complete(ctx context.Context, name string) error {
	return os.Remove(s.path(name))
}

// Fail renames a batch to <name>.failed so it is kept for inspection but not retried.
func (s *Spool) Fail(ctx context.Context, name string) error {
	return os.Rename(s.path(name), s.path(name)+failedExt)
}

func (s *Spool) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
