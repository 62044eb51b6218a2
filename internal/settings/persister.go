package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked writer retries the file lock
const lockRetryDelay = 50 * time.Millisecond

// Persister stores and retrieves the serialized settings document.
// Load returns nil data without error when nothing has been persisted yet.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FilePersister keeps the settings document in a single JSON file.
// Writes go through a temp file and rename under an advisory lock so two
// brat processes never interleave on the same data.json.
type FilePersister struct {
	path string
	lock *flock.Flock
}

// NewFilePersister creates a persister for the given data.json path
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the backing file path
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads the settings file
func (p *FilePersister) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return data, nil
}

// Save replaces the settings file with data
func (p *FilePersister) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	locked, err := p.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock settings: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock settings: %s", p.lock.Path())
	}
	defer func() {
		_ = p.lock.Unlock()
	}()

	tmp, err := os.CreateTemp(dir, ".data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings: %w", err)
	}

	return nil
}
