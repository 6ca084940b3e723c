package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

const lockRetryDelay = 10 * time.Millisecond

// FileStore keeps every sermon in one human-readable JSON array file.
// Writes hold an in-process mutex plus an advisory lock on "<path>.lock", so
// a CLI and a running server sharing the file never lose each other's
// records. Writes replace the file through a rename, so readers never observe
// a half-written array.
type FileStore struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore returns a store over path. The file is created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sermons file path is required")
	}
	return &FileStore{path: path, lock: flock.New(path + ".lock")}, nil
}

// acquire takes the process mutex and then the file lock. The returned
// function releases both.
func (f *FileStore) acquire(ctx context.Context) (func(), error) {
	f.mu.Lock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("create sermons dir: %w", err)
	}
	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		f.mu.Unlock()
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return nil, fmt.Errorf("lock sermons file: %w", err)
	}
	return func() {
		if err := f.lock.Unlock(); err != nil {
			slog.Warn("unlock sermons file", "path", f.lock.Path(), "error", err)
		}
		f.mu.Unlock()
	}, nil
}

// Init creates the parent directory and an empty array file when missing.
func (f *FileStore) Init() error {
	release, err := f.acquire(context.Background())
	if err != nil {
		return err
	}
	defer release()

	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sermons file: %w", err)
	}
	return f.writeAll([]models.Sermon{})
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Close() error { return nil }

// ListSermons returns all sermons in insertion order. A missing or
// unparseable file reads as an empty library.
func (f *FileStore) ListSermons(ctx context.Context) ([]models.Sermon, error) {
	sermons, err := f.readAll()
	if errors.Is(err, core.ErrCorruptStore) {
		slog.WarnContext(ctx, "sermons file unparseable, serving empty list", "path", f.path, "error", err)
		return []models.Sermon{}, nil
	}
	return sermons, err
}

func (f *FileStore) GetSermonByID(ctx context.Context, id string) (*models.Sermon, error) {
	sermons, err := f.ListSermons(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sermons {
		if sermons[i].ID == id {
			return &sermons[i], nil
		}
	}
	return nil, core.ErrSermonNotFound
}

// CreateSermon appends sermon and rewrites the file. It refuses to replace a
// file it cannot parse.
func (f *FileStore) CreateSermon(ctx context.Context, sermon *models.Sermon) error {
	if sermon == nil {
		return errors.New("nil sermon")
	}
	release, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	sermons, err := f.readAll()
	if err != nil {
		return err
	}
	sermons = append(sermons, *sermon)
	return f.writeAll(sermons)
}

func (f *FileStore) UpdateSermonStatus(ctx context.Context, id string, from, to models.SermonStatus) (*models.Sermon, error) {
	release, err := f.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	sermons, err := f.readAll()
	if err != nil {
		return nil, err
	}
	for i := range sermons {
		if sermons[i].ID != id {
			continue
		}
		if sermons[i].Status != from {
			return nil, fmt.Errorf("%w: sermon %s is %s", core.ErrInvalidTransition, id, sermons[i].Status)
		}
		sermons[i].Status = to
		if err := f.writeAll(sermons); err != nil {
			return nil, err
		}
		updated := sermons[i]
		return &updated, nil
	}
	return nil, core.ErrSermonNotFound
}

func (f *FileStore) readAll() ([]models.Sermon, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.Sermon{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sermons file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Sermon{}, nil
	}

	var sermons []models.Sermon
	if err := json.Unmarshal(data, &sermons); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrCorruptStore, f.path, err)
	}
	if sermons == nil {
		sermons = []models.Sermon{}
	}
	return sermons, nil
}

// writeAll must be called while holding the lock from acquire.
func (f *FileStore) writeAll(sermons []models.Sermon) error {
	data, err := json.MarshalIndent(sermons, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sermons: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sermons dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sermons-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace sermons file: %w", err)
	}
	return nil
}

var _ core.SermonStore = (*FileStore)(nil)
