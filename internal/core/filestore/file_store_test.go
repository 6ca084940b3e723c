package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "sermons.json"))
	require.NoError(t, err)
	return s
}

func sermon(id, title string) *models.Sermon {
	return &models.Sermon{
		ID:         id,
		Title:      title,
		SourceType: models.SourceYouTube,
		URL:        "https://youtu.be/" + id,
		Tags:       models.TagList{},
		Status:     models.StatusTranscribing,
		CreatedAt:  time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("  ")
	assert.Error(t, err)
}

func TestListSermons_MissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	got, err := s.ListSermons(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInit_WritesEmptyArray(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Init())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, s.CreateSermon(context.Background(), sermon("1", "Faith")))
	require.NoError(t, s.Init(), "init keeps an existing file")
	got, err := s.ListSermons(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCreateAndListKeepInsertionOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSermon(ctx, sermon("1", "Faith")))
	require.NoError(t, s.CreateSermon(ctx, sermon("2", "Honour")))

	got, err := s.ListSermons(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Faith", got[0].Title)
	assert.Equal(t, "Honour", got[1].Title)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": \"1\"", "file stays pretty-printed")
}

func TestListSermons_CorruptFileReadsEmptyButIsNotOverwritten(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	got, err := s.ListSermons(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	err = s.CreateSermon(context.Background(), sermon("1", "Faith"))
	assert.ErrorIs(t, err, core.ErrCorruptStore)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestGetSermonByID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSermon(ctx, sermon("1", "Faith")))

	got, err := s.GetSermonByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Faith", got.Title)

	_, err = s.GetSermonByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrSermonNotFound)
}

func TestUpdateSermonStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSermon(ctx, sermon("1", "Faith")))

	got, err := s.UpdateSermonStatus(ctx, "1", models.StatusTranscribing, models.StatusReadyForReview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForReview, got.Status)

	_, err = s.UpdateSermonStatus(ctx, "1", models.StatusTranscribing, models.StatusError)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = s.UpdateSermonStatus(ctx, "nope", models.StatusTranscribing, models.StatusError)
	assert.ErrorIs(t, err, core.ErrSermonNotFound)

	stored, err := s.GetSermonByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForReview, stored.Status)
}

func TestCreateSermon_ConcurrentWritersLoseNothing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.CreateSermon(ctx, sermon(fmt.Sprint(i), fmt.Sprintf("Sermon %d", i))))
		}(i)
	}
	wg.Wait()

	got, err := s.ListSermons(ctx)
	require.NoError(t, err)
	assert.Len(t, got, writers)

	seen := map[string]bool{}
	for _, sm := range got {
		seen[sm.ID] = true
	}
	assert.Len(t, seen, writers)
}

// Two stores over one path stand in for `sermons add` racing a running server.
func TestCreateSermon_SeparateStoresOnOneFileLoseNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sermons.json")
	server, err := NewFileStore(path)
	require.NoError(t, err)
	cli, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	const perStore = 50
	var wg sync.WaitGroup
	for i, s := range []*FileStore{server, cli} {
		for j := 0; j < perStore; j++ {
			wg.Add(1)
			go func(s *FileStore, id string) {
				defer wg.Done()
				assert.NoError(t, s.CreateSermon(ctx, sermon(id, "Sermon "+id)))
			}(s, fmt.Sprintf("%d-%d", i, j))
		}
	}
	wg.Wait()

	got, err := server.ListSermons(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2*perStore)

	_, err = os.Stat(path + ".lock")
	assert.NoError(t, err)
}

func TestCreateSermon_WaitsForHeldLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sermons.json")
	holder, err := NewFileStore(path)
	require.NoError(t, err)
	waiter, err := NewFileStore(path)
	require.NoError(t, err)

	release, err := holder.acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = waiter.CreateSermon(ctx, sermon("late", "Late"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	require.NoError(t, waiter.CreateSermon(context.Background(), sermon("late", "Late")))
	got, err := waiter.ListSermons(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
