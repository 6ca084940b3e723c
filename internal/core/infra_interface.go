package core

import (
	"context"

	"github.com/markdave123-py/sermonchat/internal/models"
)

// SermonStore defines the persistence operations for sermon records.
// Implementations must keep insertion order and must never drop a record
// written by a concurrent CreateSermon.
type SermonStore interface {
	CreateSermon(ctx context.Context, sermon *models.Sermon) error
	ListSermons(ctx context.Context) ([]models.Sermon, error)
	GetSermonByID(ctx context.Context, id string) (*models.Sermon, error)
	// UpdateSermonStatus moves a sermon from one status to another. It fails with
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateSermonStatus(ctx context.Context, id string, from, to models.SermonStatus) (*models.Sermon, error)

	Close() error
}
