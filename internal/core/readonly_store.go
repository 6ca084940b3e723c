package core

import (
	"context"

	"github.com/markdave123-py/sermonchat/internal/models"
)

// ReadOnlyStore serves reads from the wrapped store and refuses every write
// with ErrStorageUnavailable.
type ReadOnlyStore struct {
	SermonStore
}

// ReadOnly wraps s for deployments that cannot persist writes.
func ReadOnly(s SermonStore) *ReadOnlyStore {
	return &ReadOnlyStore{SermonStore: s}
}

func (r *ReadOnlyStore) CreateSermon(context.Context, *models.Sermon) error {
	return ErrStorageUnavailable
}

func (r *ReadOnlyStore) UpdateSermonStatus(context.Context, string, models.SermonStatus, models.SermonStatus) (*models.Sermon, error) {
	return nil, ErrStorageUnavailable
}
