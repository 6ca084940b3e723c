package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/metrics"
	"github.com/markdave123-py/sermonchat/internal/models"
)

// reviewTransitions lists the statuses each status may move to.
var reviewTransitions = map[models.SermonStatus][]models.SermonStatus{
	models.StatusTranscribing:   {models.StatusReadyForReview, models.StatusError},
	models.StatusReadyForReview: {models.StatusIndexed, models.StatusError},
	models.StatusError:          {models.StatusTranscribing},
}

// CanTransition reports whether a sermon in status from may move to to.
func CanTransition(from, to models.SermonStatus) bool {
	for _, next := range reviewTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type SermonService struct {
	store   core.SermonStore
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

func NewSermonService(store core.SermonStore, m *metrics.Metrics) *SermonService {
	return &SermonService{store: store, metrics: m, now: time.Now, newID: newSermonID}
}

// newSermonID returns a time-ordered UUIDv7, falling back to a random UUID.
func newSermonID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *SermonService) List(ctx context.Context) ([]models.Sermon, error) {
	sermons, err := s.store.ListSermons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sermons: %w", err)
	}
	if sermons == nil {
		sermons = []models.Sermon{}
	}
	return sermons, nil
}

func (s *SermonService) Get(ctx context.Context, id string) (*models.Sermon, error) {
	if strings.TrimSpace(id) == "" {
		return nil, core.ErrSermonNotFound
	}
	return s.store.GetSermonByID(ctx, id)
}

// Append validates draft and stores it as a new sermon awaiting transcription.
func (s *SermonService) Append(ctx context.Context, draft models.SermonDraft) (*models.Sermon, error) {
	title := strings.TrimSpace(draft.Title)
	url := strings.TrimSpace(draft.URL)
	if title == "" || url == "" {
		return nil, core.NewValidationError("Title and URL are required")
	}

	sourceType := draft.SourceType
	switch sourceType {
	case "":
		sourceType = models.SourceYouTube
	case models.SourceYouTube, models.SourceAudio:
	default:
		return nil, core.NewValidationError("sourceType must be %q or %q", models.SourceYouTube, models.SourceAudio)
	}

	sermon := &models.Sermon{
		ID:         s.newID(),
		Title:      title,
		Speaker:    strings.TrimSpace(draft.Speaker),
		SourceType: sourceType,
		URL:        url,
		Date:       strings.TrimSpace(draft.Date),
		Tags:       models.NormalizeTags(draft.Tags),
		Status:     models.StatusTranscribing,
		CreatedAt:  s.now().UTC(),
	}

	err := s.store.CreateSermon(ctx, sermon)
	s.metrics.CountSermonWrite("create", err)
	if err != nil {
		return nil, fmt.Errorf("create sermon: %w", err)
	}
	slog.InfoContext(ctx, "sermon ingested", "sermon_id", sermon.ID, "source_type", sermon.SourceType)
	return sermon, nil
}

// Review moves a sermon along transcribing -> ready -> indexed/error.
func (s *SermonService) Review(ctx context.Context, id string, to models.SermonStatus) (*models.Sermon, error) {
	if !to.Valid() {
		return nil, core.NewValidationError("unknown status %q", to)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, current.Status, to)
	}

	updated, err := s.store.UpdateSermonStatus(ctx, id, current.Status, to)
	s.metrics.CountSermonWrite("review", err)
	if err != nil {
		return nil, fmt.Errorf("review sermon: %w", err)
	}
	slog.InfoContext(ctx, "sermon status changed", "sermon_id", id, "from", current.Status, "to", to)
	return updated, nil
}
