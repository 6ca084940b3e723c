package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

// SermonLibrary is the admin surface over the sermon store.
type SermonLibrary interface {
	List(ctx context.Context) ([]models.Sermon, error)
	Get(ctx context.Context, id string) (*models.Sermon, error)
	Append(ctx context.Context, draft models.SermonDraft) (*models.Sermon, error)
	Review(ctx context.Context, id string, to models.SermonStatus) (*models.Sermon, error)
}

type SermonHandler struct {
	sermons SermonLibrary
}

func NewSermonHandler(sermons SermonLibrary) *SermonHandler {
	return &SermonHandler{sermons: sermons}
}

func (h *SermonHandler) ListSermons(w http.ResponseWriter, r *http.Request) {
	sermons, err := h.sermons.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sermons)
}

func (h *SermonHandler) GetSermon(w http.ResponseWriter, r *http.Request) {
	sermon, err := h.sermons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sermon)
}

func (h *SermonHandler) CreateSermon(w http.ResponseWriter, r *http.Request) {
	var draft models.SermonDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sermon, err := h.sermons.Append(r.Context(), draft)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sermon)
}

type statusRequest struct {
	Status models.SermonStatus `json:"status"`
}

func (h *SermonHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sermon, err := h.sermons.Review(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sermon)
}

func (h *SermonHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, core.ErrSermonNotFound):
		writeError(w, http.StatusNotFound, "Sermon not found")
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, core.ErrStorageUnavailable.Error())
	default:
		slog.ErrorContext(r.Context(), "sermon store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
