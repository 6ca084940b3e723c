package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

type fakeChat struct {
	reply      models.ChatReply
	err        error
	gotPrompt  string
	gotHistory []models.ConversationTurn
}

func (f *fakeChat) Handle(_ context.Context, prompt string, history []models.ConversationTurn) (models.ChatReply, error) {
	f.gotPrompt, f.gotHistory = prompt, history
	return f.reply, f.err
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChat_Success(t *testing.T) {
	fake := &fakeChat{reply: models.ChatReply{
		Text:    "Faith works.",
		Sources: []models.SourceReference{{Title: "Watch on YouTube", URI: "https://youtu.be/x", Type: models.SourceYouTube}},
	}}
	h := NewChatHandler(fake)

	rec := postJSON(h.Chat, `{"prompt":"What is faith?","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, "Faith works.", body["text"])
	sources := body["sources"].([]any)
	require.Len(t, sources, 1)
	assert.Equal(t, "youtube", sources[0].(map[string]any)["type"])

	assert.Equal(t, "What is faith?", fake.gotPrompt)
	require.Len(t, fake.gotHistory, 2)
	assert.Equal(t, models.RoleAssistant, fake.gotHistory[1].Role)
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		details string
	}{
		{"not configured", core.ErrNotConfigured, http.StatusInternalServerError, core.ErrNotConfigured.Error(), ""},
		{"validation", core.NewValidationError("prompt is required"), http.StatusBadRequest, "prompt is required", ""},
		{"remote", core.NewRemoteError(errors.New("quota exceeded")), http.StatusInternalServerError, "Internal Server Error", "quota exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(NewChatHandler(&fakeChat{err: tt.err}).Chat, `{"prompt":"q"}`)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.message, body["error"])
			if tt.details == "" {
				assert.NotContains(t, body, "details")
			} else {
				assert.Equal(t, tt.details, body["details"])
			}
		})
	}
}

func TestChat_MalformedBody(t *testing.T) {
	fake := &fakeChat{}
	rec := postJSON(NewChatHandler(fake).Chat, `{"prompt":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fake.gotPrompt)
}

type fakeLibrary struct {
	sermons []models.Sermon
	err     error
	draft   models.SermonDraft
}

func (f *fakeLibrary) List(context.Context) ([]models.Sermon, error) { return f.sermons, f.err }

func (f *fakeLibrary) Get(_ context.Context, id string) (*models.Sermon, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.sermons {
		if f.sermons[i].ID == id {
			return &f.sermons[i], nil
		}
	}
	return nil, core.ErrSermonNotFound
}

func (f *fakeLibrary) Append(_ context.Context, d models.SermonDraft) (*models.Sermon, error) {
	f.draft = d
	if f.err != nil {
		return nil, f.err
	}
	s := models.Sermon{ID: "new", Title: d.Title, URL: d.URL, Tags: models.NormalizeTags(d.Tags), Status: models.StatusTranscribing}
	return &s, nil
}

func (f *fakeLibrary) Review(ctx context.Context, id string, to models.SermonStatus) (*models.Sermon, error) {
	s, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Status = to
	return s, nil
}

func sermonRouter(lib SermonLibrary) http.Handler {
	h := NewSermonHandler(lib)
	r := chi.NewRouter()
	r.Get("/api/admin/sermons", h.ListSermons)
	r.Post("/api/admin/sermons", h.CreateSermon)
	r.Get("/api/admin/sermons/{id}", h.GetSermon)
	r.Patch("/api/admin/sermons/{id}/status", h.UpdateStatus)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	h.ServeHTTP(rec, req)
	return rec
}

func TestSermons_ListEmptyIsArray(t *testing.T) {
	rec := serve(sermonRouter(&fakeLibrary{sermons: []models.Sermon{}}), http.MethodGet, "/api/admin/sermons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSermons_CreateAcceptsCommaTags(t *testing.T) {
	lib := &fakeLibrary{}
	rec := serve(sermonRouter(lib), http.MethodPost, "/api/admin/sermons", `{"title":"Faith","url":"https://e/f","tags":"grace, favor"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.TagList{"grace", "favor"}, lib.draft.Tags)

	body := decode(t, rec)
	assert.Equal(t, "new", body["id"])
	assert.Equal(t, []any{"grace", "favor"}, body["tags"])
	assert.Equal(t, "transcribing", body["status"])
}

func TestSermons_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{core.NewValidationError("Title and URL are required"), http.StatusBadRequest},
		{fmt.Errorf("create sermon: %w", core.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: indexed -> error", core.ErrInvalidTransition), http.StatusConflict},
		{core.ErrSermonNotFound, http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(sermonRouter(&fakeLibrary{err: tt.err}), http.MethodPost, "/api/admin/sermons", `{"title":"T"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestSermons_ValidationMessagePassesThrough(t *testing.T) {
	lib := &fakeLibrary{err: core.NewValidationError("Title and URL are required")}
	rec := serve(sermonRouter(lib), http.MethodPost, "/api/admin/sermons", `{"title":"Faith"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title and URL are required", decode(t, rec)["error"])
}

func TestSermons_GetAndUpdateStatus(t *testing.T) {
	lib := &fakeLibrary{sermons: []models.Sermon{{ID: "s1", Title: "Faith", Status: models.StatusTranscribing}}}
	router := sermonRouter(lib)

	rec := serve(router, http.MethodGet, "/api/admin/sermons/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Faith", decode(t, rec)["title"])

	rec = serve(router, http.MethodGet, "/api/admin/sermons/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodPatch, "/api/admin/sermons/s1/status", `{"status":"ready"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode(t, rec)["status"])

	rec = serve(router, http.MethodPatch, "/api/admin/sermons/s1/status", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler("vercel", false).Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","env":"vercel","hasApiKey":false}`, rec.Body.String())
}
