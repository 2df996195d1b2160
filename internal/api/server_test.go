package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/wire"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	return NewServer(mem, logging.Discard(), opts...), mem
}

func do(t *testing.T, s *Server, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, wire.Envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var env wire.Envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeResult[T any](t *testing.T, env wire.Envelope) T {
	t.Helper()
	require.Len(t, env.Results, 1)
	require.True(t, env.Results[0].Success)
	var v T
	require.NoError(t, json.Unmarshal(env.Results[0].Data, &v))
	return v
}

func TestCreateAndListTasks(t *testing.T) {
	s, _ := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":    "Write docs",
		"priority": "high",
		"status":   "completed",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decodeResult[model.Task](t, env)
	assert.Equal(t, model.ID(1), task.ID)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w, env = do(t, s, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(env.Data, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Write docs", tasks[0].Title)
}

func TestCreateTaskValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"blank title", map[string]any{"title": "  "}, wire.CodeInvalid},
		{"bad priority", map[string]any{"title": "x", "priority": "urgent"}, wire.CodeInvalid},
		{"unknown category", map[string]any{"title": "x", "categoryId": "42"}, wire.CodeUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, s, http.MethodPost, "/api/v1/tasks", tt.body)
			assert.GreaterOrEqual(t, w.Code, 400)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestTaskStatusEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	_, env := do(t, s, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Toggle"})
	task := decodeResult[model.Task](t, env)

	w, env := do(t, s, http.MethodPost, "/api/v1/tasks/1/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	done := decodeResult[model.Task](t, env)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	_, env = do(t, s, http.MethodPost, "/api/v1/tasks/1/pending", nil)
	reopened := decodeResult[model.Task](t, env)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, task.ID, reopened.ID)
}

func TestPatchAndDeleteTask(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Old"})

	w, env := do(t, s, http.MethodPatch, "/api/v1/tasks/1", map[string]any{"title": "New"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New", decodeResult[model.Task](t, env).Title)

	w, env = do(t, s, http.MethodPatch, "/api/v1/tasks/1", map[string]any{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, wire.CodeInvalid, env.Code)

	w, _ = do(t, s, http.MethodDelete, "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, s, http.MethodDelete, "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, wire.CodeNotFound, env.Code)

	w, env = do(t, s, http.MethodGet, "/api/v1/tasks/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, wire.CodeInvalid, env.Code)
}

func TestDeleteCategoryDetachesTasks(t *testing.T) {
	s, mem := newTestServer(t)
	_, env := do(t, s, http.MethodPost, "/api/v1/categories", map[string]any{"name": "Work"})
	category := decodeResult[model.Category](t, env)
	assert.Equal(t, model.DefaultCategoryColor, category.Color)

	_, env = do(t, s, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":      "Filed",
		"categoryId": category.ID.String(),
	})
	task := decodeResult[model.Task](t, env)
	assert.Equal(t, category.ID, task.CategoryID)

	w, _ := do(t, s, http.MethodDelete, "/api/v1/categories/"+category.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := mem.GetTask(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NoID, stored.CategoryID)
}

func TestTemplateEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	w, env := do(t, s, http.MethodPost, "/api/v1/templates", map[string]any{
		"name":     "Weekly",
		"taskData": map[string]any{"title": "Review", "priority": "low"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tpl := decodeResult[model.Template](t, env)
	assert.Equal(t, "Review", tpl.TaskData.Title)

	_, env = do(t, s, http.MethodPatch, "/api/v1/templates/"+tpl.ID.String(), map[string]any{"name": "Friday"})
	assert.Equal(t, "Friday", decodeResult[model.Template](t, env).Name)

	w, env = do(t, s, http.MethodGet, "/api/v1/templates/"+tpl.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.Template
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Friday", got.Name)
}

func TestTokenRequired(t *testing.T) {
	s, _ := newTestServer(t, WithToken("s3cret"))

	w, env := do(t, s, http.MethodGet, "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, wire.CodeUnauthorized, env.Code)

	w, _ = do(t, s, http.MethodGet, "/api/v1/tasks", nil, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, s, http.MethodGet, "/api/v1/tasks", nil, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)

	// Health checks stay open.
	w, _ = do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	s, _ := newTestServer(t)
	w, _ := do(t, s, http.MethodGet, "/api/v1/categories", nil, requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
