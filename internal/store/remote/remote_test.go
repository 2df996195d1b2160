package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/store/remote"
)

func newRemote(t *testing.T, token string, opts ...api.Option) *remote.Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(api.NewServer(store.NewMemoryStore(), logging.Discard(), opts...).Handler())
	t.Cleanup(srv.Close)
	return remote.NewBackend(remote.NewClient(srv.URL, token))
}

func TestRemoteTaskLifecycle(t *testing.T) {
	b := newRemote(t, "")
	ctx := context.Background()

	work, err := b.CreateCategory(ctx, model.Category{Name: "Work"})
	require.NoError(t, err)

	created, err := b.CreateTask(ctx, model.Task{Title: "Remote task", CategoryID: work.ID, Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.True(t, created.ID.IsSet())
	assert.Equal(t, model.StatusPending, created.Status)

	done, err := b.UpdateTask(ctx, created.ID, model.TaskPatch{Status: model.Ptr(model.StatusCompleted)})
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	tasks, err := b.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Remote task", tasks[0].Title)

	require.NoError(t, b.DeleteTask(ctx, created.ID))
	assert.ErrorIs(t, b.DeleteTask(ctx, created.ID), store.ErrNotFound)

	_, err = b.GetTask(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoteUnknownCategory(t *testing.T) {
	b := newRemote(t, "")
	_, err := b.CreateTask(context.Background(), model.Task{Title: "x", CategoryID: 7})
	assert.ErrorIs(t, err, store.ErrUnknownCategory)
}

func TestRemoteTemplates(t *testing.T) {
	b := newRemote(t, "")
	ctx := context.Background()

	tpl, err := b.CreateTemplate(ctx, model.Template{Name: "Standup", TaskData: model.TaskData{Title: "Daily"}})
	require.NoError(t, err)

	renamed, err := b.UpdateTemplate(ctx, tpl.ID, model.TemplatePatch{Name: model.Ptr("Sync")})
	require.NoError(t, err)
	assert.Equal(t, "Sync", renamed.Name)

	list, err := b.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Daily", list[0].TaskData.Title)
}

func TestRemoteAuth(t *testing.T) {
	ctx := context.Background()

	_, err := newRemote(t, "wrong", api.WithToken("right")).ListTasks(ctx)
	assert.ErrorIs(t, err, remote.ErrAuth)

	_, err = newRemote(t, "right", api.WithToken("right")).ListTasks(ctx)
	assert.NoError(t, err)
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"3","name":"Home","color":"#000000"}]}`))
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", remote.WithBackoff(func(int) time.Duration { return time.Millisecond }))
	categories, err := remote.NewBackend(client).ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, model.ID(3), categories[0].ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, "", remote.WithBackoff(func(int) time.Duration { return time.Millisecond }))
	_, err := remote.NewBackend(client).ListTasks(context.Background())
	assert.ErrorContains(t, err, "max retries")
}
