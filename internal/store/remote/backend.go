package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/wire"
)

// Backend implements store.Backend against the record API. Identities are
// assigned by the server.
type Backend struct {
	client *Client
}

// NewBackend wraps client.
func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (b *Backend) Close() error { return nil }

func (b *Backend) ListTasks(ctx context.Context) ([]model.Task, error) {
	return list[model.Task](ctx, b.client, wire.TableTasks)
}

func (b *Backend) GetTask(ctx context.Context, id model.ID) (*model.Task, error) {
	return get[model.Task](ctx, b.client, wire.TableTasks, id)
}

func (b *Backend) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	return write[model.Task](ctx, b.client, http.MethodPost, wire.TablePath(wire.TableTasks), task)
}

func (b *Backend) UpdateTask(ctx context.Context, id model.ID, patch model.TaskPatch) (*model.Task, error) {
	return write[model.Task](ctx, b.client, http.MethodPatch, recordPath(wire.TableTasks, id), patch)
}

func (b *Backend) DeleteTask(ctx context.Context, id model.ID) error {
	return remove(ctx, b.client, wire.TableTasks, id)
}

func (b *Backend) ListCategories(ctx context.Context) ([]model.Category, error) {
	return list[model.Category](ctx, b.client, wire.TableCategories)
}

func (b *Backend) GetCategory(ctx context.Context, id model.ID) (*model.Category, error) {
	return get[model.Category](ctx, b.client, wire.TableCategories, id)
}

func (b *Backend) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	return write[model.Category](ctx, b.client, http.MethodPost, wire.TablePath(wire.TableCategories), c)
}

func (b *Backend) UpdateCategory(ctx context.Context, id model.ID, patch model.CategoryPatch) (*model.Category, error) {
	return write[model.Category](ctx, b.client, http.MethodPatch, recordPath(wire.TableCategories, id), patch)
}

func (b *Backend) DeleteCategory(ctx context.Context, id model.ID) error {
	return remove(ctx, b.client, wire.TableCategories, id)
}

func (b *Backend) ListTemplates(ctx context.Context) ([]model.Template, error) {
	return list[model.Template](ctx, b.client, wire.TableTemplates)
}

func (b *Backend) GetTemplate(ctx context.Context, id model.ID) (*model.Template, error) {
	return get[model.Template](ctx, b.client, wire.TableTemplates, id)
}

func (b *Backend) CreateTemplate(ctx context.Context, t model.Template) (*model.Template, error) {
	return write[model.Template](ctx, b.client, http.MethodPost, wire.TablePath(wire.TableTemplates), t)
}

func (b *Backend) UpdateTemplate(ctx context.Context, id model.ID, patch model.TemplatePatch) (*model.Template, error) {
	return write[model.Template](ctx, b.client, http.MethodPatch, recordPath(wire.TableTemplates, id), patch)
}

func (b *Backend) DeleteTemplate(ctx context.Context, id model.ID) error {
	return remove(ctx, b.client, wire.TableTemplates, id)
}

func recordPath(table string, id model.ID) string {
	return fmt.Sprintf("%s/%d", wire.TablePath(table), int64(id))
}

func list[T any](ctx context.Context, c *Client, table string) ([]T, error) {
	env, err := c.do(ctx, http.MethodGet, wire.TablePath(table), nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	items := []T{}
	if len(env.Data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", table, err)
	}
	return items, nil
}

func get[T any](ctx context.Context, c *Client, table string, id model.ID) (*T, error) {
	env, err := c.do(ctx, http.MethodGet, recordPath(table, id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", table, id, err)
	}
	var item T
	if err := json.Unmarshal(env.Data, &item); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", table, id, err)
	}
	return &item, nil
}

// write sends a create or update and decodes the record from the first
// result entry.
func write[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	result, err := firstResult(env)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	var item T
	if err := json.Unmarshal(result.Data, &item); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return &item, nil
}

func remove(ctx context.Context, c *Client, table string, id model.ID) error {
	env, err := c.do(ctx, http.MethodDelete, recordPath(table, id), nil)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	if _, err := firstResult(env); err != nil {
		return fmt.Errorf("deleting %s %s: %w", table, id, err)
	}
	return nil
}

func firstResult(env *wire.Envelope) (*wire.Result, error) {
	if len(env.Results) == 0 {
		return nil, errors.New("response carried no results")
	}
	r := env.Results[0]
	if !r.Success {
		msg := r.Message
		if msg == "" {
			msg = "operation rejected"
		}
		return nil, errors.New(msg)
	}
	return &r, nil
}
