package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// TemplatesKey is the KV key holding the serialized template collection.
const TemplatesKey = "task_templates"

// KVTemplateStore implements TemplateBackend by storing the whole template
// collection as one JSON array under TemplatesKey. Every write rewrites the
// full collection.
type KVTemplateStore struct {
	mu  sync.Mutex
	kv  KV
	now func() time.Time
}

// NewKVTemplateStore creates a template store over kv.
func NewKVTemplateStore(kv KV) *KVTemplateStore {
	return &KVTemplateStore{kv: kv, now: time.Now}
}

// ListTemplates returns every stored template in insertion order.
func (s *KVTemplateStore) ListTemplates(ctx context.Context) ([]model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// GetTemplate retrieves a template by ID.
func (s *KVTemplateStore) GetTemplate(ctx context.Context, id model.ID) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexTemplate(templates, id)
	if i < 0 {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	t := templates[i]
	return &t, nil
}

// CreateTemplate appends a template with identity max+1.
func (s *KVTemplateStore) CreateTemplate(ctx context.Context, t model.Template) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var maxID model.ID
	for _, existing := range templates {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	t.ID = maxID + 1
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	t.UpdatedAt = t.CreatedAt

	if err := s.save(ctx, append(templates, t)); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTemplate applies patch and bumps UpdatedAt.
func (s *KVTemplateStore) UpdateTemplate(
	ctx context.Context,
	id model.ID,
	patch model.TemplatePatch,
) (*model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexTemplate(templates, id)
	if i < 0 {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if patch.IsEmpty() {
		t := templates[i]
		return &t, nil
	}

	templates[i] = patch.Apply(templates[i], s.now())
	if err := s.save(ctx, templates); err != nil {
		return nil, err
	}
	t := templates[i]
	return &t, nil
}

// DeleteTemplate removes a template by ID.
func (s *KVTemplateStore) DeleteTemplate(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexTemplate(templates, id)
	if i < 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	templates = append(templates[:i], templates[i+1:]...)
	return s.save(ctx, templates)
}

func (s *KVTemplateStore) load(ctx context.Context) ([]model.Template, error) {
	raw, ok, err := s.kv.GetValue(ctx, TemplatesKey)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	templates := []model.Template{}
	if !ok || raw == "" {
		return templates, nil
	}
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		return nil, fmt.Errorf("decoding templates: %w", err)
	}
	return templates, nil
}

func (s *KVTemplateStore) save(ctx context.Context, templates []model.Template) error {
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("encoding templates: %w", err)
	}
	if err := s.kv.SetValue(ctx, TemplatesKey, string(data)); err != nil {
		return fmt.Errorf("saving templates: %w", err)
	}
	return nil
}

func indexTemplate(templates []model.Template, id model.ID) int {
	for i, t := range templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// GetValue reads a value.
func (m *MemoryKV) GetValue(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// SetValue writes a value.
func (m *MemoryKV) SetValue(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
