// Package seed imports categories, tasks and templates from a JSON document.
//
// Documents are validated against an embedded JSON Schema before anything is
// written. Due dates may be absolute (YYYY-MM-DD or RFC 3339) or relative to
// the import day ("+3d", "-1d").
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/service"
)

//go:embed schema.json
var schemaJSON string

//go:embed demo.json
var demoJSON []byte

const schemaURL = "taskboard://seed.schema.json"

// Document is the on-disk seed format.
type Document struct {
	Categories []CategoryEntry `json:"categories"`
	Tasks      []TaskEntry     `json:"tasks"`
	Templates  []TemplateEntry `json:"templates"`
}

// CategoryEntry is a category in a seed file. ID is local to the file and is
// only used to resolve task and template references.
type CategoryEntry struct {
	ID    model.ID `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`
}

// TaskEntry is a task in a seed file.
type TaskEntry struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	Status      model.Status   `json:"status"`
	CategoryID  model.ID       `json:"categoryId"`
	DueDate     string         `json:"dueDate"`
}

// TemplateEntry is a template in a seed file.
type TemplateEntry struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	TaskData    TemplateData `json:"taskData"`
}

// TemplateData mirrors model.TaskData with a textual due date.
type TemplateData struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	CategoryID  model.ID       `json:"categoryId"`
	DueDate     string         `json:"dueDate"`
}

// SchemaError is a single schema violation.
type SchemaError struct {
	Path    string
	Message string
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Problems []SchemaError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Path, p.Message))
	}
	return "invalid seed document: " + strings.Join(parts, "; ")
}

// Services are the write paths Apply goes through.
type Services struct {
	Categories *service.CategoryService
	Tasks      *service.TaskService
	Templates  *service.TemplateService
}

// Summary reports what Apply wrote.
type Summary struct {
	Categories int
	Tasks      int
	Completed  int
	Templates  int
	Failures   []string
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Load reads and validates a seed document.
func Load(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance interface{}
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, mapSchemaError(err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &doc, nil
}

// Demo returns the bundled demo dataset.
func Demo() (*Document, error) {
	return Load(bytes.NewReader(demoJSON))
}

func mapSchemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate seed: %w", err)
	}
	out := &ValidationError{}
	collectSchemaErrors(ve, out)
	if len(out.Problems) == 0 {
		out.Problems = append(out.Problems, SchemaError{Path: "/", Message: ve.Message})
	}
	return out
}

func collectSchemaErrors(err *jsonschema.ValidationError, out *ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		path := err.InstanceLocation
		if path == "" {
			path = "/"
		}
		out.Problems = append(out.Problems, SchemaError{Path: path, Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}

// ParseDueDate accepts YYYY-MM-DD, RFC 3339, or a day offset such as "+2d".
// An empty string yields the zero time.
func ParseDueDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if (s[0] == '+' || s[0] == '-') && strings.HasSuffix(s, "d") {
		digits := s[1 : len(s)-1]
		if digits == "" || digits[0] < '0' || digits[0] > '9' {
			return time.Time{}, fmt.Errorf("invalid day offset %q", s)
		}
		days, err := strconv.Atoi(digits)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day offset %q", s)
		}
		if s[0] == '-' {
			days = -days
		}
		return model.StartOfDay(now).AddDate(0, 0, days), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", s)
	}
	return t, nil
}

// Apply writes doc through svc. Category references are resolved against
// the IDs assigned on creation; unresolved references are dropped. Individual
// failures are recorded in the summary and do not stop the import.
func Apply(ctx context.Context, doc *Document, svc Services, now time.Time) Summary {
	var sum Summary
	ids := make(map[model.ID]model.ID, len(doc.Categories))

	for _, entry := range doc.Categories {
		created := svc.Categories.Create(ctx, model.Category{Name: entry.Name, Color: entry.Color})
		if created == nil {
			sum.Failures = append(sum.Failures, fmt.Sprintf("category %q", entry.Name))
			continue
		}
		if entry.ID.IsSet() {
			ids[entry.ID] = created.ID
		}
		sum.Categories++
	}

	resolve := func(id model.ID) model.ID {
		if !id.IsSet() {
			return model.NoID
		}
		return ids[id]
	}

	for _, entry := range doc.Tasks {
		due, err := ParseDueDate(entry.DueDate, now)
		if err != nil {
			sum.Failures = append(sum.Failures, fmt.Sprintf("task %q: %v", entry.Title, err))
			continue
		}
		data := model.TaskData{
			Title:       entry.Title,
			Description: entry.Description,
			Priority:    entry.Priority,
			CategoryID:  resolve(entry.CategoryID),
		}
		if !due.IsZero() {
			data.DueDate = &due
		}
		created := svc.Tasks.Create(ctx, data)
		if created == nil {
			sum.Failures = append(sum.Failures, fmt.Sprintf("task %q", entry.Title))
			continue
		}
		sum.Tasks++
		if entry.Status == model.StatusCompleted {
			if svc.Tasks.MarkComplete(ctx, created.ID) == nil {
				sum.Failures = append(sum.Failures, fmt.Sprintf("complete task %q", entry.Title))
				continue
			}
			sum.Completed++
		}
	}

	for _, entry := range doc.Templates {
		due, err := ParseDueDate(entry.TaskData.DueDate, now)
		if err != nil {
			sum.Failures = append(sum.Failures, fmt.Sprintf("template %q: %v", entry.Name, err))
			continue
		}
		data := model.TaskData{
			Title:       entry.TaskData.Title,
			Description: entry.TaskData.Description,
			Priority:    entry.TaskData.Priority,
			CategoryID:  resolve(entry.TaskData.CategoryID),
		}
		if !due.IsZero() {
			data.DueDate = &due
		}
		created := svc.Templates.Create(ctx, model.Template{
			Name:        entry.Name,
			Description: entry.Description,
			TaskData:    data,
		})
		if created == nil {
			sum.Failures = append(sum.Failures, fmt.Sprintf("template %q", entry.Name))
			continue
		}
		sum.Templates++
	}

	return sum
}
