// Package form holds the task create/edit form state, its validation rules
// and its template integration, independent of any rendering.
package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// DateLayout is the due date input format.
const DateLayout = "2006-01-02"

var (
	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not finished.
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrTitleRequired is returned when saving a template without a title.
	ErrTitleRequired = errors.New("a title is required to save a template")
)

// Mode distinguishes creating a task from editing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Form is the editable state of a task form. Its exported fields are bound
// directly to input widgets.
type Form struct {
	Title       string
	Description string
	Priority    model.Priority
	CategoryID  string
	DueDate     string

	mu         sync.Mutex
	mode       Mode
	editID     model.ID
	errs       Errors
	submitting bool
	now        func() time.Time
}

// NewCreate returns a blank form with medium priority.
func NewCreate() *Form {
	return &Form{
		Priority: model.PriorityMedium,
		mode:     ModeCreate,
		now:      time.Now,
	}
}

// NewEdit returns a form pre-filled from task. The due date is shown as a
// local calendar date.
func NewEdit(task model.Task) *Form {
	f := &Form{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		CategoryID:  task.CategoryID.String(),
		DueDate:     formatDate(task.DueDate),
		mode:        ModeEdit,
		editID:      task.ID,
		now:         time.Now,
	}
	if f.Priority == "" {
		f.Priority = model.PriorityMedium
	}
	return f
}

// Mode reports whether the form creates or edits.
func (f *Form) Mode() Mode { return f.mode }

// EditID is the task being edited, or model.NoID in create mode.
func (f *Form) EditID() model.ID { return f.editID }

// Errors returns the errors from the last validation.
func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Validate checks every field against now and records the result.
func (f *Form) Validate(now time.Time) Errors {
	errs := Errors{}
	if err := ValidateTitle(f.Title); err != nil {
		errs.add(err)
	}
	if err := ValidateCategory(f.CategoryID); err != nil {
		errs.add(err)
	}
	if err := DueDateValidator(now)(f.DueDate); err != nil {
		errs.add(err)
	}

	f.mu.Lock()
	f.errs = errs
	f.mu.Unlock()
	return errs
}

// TaskData converts the form fields. It assumes the form is valid; an
// unparseable due date or category is left empty.
func (f *Form) TaskData() model.TaskData {
	data := model.TaskData{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Priority:    f.Priority,
	}
	if id, err := model.ParseID(f.CategoryID); err == nil {
		data.CategoryID = id
	}
	if due, err := parseDate(f.DueDate); err == nil {
		data.DueDate = &due
	}
	return data.WithDefaults()
}

// Submit validates the form and passes the task data to fn. On success a
// create form is cleared for the next entry. Calls made while fn is still
// running fail with ErrSubmitInFlight.
func (f *Form) Submit(ctx context.Context, fn func(context.Context, model.TaskData) error) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.mu.Unlock()

	if errs := f.Validate(f.now()); len(errs) > 0 {
		return errs
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.submitting = true
	f.mu.Unlock()

	err := fn(ctx, f.TaskData())

	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()

	if err != nil {
		return fmt.Errorf("submitting task: %w", err)
	}
	if f.mode == ModeCreate {
		f.Reset()
	}
	return nil
}

// Reset clears every field back to a blank create form state.
func (f *Form) Reset() {
	f.Title = ""
	f.Description = ""
	f.Priority = model.PriorityMedium
	f.CategoryID = ""
	f.DueDate = ""
	f.mu.Lock()
	f.errs = nil
	f.mu.Unlock()
}

// SaveAsTemplate returns the current fields as template data. Only a title
// is required; fields that do not parse are left empty.
func (f *Form) SaveAsTemplate() (model.TaskData, error) {
	if strings.TrimSpace(f.Title) == "" {
		return model.TaskData{}, ErrTitleRequired
	}
	return f.TaskData(), nil
}

// LoadTemplate overwrites every field from data. Absent values clear the
// field, except priority which falls back to medium.
func (f *Form) LoadTemplate(data model.TaskData) {
	data = data.WithDefaults()
	f.Title = data.Title
	f.Description = data.Description
	f.Priority = data.Priority
	f.CategoryID = data.CategoryID.String()
	f.DueDate = ""
	if data.DueDate != nil {
		f.DueDate = formatDate(*data.DueDate)
	}
	f.mu.Lock()
	f.errs = nil
	f.mu.Unlock()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(DateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

// Field names a validated form field.
type Field string

const (
	FieldTitle    Field = "title"
	FieldCategory Field = "categoryId"
	FieldDueDate  Field = "dueDate"
)

// Kind classifies a validation failure.
type Kind string

const (
	Required    Kind = "required"
	PastDate    Kind = "pastDate"
	InvalidDate Kind = "invalidDate"
	InvalidID   Kind = "invalidId"
)

// FieldError is a single validation failure.
type FieldError struct {
	Field   Field
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Errors holds at most one failure per field.
type Errors map[Field]*FieldError

func (e Errors) add(err error) {
	var fe *FieldError
	if errors.As(err, &fe) {
		e[fe.Field] = fe
	}
}

// Error joins the messages in field order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(e))
	for _, f := range fields {
		msgs = append(msgs, e[Field(f)].Message)
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message for field, or "".
func (e Errors) Message(field Field) string {
	if fe, ok := e[field]; ok {
		return fe.Message
	}
	return ""
}

// ValidateTitle requires a non-blank title.
func ValidateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return &FieldError{Field: FieldTitle, Kind: Required, Message: "Title is required"}
	}
	return nil
}

// ValidateCategory requires a category selection that names a category ID.
func ValidateCategory(s string) error {
	if strings.TrimSpace(s) == "" {
		return &FieldError{Field: FieldCategory, Kind: Required, Message: "Category is required"}
	}
	id, err := model.ParseID(s)
	if err != nil || id == model.NoID {
		return &FieldError{Field: FieldCategory, Kind: InvalidID, Message: "Category is invalid"}
	}
	return nil
}

// DueDateValidator returns a validator that requires a YYYY-MM-DD date no
// earlier than the local day containing now.
func DueDateValidator(now time.Time) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return &FieldError{Field: FieldDueDate, Kind: Required, Message: "Due date is required"}
		}
		due, err := parseDate(s)
		if err != nil {
			return &FieldError{Field: FieldDueDate, Kind: InvalidDate, Message: "Due date must be a date (YYYY-MM-DD)"}
		}
		if due.Before(model.StartOfDay(now.In(time.Local))) {
			return &FieldError{Field: FieldDueDate, Kind: PastDate, Message: "Due date cannot be in the past"}
		}
		return nil
	}
}
