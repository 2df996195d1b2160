package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

const taskColumns = `id, title, description, priority, status,
	category_id, due_date, created_at, completed_at`

// ListTasks returns every task, soonest due first. Tasks without a due date
// sort last.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks ORDER BY due_date IS NULL, due_date, id")
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTask retrieves a single task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id model.ID) (*model.Task, error) {
	return getTask(ctx, s.db, id)
}

// CreateTask inserts a new task and returns it with its assigned ID.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now()
	}
	task.Status = model.StatusPending
	task.CompletedAt = nil
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkCategory(ctx, tx, task.CategoryID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (
			title, description, priority, status,
			category_id, due_date, created_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.Priority, task.Status,
		nullableID(task.CategoryID), nullableTime(task.DueDate),
		task.CreatedAt.UTC(), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new task id: %w", err)
	}

	created, err := getTask(ctx, tx, model.ID(id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing task: %w", err)
	}
	return created, nil
}

// UpdateTask applies patch to the task with the given ID.
func (s *SQLiteStore) UpdateTask(
	ctx context.Context,
	id model.ID,
	patch model.TaskPatch,
) (*model.Task, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	if patch.CategoryID != nil {
		if err := checkCategory(ctx, tx, *patch.CategoryID); err != nil {
			return nil, err
		}
	}

	next := patch.Apply(*current, s.now())

	var completedAt any
	if next.CompletedAt != nil {
		completedAt = next.CompletedAt.UTC()
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, priority = ?, status = ?,
			category_id = ?, due_date = ?, completed_at = ?
		WHERE id = ?`,
		next.Title, next.Description, next.Priority, next.Status,
		nullableID(next.CategoryID), nullableTime(next.DueDate), completedAt,
		int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}

	updated, err := getTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing task %s: %w", id, err)
	}
	return updated, nil
}

// DeleteTask removes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id model.ID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func getTask(ctx context.Context, q sqlx.QueryerContext, id model.ID) (*model.Task, error) {
	row := q.QueryRowxContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", int64(id))
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

func checkCategory(ctx context.Context, q sqlx.QueryerContext, id model.ID) error {
	if !id.IsSet() {
		return nil
	}
	var n int
	if err := sqlx.GetContext(ctx, q, &n, "SELECT COUNT(*) FROM categories WHERE id = ?", int64(id)); err != nil {
		return fmt.Errorf("checking category %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", id, ErrUnknownCategory)
	}
	return nil
}

// scanner is satisfied by both *sqlx.Row and *sqlx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans a task row selected with taskColumns.
func scanTask(row scanner) (model.Task, error) {
	var (
		task        model.Task
		id          int64
		categoryID  *int64
		dueDate     *time.Time
		completedAt *time.Time
	)

	err := row.Scan(
		&id, &task.Title, &task.Description, &task.Priority, &task.Status,
		&categoryID, &dueDate, &task.CreatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, err
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	task.ID = model.ID(id)
	if categoryID != nil {
		task.CategoryID = model.ID(*categoryID)
	}
	if dueDate != nil {
		task.DueDate = *dueDate
	}
	task.CompletedAt = completedAt

	return task, nil
}
