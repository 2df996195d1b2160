package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskboard/internal/model"
)

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := s.db.SelectContext(ctx, &categories,
		"SELECT id, name, color, task_count FROM categories ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a single category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id model.ID) (*model.Category, error) {
	return getCategory(ctx, s.db, id)
}

// CreateCategory inserts a new category. An empty color gets the default.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c model.Category) (*model.Category, error) {
	if c.Color == "" {
		c.Color = model.DefaultCategoryColor
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, color, task_count) VALUES (?, ?, ?)",
		c.Name, c.Color, c.TaskCount,
	)
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new category id: %w", err)
	}
	c.ID = model.ID(id)
	return &c, nil
}

// UpdateCategory applies patch to the category with the given ID.
func (s *SQLiteStore) UpdateCategory(
	ctx context.Context,
	id model.ID,
	patch model.CategoryPatch,
) (*model.Category, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getCategory(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	next := patch.Apply(*current)
	_, err = tx.ExecContext(ctx,
		"UPDATE categories SET name = ?, color = ?, task_count = ? WHERE id = ?",
		next.Name, next.Color, next.TaskCount, int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("updating category %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing category %s: %w", id, err)
	}
	return &next, nil
}

// DeleteCategory removes a category. Tasks referencing it have their
// category cleared by the foreign key.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id model.ID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

func getCategory(ctx context.Context, q sqlx.QueryerContext, id model.ID) (*model.Category, error) {
	var c model.Category
	err := sqlx.GetContext(ctx, q, &c,
		"SELECT id, name, color, task_count FROM categories WHERE id = ?", int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return &c, nil
}
