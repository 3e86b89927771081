package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/aliados/internal/domain"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, partnerID int64, name string) (*domain.Category, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (partner_id, name) VALUES (?, ?)
	`, partnerID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns nil, nil when the category does not exist.
func (s *CategoryStore) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c := &domain.Category{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, partner_id, name FROM categories WHERE id = ?
	`, id).Scan(&c.ID, &c.PartnerID, &c.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return c, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	return s.query(ctx, `SELECT id, partner_id, name FROM categories ORDER BY id ASC`)
}

func (s *CategoryStore) ListByPartnerID(ctx context.Context, partnerID int64) ([]*domain.Category, error) {
	return s.query(ctx, `
		SELECT id, partner_id, name FROM categories WHERE partner_id = ? ORDER BY id ASC
	`, partnerID)
}

func (s *CategoryStore) query(ctx context.Context, q string, args ...any) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.PartnerID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Update renames the category and, when its partner changes, moves the
// category's products to the new partner in the same transaction.
func (s *CategoryStore) Update(ctx context.Context, id, partnerID int64, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE categories SET partner_id = ?, name = ? WHERE id = ?
	`, partnerID, name, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err = expectRow(result, "category"); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE products SET partner_id = ? WHERE category_id = ?
	`, partnerID, id); err != nil {
		return fmt.Errorf("failed to move category products: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category update: %w", err)
	}
	return nil
}

// Delete removes the category. Products that referenced it are kept.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return expectRow(result, "category")
}
