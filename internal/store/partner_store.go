package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/aliados/internal/domain"
)

type PartnerStore struct {
	db *sql.DB
}

func NewPartnerStore(db *sql.DB) *PartnerStore {
	return &PartnerStore{db: db}
}

func (s *PartnerStore) Create(ctx context.Context, name, image string) (*domain.Partner, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO partners (name, image) VALUES (?, ?)
	`, name, image)
	if err != nil {
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns nil, nil when the partner does not exist.
func (s *PartnerStore) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	p := &domain.Partner{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, image FROM partners WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Image)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return p, nil
}

// List returns partners in creation order, without nested data.
func (s *PartnerStore) List(ctx context.Context) ([]*domain.Partner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, image FROM partners ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*domain.Partner
	for rows.Next() {
		p := &domain.Partner{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Image); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partners: %w", err)
	}

	return partners, nil
}

func (s *PartnerStore) Update(ctx context.Context, id int64, name, image string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE partners SET name = ?, image = ?, updated_at = datetime('now') WHERE id = ?
	`, name, image, id)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}
	return expectRow(result, "partner")
}

// Delete removes the partner; categories and products cascade.
func (s *PartnerStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM partners WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete partner: %w", err)
	}
	return expectRow(result, "partner")
}

// expectRow maps a zero-row write to domain.ErrNotFound.
func expectRow(result sql.Result, kind string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", kind, domain.ErrNotFound)
	}
	return nil
}
