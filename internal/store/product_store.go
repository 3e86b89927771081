package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/aliados/internal/domain"
)

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, partner_id, category_id, title, description, price`

func (s *ProductStore) Create(ctx context.Context, in domain.ProductInput) (_ *domain.Product, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO products (partner_id, category_id, title, description, price) VALUES (?, ?, ?, ?, ?)
	`, in.PartnerID, in.CategoryID, in.Title, in.Description, in.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err = insertImages(ctx, tx, id, in.Images); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns nil, nil when the product does not exist.
func (s *ProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = ?
	`, id).Scan(&p.ID, &p.PartnerID, &p.CategoryID, &p.Title, &p.Description, &p.Price)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	images, err := s.images(ctx, `WHERE product_id = ?`, id)
	if err != nil {
		return nil, err
	}
	p.Images = images[id]
	return p, nil
}

func (s *ProductStore) ListByPartnerID(ctx context.Context, partnerID int64) ([]*domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE partner_id = ? ORDER BY id ASC
	`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		if err := rows.Scan(&p.ID, &p.PartnerID, &p.CategoryID, &p.Title, &p.Description, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	images, err := s.images(ctx, `WHERE product_id IN (SELECT id FROM products WHERE partner_id = ?)`, partnerID)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		p.Images = images[p.ID]
	}
	return products, nil
}

func (s *ProductStore) images(ctx context.Context, where string, args ...any) (map[int64][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, data FROM product_images `+where+` ORDER BY product_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	out := map[int64][]string{}
	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		out[id] = append(out[id], data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}
	return out, nil
}

// Update overwrites every field and replaces the image list.
func (s *ProductStore) Update(ctx context.Context, id int64, in domain.ProductInput) (err error) {
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
		UPDATE products SET partner_id = ?, category_id = ?, title = ?, description = ?, price = ? WHERE id = ?
	`, in.PartnerID, in.CategoryID, in.Title, in.Description, in.Price, id)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if err = expectRow(result, "product"); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear product images: %w", err)
	}
	if err = insertImages(ctx, tx, id, in.Images); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectRow(result, "product")
}

func insertImages(ctx context.Context, tx *sql.Tx, productID int64, images []string) error {
	for i, data := range images {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, position, data) VALUES (?, ?, ?)
		`, productID, i, data); err != nil {
			return fmt.Errorf("failed to store product image %d: %w", i, err)
		}
	}
	return nil
}
