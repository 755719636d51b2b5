package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"catalog-service/internal/domain"
)

// --- ProductStorer Implementation ---

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (name, description, price, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, price, image_url, created_at;
	`
	var created domain.Product
	err = tx.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.ImageURL,
	).Scan(
		&created.ID, &created.Name, &created.Description, &created.Price,
		&created.ImageURL, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}

	if err := replaceProductCategories(ctx, tx, created.ID, product.Categories); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to commit transaction: %w", err)
	}

	created.Categories = product.Categories
	return &created, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, image_url, created_at
		FROM products
		WHERE id = $1;
	`
	var product domain.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.ImageURL, &product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}

	byProduct, err := s.loadProductCategories(ctx, []int64{product.ID})
	if err != nil {
		return nil, err
	}
	product.Categories = byProduct[product.ID]
	return &product, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, params ListParams) ([]domain.Product, int, error) {
	countQuery := `SELECT COUNT(*) FROM products;`
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}

	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	allowedSortColumns := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"created_at": "created_at",
	}
	query := fmt.Sprintf(`
		SELECT id, name, description, price, image_url, created_at
		FROM products
		%s
		LIMIT $1 OFFSET $2;
	`, orderClause(params, allowedSortColumns, "name"))

	rows, err := s.db.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, params.Limit)
	ids := make([]int64, 0, params.Limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}

	if len(ids) > 0 {
		byProduct, err := s.loadProductCategories(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range products {
			products[i].Categories = byProduct[products[i].ID]
		}
	}

	return products, totalCount, nil
}

func (s *PostgresStore) ProductExists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1);`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("store: ProductExists failed to scan row: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: UpdateProduct failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// created_at is immutable; the update never touches it.
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image_url = $4
		WHERE id = $5
		RETURNING id, name, description, price, image_url, created_at;
	`
	var updated domain.Product
	err = tx.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.ImageURL, product.ID,
	).Scan(
		&updated.ID, &updated.Name, &updated.Description, &updated.Price,
		&updated.ImageURL, &updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}

	deleteQuery := `DELETE FROM product_categories WHERE product_id = $1;`
	if _, err := tx.ExecContext(ctx, deleteQuery, updated.ID); err != nil {
		return nil, fmt.Errorf("store: UpdateProduct failed to clear category associations: %w", err)
	}
	if err := replaceProductCategories(ctx, tx, updated.ID, product.Categories); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: UpdateProduct failed to commit transaction: %w", err)
	}

	updated.Categories = product.Categories
	return &updated, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrIntegrityViolation
		}
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// replaceProductCategories inserts one association row per category within the
// caller's transaction. A foreign key failure here means a referenced category
// disappeared between the service's existence check and the write.
func replaceProductCategories(ctx context.Context, tx *sql.Tx, productID int64, categories []domain.Category) error {
	query := `INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2);`
	for _, c := range categories {
		if _, err := tx.ExecContext(ctx, query, productID, c.ID); err != nil {
			if isForeignKeyViolation(err) {
				return ErrIntegrityViolation
			}
			return fmt.Errorf("store: failed to associate product %d with category %d: %w", productID, c.ID, err)
		}
	}
	return nil
}

// loadProductCategories fetches the category sets for a batch of product ids
// in a single query.
func (s *PostgresStore) loadProductCategories(ctx context.Context, productIDs []int64) (map[int64][]domain.Category, error) {
	query := `
		SELECT pc.product_id, c.id, c.name
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY pc.product_id, c.id;
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("store: failed to query product categories: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[int64][]domain.Category, len(productIDs))
	for rows.Next() {
		var productID int64
		var c domain.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("store: failed to scan product category row: %w", err)
		}
		byProduct[productID] = append(byProduct[productID], c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: product categories iteration error: %w", err)
	}
	return byProduct, nil
}
