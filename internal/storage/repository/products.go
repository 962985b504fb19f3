package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// CreateProduct вставляет новый товар вместе со связями категорий
// и возвращает его ID.
func (s *Storage) CreateProduct(ctx context.Context, product models.Product) (int, error) {
	const op = "storage.CreateProduct"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO products (name, price, is_free, store_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	if err := tx.QueryRowContext(ctx, query,
		product.Name, product.Price, product.IsFree, product.StoreID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, category := range product.Categories {
		query = `INSERT INTO product_categories (product_id, category_id)
				 SELECT $1, id FROM categories WHERE name = $2`
		if _, err := tx.ExecContext(ctx, query, newID, category); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadProduct возвращает товар по его ID вместе с именами категорий.
func (s *Storage) ReadProduct(ctx context.Context, id int) (*models.Product, error) {
	const op = "storage.ReadProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, is_free, store_id, created_date, updated_date
			  FROM products
			  WHERE id = $1`
	p := &models.Product{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.IsFree, &p.StoreID,
		&p.CreatedDate, &p.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}

	categories, err := s.productCategories(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Categories = categories
	return p, nil
}

// UpdateProduct обновляет товар и его категории, возвращает количество
// изменённых строк.
func (s *Storage) UpdateProduct(ctx context.Context, product models.Product, id int) (int, error) {
	const op = "storage.UpdateProduct"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE products
			  SET name = $1, price = $2, is_free = $3, updated_date = now()
			  WHERE id = $4`
	result, err := tx.ExecContext(ctx, query, product.Name, product.Price, product.IsFree, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_categories WHERE product_id = $1`, id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, category := range product.Categories {
		query = `INSERT INTO product_categories (product_id, category_id)
				 SELECT $1, id FROM categories WHERE name = $2`
		if _, err := tx.ExecContext(ctx, query, id, category); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveProduct удаляет товар по ID и возвращает количество удалённых строк.
// Файлы товара удаляются каскадно на уровне базы.
func (s *Storage) RemoveProduct(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveProduct"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM products WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListProductsByStore возвращает товары магазина с пагинацией.
func (s *Storage) ListProductsByStore(ctx context.Context, storeID, limit, offset int) ([]*models.Product, error) {
	const op = "storage.ListProductsByStore"
	return s.listProducts(ctx, op,
		`SELECT id, name, price, is_free, store_id, created_date, updated_date
		 FROM products
		 WHERE store_id = $1
		 ORDER BY id
		 LIMIT $2 OFFSET $3`, storeID, limit, offset)
}

// ListAllProducts возвращает список всех товаров с пагинацией.
func (s *Storage) ListAllProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	const op = "storage.ListAllProducts"
	return s.listProducts(ctx, op,
		`SELECT id, name, price, is_free, store_id, created_date, updated_date
		 FROM products
		 ORDER BY id
		 LIMIT $1 OFFSET $2`, limit, offset)
}

func (s *Storage) listProducts(ctx context.Context, op, query string, args ...any) ([]*models.Product, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.IsFree, &p.StoreID,
			&p.CreatedDate, &p.UpdatedDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Storage) productCategories(ctx context.Context, productID int) ([]string, error) {
	const op = "storage.productCategories"
	query := `SELECT c.name
			  FROM product_categories pc
			  JOIN categories c ON c.id = pc.category_id
			  WHERE pc.product_id = $1
			  ORDER BY c.name`
	rows, err := s.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
