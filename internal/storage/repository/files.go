package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// CreateFile вставляет новую запись файла и возвращает её ID.
func (s *Storage) CreateFile(ctx context.Context, file models.File) (int, error) {
	const op = "storage.CreateFile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO files (name, path, price, is_free, product_id)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		file.Name, file.Path, file.Price, file.IsFree, file.ProductID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadFile возвращает запись файла по её ID.
func (s *Storage) ReadFile(ctx context.Context, id int) (*models.File, error) {
	const op = "storage.ReadFile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, path, price, is_free, product_id, created_date, updated_date
			  FROM files
			  WHERE id = $1`
	f := &models.File{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&f.ID, &f.Name, &f.Path, &f.Price, &f.IsFree, &f.ProductID,
		&f.CreatedDate, &f.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return f, nil
}

// UpdateFile обновляет запись файла по её ID и возвращает количество
// изменённых строк.
func (s *Storage) UpdateFile(ctx context.Context, file models.File, id int) (int, error) {
	const op = "storage.UpdateFile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE files
			  SET name = $1, path = $2, price = $3, is_free = $4, product_id = $5,
			      updated_date = now()
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		file.Name, file.Path, file.Price, file.IsFree, file.ProductID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateFilePath обновляет только путь к содержимому файла.
// Используется после переименования сохранённого файла в хранилище.
func (s *Storage) UpdateFilePath(ctx context.Context, id int, path string) error {
	const op = "storage.UpdateFilePath"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE files SET path = $1, updated_date = now() WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, path, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFile удаляет запись файла по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveFile(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveFile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM files WHERE id = $1`
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

// ListFilesByStore возвращает файлы всех товаров магазина с пагинацией.
func (s *Storage) ListFilesByStore(ctx context.Context, storeID, limit, offset int) ([]*models.File, error) {
	const op = "storage.ListFilesByStore"
	return s.listFiles(ctx, op,
		`SELECT f.id, f.name, f.path, f.price, f.is_free, f.product_id,
		        f.created_date, f.updated_date
		 FROM files f
		 JOIN products p ON p.id = f.product_id
		 WHERE p.store_id = $1
		 ORDER BY f.id
		 LIMIT $2 OFFSET $3`, storeID, limit, offset)
}

// ListFilesByProduct возвращает файлы одного товара.
func (s *Storage) ListFilesByProduct(ctx context.Context, productID int) ([]*models.File, error) {
	const op = "storage.ListFilesByProduct"
	return s.listFiles(ctx, op,
		`SELECT id, name, path, price, is_free, product_id, created_date, updated_date
		 FROM files
		 WHERE product_id = $1
		 ORDER BY id`, productID)
}

// ListAllFiles возвращает список всех файлов с пагинацией.
func (s *Storage) ListAllFiles(ctx context.Context, limit, offset int) ([]*models.File, error) {
	const op = "storage.ListAllFiles"
	return s.listFiles(ctx, op,
		`SELECT id, name, path, price, is_free, product_id, created_date, updated_date
		 FROM files
		 ORDER BY id
		 LIMIT $1 OFFSET $2`, limit, offset)
}

func (s *Storage) listFiles(ctx context.Context, op, query string, args ...any) ([]*models.File, error) {
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

	var result []*models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.Name, &f.Path, &f.Price, &f.IsFree, &f.ProductID,
			&f.CreatedDate, &f.UpdatedDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
