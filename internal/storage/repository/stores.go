package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// CreateStore создаёт магазин пользователя и возвращает его ID.
// У пользователя может быть только один магазин (уникальность owner_uid).
func (s *Storage) CreateStore(ctx context.Context, ownerUID string) (int, error) {
	const op = "storage.CreateStore"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO stores (owner_uid)
			  VALUES ($1)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, ownerUID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetStoreByOwner возвращает магазин по UID владельца.
func (s *Storage) GetStoreByOwner(ctx context.Context, ownerUID string) (*models.Store, error) {
	const op = "storage.GetStoreByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.owner_uid, u.username, s.created_date, s.updated_date
			  FROM stores s
			  JOIN users u ON u.uid = s.owner_uid
			  WHERE s.owner_uid = $1`
	st := &models.Store{}
	row := s.DB.QueryRowContext(ctx, query, ownerUID)
	if err := row.Scan(&st.ID, &st.OwnerUID, &st.OwnerUsername,
		&st.CreatedDate, &st.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return st, nil
}

// GetStore возвращает магазин по его ID.
func (s *Storage) GetStore(ctx context.Context, id int) (*models.Store, error) {
	const op = "storage.GetStore"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.owner_uid, u.username, s.created_date, s.updated_date
			  FROM stores s
			  JOIN users u ON u.uid = s.owner_uid
			  WHERE s.id = $1`
	st := &models.Store{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&st.ID, &st.OwnerUID, &st.OwnerUsername,
		&st.CreatedDate, &st.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return st, nil
}

// ListStores возвращает список всех магазинов с пагинацией.
func (s *Storage) ListStores(ctx context.Context, limit, offset int) ([]*models.Store, error) {
	const op = "storage.ListStores"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.owner_uid, u.username, s.created_date, s.updated_date
			  FROM stores s
			  JOIN users u ON u.uid = s.owner_uid
			  ORDER BY s.id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Store
	for rows.Next() {
		var st models.Store
		if err := rows.Scan(&st.ID, &st.OwnerUID, &st.OwnerUsername,
			&st.CreatedDate, &st.UpdatedDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
