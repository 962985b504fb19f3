package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// CreateSubscription вставляет подписку магазина и возвращает её ID.
// У магазина может быть только одна подписка (уникальность store_id).
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (amount, expiry_amount, expiry_unit, store_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		sub.Amount, sub.ExpiryAmount, sub.ExpiryUnit, sub.StoreID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadSubscription возвращает подписку по её ID.
func (s *Storage) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, amount, expiry_amount, expiry_unit, store_id, created_date, updated_date
			  FROM subscriptions
			  WHERE id = $1`
	sub := &models.Subscription{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&sub.ID, &sub.Amount, &sub.ExpiryAmount, &sub.ExpiryUnit,
		&sub.StoreID, &sub.CreatedDate, &sub.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return sub, nil
}

// ReadSubscriptionByStore возвращает подписку магазина.
func (s *Storage) ReadSubscriptionByStore(ctx context.Context, storeID int) (*models.Subscription, error) {
	const op = "storage.ReadSubscriptionByStore"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, amount, expiry_amount, expiry_unit, store_id, created_date, updated_date
			  FROM subscriptions
			  WHERE store_id = $1`
	sub := &models.Subscription{}
	row := s.DB.QueryRowContext(ctx, query, storeID)
	if err := row.Scan(&sub.ID, &sub.Amount, &sub.ExpiryAmount, &sub.ExpiryUnit,
		&sub.StoreID, &sub.CreatedDate, &sub.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return sub, nil
}

// UpdateSubscription обновляет подписку по её ID и возвращает количество
// изменённых строк.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription, id int) (int, error) {
	const op = "storage.UpdateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET amount = $1, expiry_amount = $2, expiry_unit = $3, updated_date = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, sub.Amount, sub.ExpiryAmount, sub.ExpiryUnit, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveSubscription удаляет подписку по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE id = $1`
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

// ListAllSubscriptions возвращает список всех подписок с пагинацией.
func (s *Storage) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, amount, expiry_amount, expiry_unit, store_id, created_date, updated_date
			  FROM subscriptions
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.Amount, &sub.ExpiryAmount, &sub.ExpiryUnit,
			&sub.StoreID, &sub.CreatedDate, &sub.UpdatedDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
