package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// GetOrCreateCart возвращает ID корзины пользователя, создавая её при
// первом обращении.
func (s *Storage) GetOrCreateCart(ctx context.Context, userUID string) (int, error) {
	const op = "storage.GetOrCreateCart"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO carts (user_uid)
			  VALUES ($1)
			  ON CONFLICT (user_uid) DO UPDATE SET updated_date = now()
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// AddCartProduct добавляет товар в корзину, если его там ещё нет.
// Возвращает false, если товар уже был куплен. Условная вставка выполняется
// одной операцией, поэтому параллельные покупки не создают дубликатов.
func (s *Storage) AddCartProduct(ctx context.Context, cartID, productID int) (bool, error) {
	const op = "storage.AddCartProduct"
	return s.addCartItem(ctx, op,
		`INSERT INTO cart_products (cart_id, product_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, cartID, productID)
}

// AddCartFile добавляет файл в корзину, если его там ещё нет.
// Возвращает false, если файл уже был куплен.
func (s *Storage) AddCartFile(ctx context.Context, cartID, fileID int) (bool, error) {
	const op = "storage.AddCartFile"
	return s.addCartItem(ctx, op,
		`INSERT INTO cart_files (cart_id, file_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, cartID, fileID)
}

func (s *Storage) addCartItem(ctx context.Context, op, query string, cartID, itemID int) (bool, error) {
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, query, cartID, itemID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// UpsertCartSubscription добавляет подписку в корзину или обновляет отметку
// времени её покупки. Каждая подписка несёт собственную отметку, поэтому
// повторная покупка одной подписки не влияет на сроки остальных.
func (s *Storage) UpsertCartSubscription(ctx context.Context, cartID, subscriptionID int, purchasedAt time.Time) error {
	const op = "storage.UpsertCartSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO cart_subscriptions (cart_id, subscription_id, purchased_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (cart_id, subscription_id)
			  DO UPDATE SET purchased_at = EXCLUDED.purchased_at`
	if _, err := s.DB.ExecContext(ctx, query, cartID, subscriptionID, purchasedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetCartSubscription возвращает купленную подписку корзины вместе с отметкой
// времени покупки.
func (s *Storage) GetCartSubscription(ctx context.Context, cartID, subscriptionID int) (*models.PurchasedSubscription, error) {
	const op = "storage.GetCartSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.amount, s.expiry_amount, s.expiry_unit, s.store_id,
			      s.created_date, s.updated_date, cs.purchased_at
			  FROM cart_subscriptions cs
			  JOIN subscriptions s ON s.id = cs.subscription_id
			  WHERE cs.cart_id = $1 AND cs.subscription_id = $2`
	ps := &models.PurchasedSubscription{}
	row := s.DB.QueryRowContext(ctx, query, cartID, subscriptionID)
	if err := row.Scan(&ps.ID, &ps.Amount, &ps.ExpiryAmount, &ps.ExpiryUnit, &ps.StoreID,
		&ps.CreatedDate, &ps.UpdatedDate, &ps.PurchasedAt); err != nil {
		return nil, notFoundOr(op, err)
	}
	return ps, nil
}

// GetCartByUser возвращает корзину пользователя с наборами купленных ID
// и подписками. Отсутствие корзины возвращается как ErrNotFound.
// Пустые наборы всегда инициализированы, nil-карт не бывает.
func (s *Storage) GetCartByUser(ctx context.Context, userUID string) (*models.Cart, error) {
	const op = "storage.GetCartByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	cart := &models.Cart{
		ProductIDs: make(map[int]struct{}),
		FileIDs:    make(map[int]struct{}),
	}
	query := `SELECT id, user_uid, created_date, updated_date
			  FROM carts
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&cart.ID, &cart.UserUID, &cart.CreatedDate, &cart.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}

	if err := s.loadCartIDs(ctx, cart.ID,
		`SELECT product_id FROM cart_products WHERE cart_id = $1`, cart.ProductIDs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadCartIDs(ctx, cart.ID,
		`SELECT file_id FROM cart_files WHERE cart_id = $1`, cart.FileIDs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `SELECT s.id, s.amount, s.expiry_amount, s.expiry_unit, s.store_id,
			     s.created_date, s.updated_date, cs.purchased_at
			 FROM cart_subscriptions cs
			 JOIN subscriptions s ON s.id = cs.subscription_id
			 WHERE cs.cart_id = $1
			 ORDER BY s.id`
	rows, err := s.DB.QueryContext(ctx, query, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var ps models.PurchasedSubscription
		if err := rows.Scan(&ps.ID, &ps.Amount, &ps.ExpiryAmount, &ps.ExpiryUnit, &ps.StoreID,
			&ps.CreatedDate, &ps.UpdatedDate, &ps.PurchasedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cart.Subscriptions = append(cart.Subscriptions, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s *Storage) loadCartIDs(ctx context.Context, cartID int, query string, dst map[int]struct{}) error {
	rows, err := s.DB.QueryContext(ctx, query, cartID)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		dst[id] = struct{}{}
	}
	return rows.Err()
}
