package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/digital-store/internal/models"
)

// RegisterUser сохраняет нового пользователя вместе с профилем в одной
// транзакции и возвращает UID. Профиль создаётся сразу при регистрации.
func (s *Storage) RegisterUser(ctx context.Context, user models.User, profile models.Profile) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var newUID string
	query := `INSERT INTO users (username, password_hash)
			  VALUES ($1, $2)
			  RETURNING uid`
	if err := tx.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO profiles (user_uid, is_owner, phone_number)
			 VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, query,
		newUID, profile.IsOwner, profile.PhoneNumber); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, password_hash, created_date, updated_date
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)
	if err := row.Scan(&u.UID, &u.Username, &u.PasswordHash,
		&u.CreatedDate, &u.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return u, nil
}

// GetProfile возвращает профиль пользователя по его UID.
// Отсутствие профиля возвращается как ErrNotFound, а не как сбой.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, is_owner, phone_number, created_date, updated_date
			  FROM profiles
			  WHERE user_uid = $1`
	p := &models.Profile{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&p.ID, &p.UserUID, &p.IsOwner, &p.PhoneNumber,
		&p.CreatedDate, &p.UpdatedDate); err != nil {
		return nil, notFoundOr(op, err)
	}
	return p, nil
}
