// Package auth содержит логику регистрации, авторизации и проверки токенов.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/digital-store/internal/lib/jwt"
	"github.com/magabrotheeeer/digital-store/internal/lib/password"
	"github.com/magabrotheeeer/digital-store/internal/models"
	"github.com/magabrotheeeer/digital-store/internal/storage/repository"
)

// ErrPasswordsMismatch возвращается, когда пароли при регистрации не совпадают.
var ErrPasswordsMismatch = errors.New("passwords must match")

// ErrInvalidCredentials возвращается при неверном имени пользователя или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя с профилем и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User, profile models.Profile) (string, error)
	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetProfile возвращает профиль пользователя по его UID.
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Signup создаёт пользователя вместе с профилем, проверяя совпадение паролей.
// Несовпадение возвращается как ErrPasswordsMismatch, пользователь не создаётся.
func (s *Service) Signup(ctx context.Context, username, password1, password2 string, isOwner bool, phoneNumber *string) (string, error) {
	const op = "auth.Signup"
	if password1 == "" || password2 == "" || password1 != password2 {
		return "", ErrPasswordsMismatch
	}

	hashed, err := password.GetHash(password1)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Username:     username,
		PasswordHash: hashed,
	}
	profile := models.Profile{
		IsOwner:     isOwner,
		PhoneNumber: phoneNumber,
	}
	return s.users.RegisterUser(ctx, user, profile)
}

// Login проверяет пароль пользователя и генерирует пару access/refresh токенов.
// Роль "owner" или "user" берётся из профиля.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, refresh, role string, err error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", "", ErrInvalidCredentials
	}

	role = s.roleOf(ctx, user.UID)
	token, refresh, err = s.jwtMaker.GenerateTokens(user.Username, role)
	if err != nil {
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, refresh, role, nil
}

// Refresh принимает refresh токен и выдаёт новую пару токенов.
func (s *Service) Refresh(_ context.Context, refreshToken string) (token, refresh, role string, err error) {
	const op = "auth.Refresh"
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return "", "", "", fmt.Errorf("%s: not a refresh token", op)
	}
	token, refresh, err = s.jwtMaker.GenerateTokens(claims.Username, claims.Role)
	if err != nil {
		return "", "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, refresh, claims.Role, nil
}

// ValidateToken проверяет access токен и возвращает имя пользователя и роль.
func (s *Service) ValidateToken(_ context.Context, token string) (username, role string, err error) {
	const op = "auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return "", "", fmt.Errorf("%s: not an access token", op)
	}
	return claims.Username, claims.Role, nil
}

// IsStoreOwner сообщает, помечен ли пользователь владельцем магазина.
// Отсутствие профиля трактуется как false, а не как ошибка.
func (s *Service) IsStoreOwner(ctx context.Context, username string) (bool, error) {
	const op = "auth.IsStoreOwner"
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	profile, err := s.users.GetProfile(ctx, user.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return profile.IsOwner, nil
}

func (s *Service) roleOf(ctx context.Context, userUID string) string {
	profile, err := s.users.GetProfile(ctx, userUID)
	if err == nil && profile.IsOwner {
		return "owner"
	}
	return "user"
}
