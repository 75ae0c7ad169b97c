// Package auth содержит логику регистрации, входа и проверки токенов сессии.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/imagegen-service/internal/lib/jwt"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/password"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
	"github.com/magabrotheeeer/imagegen-service/internal/storage"
)

// ErrUserExists возвращается при регистрации на занятый email.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound возвращается при входе с неизвестным email.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidCredentials возвращается при неверном пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
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

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user",
// затем выпускает токен сессии.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user.UID = uid

	token, err := s.jwtMaker.GenerateToken(uid)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, nil
}

// Login проверяет пароль пользователя и выпускает токен сессии.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.UID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// ValidateToken проверяет токен сессии и возвращает UID пользователя.
func (s *Service) ValidateToken(token string) (string, error) {
	return s.jwtMaker.ParseToken(token)
}
