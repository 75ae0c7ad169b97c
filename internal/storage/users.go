package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/imagegen-service/internal/models"
)

// Код уникального нарушения PostgreSQL (unique_violation).
const uniqueViolationCode = "23505"

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Начальный баланс кредитов задаётся значением по умолчанию в схеме.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (name, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role).Scan(&newUID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, credit_balance, role, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash,
		&u.CreditBalance, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, password_hash, credit_balance, role, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.PasswordHash,
		&u.CreditBalance, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// DebitCredits списывает amount кредитов одним условным обновлением.
// Возвращает актуальный баланс и признак, применилось ли списание.
// Списание не применяется, если текущий баланс меньше amount.
func (s *Storage) DebitCredits(ctx context.Context, userUID string, amount int) (int, bool, error) {
	const op = "storage.DebitCredits"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET credit_balance = credit_balance - $2
			  WHERE uid = $1 AND credit_balance >= $2
			  RETURNING credit_balance`
	var newBalance int
	err := s.DB.QueryRowContext(ctx, query, userUID, amount).Scan(&newBalance)
	if err == nil {
		return newBalance, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	// Обновление не применилось: либо не хватает кредитов, либо пользователя нет.
	user, err := s.GetUser(ctx, userUID)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return user.CreditBalance, false, nil
}

// AddCredits зачисляет amount кредитов и возвращает новый баланс.
func (s *Storage) AddCredits(ctx context.Context, userUID string, amount int) (int, error) {
	const op = "storage.AddCredits"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET credit_balance = credit_balance + $2
			  WHERE uid = $1
			  RETURNING credit_balance`
	var newBalance int
	if err := s.DB.QueryRowContext(ctx, query, userUID, amount).Scan(&newBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newBalance, nil
}
