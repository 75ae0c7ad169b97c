package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/imagegen-service/internal/models"
)

// CreateTransaction вставляет новую транзакцию в состоянии "не оплачена"
// и возвращает её UID.
func (s *Storage) CreateTransaction(ctx context.Context, entry models.Transaction) (string, error) {
	const op = "storage.CreateTransaction"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO transactions (uid, user_uid, plan, amount, credits, paid)
			  VALUES ($1, $2, $3, $4, $5, false)
			  RETURNING uid`
	var newUID string
	err := s.DB.QueryRowContext(ctx, query,
		entry.UID, entry.UserUID, entry.Plan, entry.Amount, entry.Credits).Scan(&newUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetTransaction возвращает транзакцию по её UID.
func (s *Storage) GetTransaction(ctx context.Context, transactionUID string) (*models.Transaction, error) {
	const op = "storage.GetTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, user_uid, plan, amount, credits, paid, created_at
			  FROM transactions
			  WHERE uid = $1`
	t := &models.Transaction{}
	row := s.DB.QueryRowContext(ctx, query, transactionUID)
	if err := row.Scan(&t.UID, &t.UserUID, &t.Plan, &t.Amount,
		&t.Credits, &t.Paid, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// SettleTransaction помечает транзакцию оплаченной и зачисляет кредиты
// пользователю в одной транзакции базы данных. Перевод paid false->true
// выполняется условным обновлением: повторный вызов для уже оплаченной
// транзакции возвращает Applied=false и не меняет баланс.
func (s *Storage) SettleTransaction(ctx context.Context, transactionUID string) (*models.Settlement, error) {
	const op = "storage.SettleTransaction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	markQuery := `UPDATE transactions
				  SET paid = true
				  WHERE uid = $1 AND paid = false
				  RETURNING user_uid, credits`
	var userUID string
	var credits int
	err = tx.QueryRowContext(ctx, markQuery, transactionUID).Scan(&userUID, &credits)
	if errors.Is(err, sql.ErrNoRows) {
		// Транзакция уже оплачена или не существует.
		return &models.Settlement{Applied: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creditQuery := `UPDATE users
					SET credit_balance = credit_balance + $2
					WHERE uid = $1
					RETURNING credit_balance`
	var newBalance int
	if err = tx.QueryRowContext(ctx, creditQuery, userUID, credits).Scan(&newBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Settlement{
		Applied:    true,
		UserUID:    userUID,
		Credits:    credits,
		NewBalance: newBalance,
	}, nil
}
