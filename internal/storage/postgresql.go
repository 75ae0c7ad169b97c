// Package storage реализует хранилище данных на основе PostgreSQL
// для управления пользователями и транзакциями покупки кредитов.
// Все мутации баланса и признака оплаты выполняются условными
// атомарными обновлениями, чтобы исключить потерянные записи
// при конкурентных запросах.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrUserExists возвращается при попытке регистрации с занятым email.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound возвращается, если пользователь не найден.
var ErrUserNotFound = errors.New("user not found")

// ErrTransactionNotFound возвращается, если транзакция не найдена.
var ErrTransactionNotFound = errors.New("transaction not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и транзакциями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'users'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table users missing or query error: %w", err)
	}
	return nil
}
