package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с заданным балансом кредитов
// и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, passwordHash string, creditBalance int) string {
	userUID := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, name, email, password_hash, credit_balance, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		userUID, name, email, passwordHash, creditBalance, "user")
	require.NoError(t, err)
	return userUID
}

// CreateTransaction создает тестовую транзакцию и возвращает её UID.
func (f *TestDataFactory) CreateTransaction(t *testing.T, userUID, plan string, amount int64, credits int, paid bool) string {
	transactionUID := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO transactions (uid, user_uid, plan, amount, credits, paid)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		transactionUID, userUID, plan, amount, credits, paid)
	require.NoError(t, err)
	return transactionUID
}
