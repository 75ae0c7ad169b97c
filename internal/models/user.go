// Package models содержит структуры данных предметной области:
// пользователи, транзакции покупки кредитов и тарифные планы.
package models

import "time"

// User представляет учетную запись пользователя сервиса.
type User struct {
	UID           string    `json:"uid"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	CreditBalance int       `json:"credit_balance"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}
