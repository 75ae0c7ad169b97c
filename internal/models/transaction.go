package models

import "time"

// Transaction представляет попытку покупки кредитов.
// Поле Paid переходит из false в true ровно один раз, при подтверждении оплаты.
type Transaction struct {
	UID       string    `json:"uid"`
	UserUID   string    `json:"user_uid"`
	Plan      string    `json:"plan"`
	Amount    int64     `json:"amount"`
	Credits   int       `json:"credits"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}

// Settlement результат проведения транзакции: применилось ли зачисление
// и новый баланс пользователя.
type Settlement struct {
	Applied    bool
	UserUID    string
	Credits    int
	NewBalance int
}

// PaymentReceipt сообщение для очереди уведомлений об успешной оплате.
type PaymentReceipt struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Plan           string `json:"plan"`
	Credits        int    `json:"credits"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	TransactionUID string `json:"transaction_uid"`
}
