package paymentprovider

// CreateOrderRequest запрос на создание заказа в платёжном шлюзе.
// Receipt хранит UID транзакции и служит ключом сверки при подтверждении.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order описание заказа, возвращаемое платёжным шлюзом.
type Order struct {
	ID        string `json:"id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}
