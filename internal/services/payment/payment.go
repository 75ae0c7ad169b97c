// Package payment содержит логику покупки кредитов: создание заказа
// в платёжном шлюзе и идемпотентное проведение оплаты с зачислением кредитов.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/imagegen-service/internal/cache"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/sl"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
	"github.com/magabrotheeeer/imagegen-service/internal/paymentprovider"
	"github.com/magabrotheeeer/imagegen-service/internal/storage"
)

// Ошибки уровня сервиса платежей.
var (
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrOrderNotFound       = errors.New("order not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyProcessed    = errors.New("payment already processed")
)

// TransactionRepository описывает контракт хранилища для платёжных операций.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, entry models.Transaction) (string, error)
	GetTransaction(ctx context.Context, transactionUID string) (*models.Transaction, error)
	SettleTransaction(ctx context.Context, transactionUID string) (*models.Settlement, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Gateway описывает клиент внешнего платёжного шлюза.
type Gateway interface {
	CreateOrder(ctx context.Context, reqParams paymentprovider.CreateOrderRequest) (*paymentprovider.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*paymentprovider.Order, error)
}

// ReceiptPublisher публикует уведомление о проведённой оплате.
type ReceiptPublisher interface {
	Publish(routingKey string, message any) error
}

// CreditCache описывает кэш балансов кредитов.
type CreditCache interface {
	Invalidate(key string) error
}

// Service оркестрирует жизненный цикл платежа: Requested -> Paid.
type Service struct {
	repo      TransactionRepository
	gateway   Gateway
	publisher ReceiptPublisher
	cache     CreditCache
	currency  string
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo TransactionRepository, gateway Gateway, publisher ReceiptPublisher,
	creditCache CreditCache, currency string, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		cache:     creditCache,
		currency:  currency,
		log:       log,
	}
}

// CreateOrder создает транзакцию в состоянии "не оплачена" и заказ
// в платёжном шлюзе. UID транзакции передаётся шлюзу как receipt,
// по нему оплата позже сопоставляется с транзакцией.
//
// Транзакция сохраняется до обращения к шлюзу: при сбое шлюза остаётся
// неоплаченная запись, кредиты по ней никогда не зачислятся.
func (s *Service) CreateOrder(ctx context.Context, userUID, planID string) (*paymentprovider.Order, error) {
	const op = "payment.CreateOrder"

	plan, ok := models.FindPlan(planID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidPlan)
	}

	entry := models.Transaction{
		UID:     uuid.NewString(),
		UserUID: userUID,
		Plan:    plan.ID,
		Amount:  plan.Amount(),
		Credits: plan.Credits,
	}
	transactionUID, err := s.repo.CreateTransaction(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order, err := s.gateway.CreateOrder(ctx, paymentprovider.CreateOrderRequest{
		Amount:   entry.Amount,
		Currency: s.currency,
		Receipt:  transactionUID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// VerifyOrder проверяет оплату заказа в шлюзе и зачисляет кредиты.
// Повторная проверка уже проведённого заказа возвращает ErrAlreadyProcessed
// и не меняет баланс.
func (s *Service) VerifyOrder(ctx context.Context, orderID string) (*models.Settlement, error) {
	const op = "payment.VerifyOrder"

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	trans, err := s.repo.GetTransaction(ctx, order.Receipt)
	if err != nil {
		if errors.Is(err, storage.ErrTransactionNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trans.Paid {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyProcessed)
	}

	settlement, err := s.repo.SettleTransaction(ctx, trans.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !settlement.Applied {
		// Конкурентная проверка успела провести транзакцию первой.
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyProcessed)
	}

	if err := s.cache.Invalidate(cache.CreditsKey(settlement.UserUID)); err != nil {
		s.log.Warn("credits cache invalidation failed", sl.Err(err))
	}
	s.publishReceipt(ctx, trans, settlement)

	return settlement, nil
}

// publishReceipt отправляет уведомление об оплате в очередь. Сбой публикации
// не откатывает зачисление, только пишется в лог.
func (s *Service) publishReceipt(ctx context.Context, trans *models.Transaction, settlement *models.Settlement) {
	user, err := s.repo.GetUser(ctx, settlement.UserUID)
	if err != nil {
		s.log.Warn("failed to load user for payment receipt", sl.Err(err))
		return
	}
	receipt := models.PaymentReceipt{
		Email:          user.Email,
		Name:           user.Name,
		Plan:           trans.Plan,
		Credits:        trans.Credits,
		Amount:         trans.Amount,
		Currency:       s.currency,
		TransactionUID: trans.UID,
	}
	if err := s.publisher.Publish(rabbitmq.PaymentReceiptRoutingKey, receipt); err != nil {
		s.log.Warn("failed to publish payment receipt", sl.Err(err))
	}
}
