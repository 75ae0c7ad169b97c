package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/imagegen-service/internal/cache"
	"github.com/magabrotheeeer/imagegen-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/imagegen-service/internal/models"
	"github.com/magabrotheeeer/imagegen-service/internal/paymentprovider"
	"github.com/magabrotheeeer/imagegen-service/internal/storage"
)

type TransactionRepositoryMock struct {
	mock.Mock
}

func (m *TransactionRepositoryMock) CreateTransaction(ctx context.Context, entry models.Transaction) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *TransactionRepositoryMock) GetTransaction(ctx context.Context, transactionUID string) (*models.Transaction, error) {
	args := m.Called(ctx, transactionUID)
	trans, _ := args.Get(0).(*models.Transaction)
	return trans, args.Error(1)
}

func (m *TransactionRepositoryMock) SettleTransaction(ctx context.Context, transactionUID string) (*models.Settlement, error) {
	args := m.Called(ctx, transactionUID)
	settlement, _ := args.Get(0).(*models.Settlement)
	return settlement, args.Error(1)
}

func (m *TransactionRepositoryMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type GatewayMock struct {
	mock.Mock
}

func (m *GatewayMock) CreateOrder(ctx context.Context, reqParams paymentprovider.CreateOrderRequest) (*paymentprovider.Order, error) {
	args := m.Called(ctx, reqParams)
	order, _ := args.Get(0).(*paymentprovider.Order)
	return order, args.Error(1)
}

func (m *GatewayMock) FetchOrder(ctx context.Context, orderID string) (*paymentprovider.Order, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*paymentprovider.Order)
	return order, args.Error(1)
}

type ReceiptPublisherMock struct {
	mock.Mock
}

func (m *ReceiptPublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

type CreditCacheMock struct {
	mock.Mock
}

func (m *CreditCacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newTestService(repo *TransactionRepositoryMock, gateway *GatewayMock,
	publisher *ReceiptPublisherMock, creditCache *CreditCacheMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, gateway, publisher, creditCache, "INR", log)
}

func TestService_CreateOrder(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	repo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(entry models.Transaction) bool {
		return entry.UID != "" && entry.UserUID == "user-uid-1" &&
			entry.Plan == "standard" && entry.Amount == 250000 && entry.Credits == 250
	})).Return("tx-uid-1", nil).Once()

	gateway.On("CreateOrder", mock.Anything, paymentprovider.CreateOrderRequest{
		Amount:   250000,
		Currency: "INR",
		Receipt:  "tx-uid-1",
	}).Return(&paymentprovider.Order{ID: "order_abc", Receipt: "tx-uid-1"}, nil).Once()

	order, err := service.CreateOrder(context.Background(), "user-uid-1", "Standard")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)

	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestService_CreateOrder_InvalidPlan(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	_, err := service.CreateOrder(context.Background(), "user-uid-1", "platinum")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPlan))

	repo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
}

func TestService_CreateOrder_GatewayError(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	repo.On("CreateTransaction", mock.Anything, mock.Anything).Return("tx-uid-1", nil).Once()
	gateway.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway unavailable")).Once()

	_, err := service.CreateOrder(context.Background(), "user-uid-1", "basic")
	require.Error(t, err)
}

func TestService_VerifyOrder(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	publisher := new(ReceiptPublisherMock)
	creditCache := new(CreditCacheMock)
	service := newTestService(repo, gateway, publisher, creditCache)

	trans := &models.Transaction{
		UID:     "tx-uid-1",
		UserUID: "user-uid-1",
		Plan:    "standard",
		Amount:  250000,
		Credits: 250,
	}

	gateway.On("FetchOrder", mock.Anything, "order_abc").
		Return(&paymentprovider.Order{ID: "order_abc", Receipt: "tx-uid-1", Status: "paid"}, nil).Once()
	repo.On("GetTransaction", mock.Anything, "tx-uid-1").Return(trans, nil).Once()
	repo.On("SettleTransaction", mock.Anything, "tx-uid-1").
		Return(&models.Settlement{Applied: true, UserUID: "user-uid-1", Credits: 250, NewBalance: 255}, nil).Once()
	creditCache.On("Invalidate", cache.CreditsKey("user-uid-1")).Return(nil).Once()
	repo.On("GetUser", mock.Anything, "user-uid-1").
		Return(&models.User{UID: "user-uid-1", Name: "Ada", Email: "ada@x.com"}, nil).Once()
	publisher.On("Publish", rabbitmq.PaymentReceiptRoutingKey, models.PaymentReceipt{
		Email:          "ada@x.com",
		Name:           "Ada",
		Plan:           "standard",
		Credits:        250,
		Amount:         250000,
		Currency:       "INR",
		TransactionUID: "tx-uid-1",
	}).Return(nil).Once()

	settlement, err := service.VerifyOrder(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, 255, settlement.NewBalance)

	repo.AssertExpectations(t)
	gateway.AssertExpectations(t)
	publisher.AssertExpectations(t)
	creditCache.AssertExpectations(t)
}

func TestService_VerifyOrder_AlreadyPaid(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	gateway.On("FetchOrder", mock.Anything, "order_abc").
		Return(&paymentprovider.Order{ID: "order_abc", Receipt: "tx-uid-1"}, nil).Once()
	repo.On("GetTransaction", mock.Anything, "tx-uid-1").
		Return(&models.Transaction{UID: "tx-uid-1", Paid: true}, nil).Once()

	_, err := service.VerifyOrder(context.Background(), "order_abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyProcessed))

	repo.AssertNotCalled(t, "SettleTransaction", mock.Anything, mock.Anything)
}

func TestService_VerifyOrder_SettleRace(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	gateway.On("FetchOrder", mock.Anything, "order_abc").
		Return(&paymentprovider.Order{ID: "order_abc", Receipt: "tx-uid-1"}, nil).Once()
	repo.On("GetTransaction", mock.Anything, "tx-uid-1").
		Return(&models.Transaction{UID: "tx-uid-1", Paid: false}, nil).Once()
	repo.On("SettleTransaction", mock.Anything, "tx-uid-1").
		Return(&models.Settlement{Applied: false}, nil).Once()

	_, err := service.VerifyOrder(context.Background(), "order_abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyProcessed))
}

func TestService_VerifyOrder_OrderNotFound(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	gateway.On("FetchOrder", mock.Anything, "missing").
		Return(nil, paymentprovider.ErrOrderNotFound).Once()

	_, err := service.VerifyOrder(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestService_VerifyOrder_TransactionNotFound(t *testing.T) {
	repo := new(TransactionRepositoryMock)
	gateway := new(GatewayMock)
	service := newTestService(repo, gateway, new(ReceiptPublisherMock), new(CreditCacheMock))

	gateway.On("FetchOrder", mock.Anything, "order_abc").
		Return(&paymentprovider.Order{ID: "order_abc", Receipt: "tx-ghost"}, nil).Once()
	repo.On("GetTransaction", mock.Anything, "tx-ghost").
		Return(nil, storage.ErrTransactionNotFound).Once()

	_, err := service.VerifyOrder(context.Background(), "order_abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransactionNotFound))
}
