package paymentcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/imagegen-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/imagegen-service/internal/paymentprovider"
	"github.com/magabrotheeeer/imagegen-service/internal/services/payment"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateOrder(ctx context.Context, userUID, planID string) (*paymentprovider.Order, error) {
	args := m.Called(ctx, userUID, planID)
	order, _ := args.Get(0).(*paymentprovider.Order)
	return order, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockOrder      *paymentprovider.Order
		mockErr        error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
	}{
		{
			name:        "valid payment",
			requestBody: Request{PlanID: "standard"},
			mockOrder: &paymentprovider.Order{
				ID:       "order_abc",
				Amount:   250000,
				Currency: "INR",
				Receipt:  "tx-uid-1",
			},
			wantStatusCode: http.StatusOK,
			wantSuccess:    true,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "invalid request body",
		},
		{
			name:           "validation error - missing plan",
			requestBody:    Request{},
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "field PlanID is a required field",
		},
		{
			name:           "unknown plan",
			requestBody:    Request{PlanID: "platinum"},
			mockErr:        payment.ErrInvalidPlan,
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "plan not found",
		},
		{
			name:           "gateway error",
			requestBody:    Request{PlanID: "standard"},
			mockErr:        errors.New("gateway unavailable"),
			wantStatusCode: http.StatusInternalServerError,
			wantSuccess:    false,
			wantMessage:    "failed to create order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockOrder != nil || tt.mockErr != nil {
				serviceMock.On("CreateOrder", mock.Anything, "user-uid-1", tt.requestBody.(Request).PlanID).
					Return(tt.mockOrder, tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/user/pay", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "user-uid-1")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantSuccess, got["success"])

			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got["message"])
			}
			if tt.wantSuccess {
				order, ok := got["order"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "order_abc", order["id"])
				assert.Equal(t, float64(250000), order["amount"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
