package generate

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
	"github.com/magabrotheeeer/imagegen-service/internal/services/generation"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Generate(ctx context.Context, userUID, prompt string) (*generation.Result, error) {
	args := m.Called(ctx, userUID, prompt)
	result, _ := args.Get(0).(*generation.Result)
	return result, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGenerateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		mockResult     *generation.Result
		mockErr        error
		wantStatusCode int
		wantSuccess    bool
		wantMessage    string
	}{
		{
			name:        "valid generation",
			requestBody: Request{Prompt: "a red fox"},
			mockResult: &generation.Result{
				ImageDataURL:  "data:image/png;base64,iVBOR",
				CreditBalance: 4,
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
			name:           "validation error - missing prompt",
			requestBody:    Request{},
			wantStatusCode: http.StatusBadRequest,
			wantSuccess:    false,
			wantMessage:    "field Prompt is a required field",
		},
		{
			name:           "insufficient credits",
			requestBody:    Request{Prompt: "a red fox"},
			mockResult:     &generation.Result{CreditBalance: 0},
			mockErr:        generation.ErrInsufficientCredit,
			wantStatusCode: http.StatusOK,
			wantSuccess:    false,
			wantMessage:    "no credit balance",
		},
		{
			name:           "service error",
			requestBody:    Request{Prompt: "a red fox"},
			mockErr:        errors.New("upstream unavailable"),
			wantStatusCode: http.StatusInternalServerError,
			wantSuccess:    false,
			wantMessage:    "failed to generate image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockResult != nil || tt.mockErr != nil {
				serviceMock.On("Generate", mock.Anything, "user-uid-1", tt.requestBody.(Request).Prompt).
					Return(tt.mockResult, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/api/image/generate-image", bytes.NewReader(bodyBytes))
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
				assert.Equal(t, "data:image/png;base64,iVBOR", got["resultImage"])
				assert.Equal(t, float64(4), got["creditBalance"])
			}
			if errors.Is(tt.mockErr, generation.ErrInsufficientCredit) {
				assert.Equal(t, float64(0), got["creditBalance"])
				assert.Nil(t, got["resultImage"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

func TestGenerateHandler_Unauthorized(t *testing.T) {
	handler := New(newNoopLogger(), new(ServiceMock))

	body, _ := json.Marshal(Request{Prompt: "a red fox"})
	req := httptest.NewRequest(http.MethodPost, "/api/image/generate-image", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
