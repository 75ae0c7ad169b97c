package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotAuthorized возвращается при вызове защищённых операций без сессии.
var ErrNotAuthorized = errors.New("not authorized")

// API тонкая обёртка над HTTP API сервиса. Токен сессии берётся из Keeper
// и подставляется в заголовок Authorization.
type API struct {
	baseURL    string
	httpClient *http.Client
	keeper     *Keeper
}

// NewAPI создает новый экземпляр API.
func NewAPI(baseURL string, keeper *Keeper) *API {
	return &API{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		keeper:     keeper,
	}
}

type apiUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type apiResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	Token         string  `json:"token"`
	User          apiUser `json:"user"`
	Credits       int     `json:"credits"`
	ResultImage   string  `json:"resultImage"`
	CreditBalance int     `json:"creditBalance"`
	Order         struct {
		ID string `json:"id"`
	} `json:"order"`
}

func (a *API) do(ctx context.Context, method, path string, body any, authorized bool) (*apiResponse, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if authorized {
		session, ok, err := a.keeper.Load()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotAuthorized
		}
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("unexpected response (%s): %w", resp.Status, err)
	}
	return &parsed, nil
}

// Register регистрирует пользователя и сохраняет сессию.
func (a *API) Register(ctx context.Context, name, email, password string) (*Session, error) {
	parsed, err := a.do(ctx, http.MethodPost, "/api/user/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return nil, err
	}
	if !parsed.Success {
		return nil, errors.New(parsed.Message)
	}
	session := &Session{
		Token: parsed.Token,
		User:  User{ID: parsed.User.ID, Name: parsed.User.Name, Email: parsed.User.Email},
	}
	if err := a.keeper.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Login авторизует пользователя и сохраняет сессию.
func (a *API) Login(ctx context.Context, email, password string) (*Session, error) {
	parsed, err := a.do(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"email":    email,
		"password": password,
	}, false)
	if err != nil {
		return nil, err
	}
	if !parsed.Success {
		return nil, errors.New(parsed.Message)
	}
	session := &Session{
		Token: parsed.Token,
		User:  User{ID: parsed.User.ID, Name: parsed.User.Name, Email: parsed.User.Email},
	}
	if err := a.keeper.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Credits возвращает баланс кредитов и обновляет его в сессии.
func (a *API) Credits(ctx context.Context) (int, error) {
	parsed, err := a.do(ctx, http.MethodGet, "/api/user/credits", nil, true)
	if err != nil {
		return 0, err
	}
	if !parsed.Success {
		return 0, errors.New(parsed.Message)
	}
	a.updateCredits(parsed.Credits)
	return parsed.Credits, nil
}

// GenerateImage генерирует изображение по описанию. Возвращает data URL
// изображения и остаток кредитов.
func (a *API) GenerateImage(ctx context.Context, prompt string) (string, int, error) {
	parsed, err := a.do(ctx, http.MethodPost, "/api/image/generate-image", map[string]string{
		"prompt": prompt,
	}, true)
	if err != nil {
		return "", 0, err
	}
	a.updateCredits(parsed.CreditBalance)
	if !parsed.Success {
		return "", parsed.CreditBalance, errors.New(parsed.Message)
	}
	return parsed.ResultImage, parsed.CreditBalance, nil
}

// Pay создает заказ на покупку кредитов и возвращает его идентификатор.
func (a *API) Pay(ctx context.Context, planID string) (string, error) {
	parsed, err := a.do(ctx, http.MethodPost, "/api/user/pay", map[string]string{
		"planId": planID,
	}, true)
	if err != nil {
		return "", err
	}
	if !parsed.Success {
		return "", errors.New(parsed.Message)
	}
	return parsed.Order.ID, nil
}

// Verify подтверждает оплату заказа и возвращает число зачисленных кредитов.
func (a *API) Verify(ctx context.Context, orderID string) (int, error) {
	parsed, err := a.do(ctx, http.MethodPost, "/api/user/verify", map[string]string{
		"razorpay_order_id": orderID,
	}, true)
	if err != nil {
		return 0, err
	}
	if !parsed.Success {
		return 0, errors.New(parsed.Message)
	}
	return parsed.Credits, nil
}

// updateCredits обновляет баланс в сохранённой сессии, не прерывая
// основную операцию при ошибке хранилища.
func (a *API) updateCredits(credits int) {
	session, ok, err := a.keeper.Load()
	if err != nil || !ok {
		return
	}
	session.Credits = credits
	_ = a.keeper.Save(session)
}
