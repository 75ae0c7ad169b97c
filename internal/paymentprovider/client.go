// Package paymentprovider реализует клиент внешнего платёжного шлюза:
// создание заказа на оплату и получение его состояния.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrOrderNotFound возвращается, если шлюз не знает заказ с таким идентификатором.
var ErrOrderNotFound = errors.New("order not found")

// Client клиент платёжного шлюза.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного шлюза.
func NewClient(apiURL, keyID, keySecret string) *Client {
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrder отправляет запрос на создание заказа.
func (c *Client) CreateOrder(ctx context.Context, reqParams CreateOrderRequest) (*Order, error) {
	const op = "paymentprovider.CreateOrder"

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/orders", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// FetchOrder запрашивает у шлюза состояние заказа по его идентификатору.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	const op = "paymentprovider.FetchOrder"

	req, err := c.newRequest(ctx, http.MethodGet, "/v1/orders/"+orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%s: %w", op, ErrOrderNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}
