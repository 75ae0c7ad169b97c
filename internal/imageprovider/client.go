// Package imageprovider реализует клиент внешнего API генерации изображений по тексту.
package imageprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEmptyResponse возвращается, если внешний API прислал пустое тело ответа.
var ErrEmptyResponse = errors.New("empty image response")

// Client клиент внешнего text-to-image API.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент API генерации изображений.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate отправляет запрос на генерацию изображения и возвращает
// бинарное содержимое PNG.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	const op = "imageprovider.Generate"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(generateRequest{Prompt: prompt}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/text-to-image/v1", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return data, nil
}
