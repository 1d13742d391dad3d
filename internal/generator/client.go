// Package generator реализует клиент внешнего вебхука генерации контента.
// Сервис генерации — непрозрачный внешний исполнитель: один HTTP POST,
// одна попытка, без ретраев; любой не-2xx ответ или ошибка транспорта
// считается неуспехом.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient создаёт новый клиент сервиса генерации.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate отправляет запрос на генерацию поста и разбирает ответ.
func (c *Client) Generate(ctx context.Context, reqParams GenerateRequest) (*GenerateResponse, error) {
	const op = "generator.Generate"

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqParams); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if genResp.ImageURL == "" && genResp.Caption == "" {
		return nil, fmt.Errorf("%s: empty generation result", op)
	}
	return &genResp, nil
}
