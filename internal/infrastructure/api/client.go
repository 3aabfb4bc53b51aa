package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
)

// Client — клиент API хранения записей инспекции. Выполняет две зависимые
// проверки штрихкода (предыдущая стадия и дубликат текущей) и отправку
// записей шагов. Сетевые ошибки возвращаются вызывающему как есть.
type Client struct {
	baseURL    string
	prevTable  string // таблица предыдущей стадии
	firstTable string // первая таблица текущего сценария
	http       *http.Client
	logger     *zap.Logger
}

// NewClient создаёт клиента с таймаутом на каждый вызов.
func NewClient(baseURL, prevTable, firstTable string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		prevTable:  prevTable,
		firstTable: firstTable,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CheckBarcode проверяет, проходил ли штрихкод предыдущую стадию и есть ли
// уже запись текущей стадии (дубликат).
func (c *Client) CheckBarcode(ctx context.Context, barcode string) (*port.BarcodeCheck, error) {
	prev, err := c.latest(ctx, c.prevTable, barcode)
	if err != nil {
		return nil, fmt.Errorf("previous stage lookup: %w", err)
	}

	current, err := c.latest(ctx, c.firstTable, barcode)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w", err)
	}

	check := &port.BarcodeCheck{
		PreviousTested: prev != nil,
		Duplicate:      current != nil,
		Existing:       current,
	}
	c.logger.Debug("barcode checked",
		zap.String("barcode", barcode),
		zap.Bool("previous_tested", check.PreviousTested),
		zap.Bool("duplicate", check.Duplicate),
	)
	return check, nil
}

// SubmitStep отправляет запись шага в его таблицу.
func (c *Client) SubmitStep(ctx context.Context, rec *entity.Record) error {
	body, err := json.Marshal(rec.Columns())
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/%s", c.baseURL, rec.Table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", rec.Table, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("post %s: unexpected status %d", rec.Table, resp.StatusCode)
	}
	return nil
}

// latest запрашивает последнюю запись таблицы, nil — если записи нет.
func (c *Client) latest(ctx context.Context, table, barcode string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/api/%s?barcode=%s", c.baseURL, table, url.QueryEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: unexpected status %d", table, resp.StatusCode)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", table, err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

var (
	_ port.StepSubmitter  = (*Client)(nil)
	_ port.BarcodeChecker = (*Client)(nil)
)
