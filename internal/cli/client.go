package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cashflow/internal/game"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// CommandResult is the body the API returns for every accepted command.
type CommandResult struct {
	Message      string            `json:"message"`
	Confirmation game.Confirmation `json:"confirmation"`
	State        game.Dashboard    `json:"state"`
}

// StatusError is returned when the API answered with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Code, e.Body)
}

// Message extracts the "error" field of the body when present.
func (e *StatusError) Message() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return e.Body
}

// Retryable reports whether the same request may succeed later: server
// faults, timeouts and rate limiting.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests
}

// IsUnreachable reports whether err came from the transport rather than from
// an API response.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// ShouldRetry reports whether a write that failed with err belongs in the
// offline queue.
func ShouldRetry(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.Retryable()
	}
	return IsUnreachable(err)
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Dashboard(ctx context.Context) (game.Dashboard, error) {
	var out game.Dashboard
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out, "")
	return out, err
}

func (c *Client) Catalog(ctx context.Context) (game.Catalog, error) {
	var out game.Catalog
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/catalog", nil, &out, "")
	return out, err
}

func (c *Client) Payday(ctx context.Context, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/payday", nil, idem)
}

func (c *Client) BuyRealEstate(ctx context.Context, cmd game.BuyRealEstate, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/assets/real-estate", RealEstateBody(cmd), idem)
}

func (c *Client) BuyStock(ctx context.Context, cmd game.BuyStock, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/assets/stocks", StockBody(cmd), idem)
}

func (c *Client) BuyGold(ctx context.Context, cmd game.BuyGold, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/assets/gold", GoldBody(cmd), idem)
}

func (c *Client) Sell(ctx context.Context, cmd game.SellAsset, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, SellPath(cmd.Index), SellBody(cmd), idem)
}

func (c *Client) TakeLoan(ctx context.Context, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/loan/take", nil, idem)
}

func (c *Client) RepayLoan(ctx context.Context, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/loan/repay", nil, idem)
}

func (c *Client) RecordFlow(ctx context.Context, amount int64, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPost, "/v1/flows", map[string]any{"amount": amount}, idem)
}

func (c *Client) SetCash(ctx context.Context, value int64, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPut, "/v1/cash", map[string]any{"value": value}, idem)
}

func (c *Client) SetSalary(ctx context.Context, value int64, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPut, "/v1/salary", map[string]any{"value": value}, idem)
}

func (c *Client) SetExpenses(ctx context.Context, value int64, idem string) (CommandResult, error) {
	return c.command(ctx, http.MethodPut, "/v1/expenses", map[string]any{"value": value}, idem)
}

// Do sends a raw command. It is used to replay queued writes.
func (c *Client) Do(ctx context.Context, method, path string, body map[string]any, idem string) (CommandResult, error) {
	var in any
	if len(body) > 0 {
		in = body
	}
	return c.command(ctx, method, path, in, idem)
}

func RealEstateBody(cmd game.BuyRealEstate) map[string]any {
	return map[string]any{
		"property_type": cmd.PropertyType,
		"units":         cmd.Units,
		"price":         cmd.Price,
		"down_payment":  cmd.DownPayment,
		"cashflow":      cmd.Cashflow,
	}
}

func StockBody(cmd game.BuyStock) map[string]any {
	return map[string]any{"ticker": cmd.Ticker, "quantity": cmd.Quantity, "price": cmd.Price}
}

func GoldBody(cmd game.BuyGold) map[string]any {
	return map[string]any{"quantity": cmd.Quantity, "price": cmd.Price}
}

func SellBody(cmd game.SellAsset) map[string]any {
	return map[string]any{"price": cmd.Price, "quantity": cmd.Quantity}
}

func SellPath(index int) string {
	return fmt.Sprintf("/v1/assets/%d/sell", index)
}

func (c *Client) command(ctx context.Context, method, path string, in any, idem string) (CommandResult, error) {
	var out CommandResult
	err := c.jsonRequest(ctx, method, path, in, &out, idem)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
