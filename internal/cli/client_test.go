package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cashflow/internal/api"
	"cashflow/internal/config"
	"cashflow/internal/game"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := api.New(config.APIConfig{RequestTimeout: 5 * time.Second, IdempotencySize: 16}, logger, game.NewDefaultSession())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/")
}

func TestClientCommands(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	state, err := c.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if state.Cash != game.DefaultCash {
		t.Fatalf("cash=%d", state.Cash)
	}

	res, err := c.BuyStock(ctx, game.BuyStock{Ticker: "GRO4US", Quantity: 5, Price: 40}, "s1")
	if err != nil {
		t.Fatalf("buy stock: %v", err)
	}
	if res.State.Cash != 4_800 || res.Confirmation.Action != game.ActionBuyStock {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := c.BuyGold(ctx, game.BuyGold{Quantity: 2, Price: 100}, "g1"); err != nil {
		t.Fatalf("buy gold: %v", err)
	}
	if _, err := c.BuyRealEstate(ctx, game.BuyRealEstate{PropertyType: "EFH", Units: 1, Price: 50_000, DownPayment: 2_000, Cashflow: 150}, "r1"); err != nil {
		t.Fatalf("buy real estate: %v", err)
	}

	res, err = c.Sell(ctx, game.SellAsset{Index: 1, Price: 150}, "sell1")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if res.Confirmation.Quantity != 2 || res.State.Cash != 2_900 {
		t.Fatalf("unexpected sell result: %+v", res)
	}

	if _, err := c.TakeLoan(ctx, "l1"); err != nil {
		t.Fatalf("take loan: %v", err)
	}
	if _, err := c.RepayLoan(ctx, "l2"); err != nil {
		t.Fatalf("repay loan: %v", err)
	}
	if _, err := c.RecordFlow(ctx, 100, "f1"); err != nil {
		t.Fatalf("flow: %v", err)
	}
	if _, err := c.SetSalary(ctx, 3_500, "e1"); err != nil {
		t.Fatalf("set salary: %v", err)
	}
	if _, err := c.SetExpenses(ctx, 2_000, "e2"); err != nil {
		t.Fatalf("set expenses: %v", err)
	}
	res, err = c.Payday(ctx, "p1")
	if err != nil {
		t.Fatalf("payday: %v", err)
	}
	// 3000 cash + 3500 salary + 150 passive - 2000 expenses
	if res.State.Cash != 4_650 || res.State.PassiveIncome != 150 {
		t.Fatalf("unexpected payday state: %+v", res.State)
	}

	if _, err := c.SetCash(ctx, 10, "c1"); err != nil {
		t.Fatalf("set cash: %v", err)
	}
	cat, err := c.Catalog(ctx)
	if err != nil || len(cat.StockTickers) == 0 {
		t.Fatalf("catalog: %+v err=%v", cat, err)
	}
}

func TestClientStatusError(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.RepayLoan(ctx, "")
	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if status.Code != http.StatusUnprocessableEntity || status.Message() == "" {
		t.Fatalf("unexpected status error: %+v", status)
	}
	if IsUnreachable(err) {
		t.Fatalf("API rejection must not count as unreachable")
	}

	if _, err := c.Payday(ctx, "dup"); err != nil {
		t.Fatalf("payday: %v", err)
	}
	_, err = c.Payday(ctx, "dup")
	if !errors.As(err, &status) || status.Code != http.StatusConflict {
		t.Fatalf("expected 409 on replay, got %v", err)
	}
}

func TestIsUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Dashboard(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if !IsUnreachable(err) {
		t.Fatalf("expected unreachable, got %v", err)
	}
	if IsUnreachable(nil) {
		t.Fatalf("nil error is reachable")
	}
}

func TestStatusErrorRetryable(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusConflict, false},
		{http.StatusUnprocessableEntity, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tc := range cases {
		if got := (&StatusError{Code: tc.code}).Retryable(); got != tc.want {
			t.Fatalf("code %d: retryable=%v want %v", tc.code, got, tc.want)
		}
		if got := ShouldRetry(fmt.Errorf("wrapped: %w", &StatusError{Code: tc.code})); got != tc.want {
			t.Fatalf("code %d: should retry=%v want %v", tc.code, got, tc.want)
		}
	}
	if ShouldRetry(context.Canceled) {
		t.Fatalf("canceled request must not be queued")
	}
	if !ShouldRetry(errors.New("dial tcp: connection refused")) {
		t.Fatalf("transport errors should be queued")
	}
}
