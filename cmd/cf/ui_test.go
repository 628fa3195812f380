package main

import (
	"strings"
	"testing"

	"cashflow/internal/game"

	"github.com/fatih/color"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"MFH (2 units)", 24, "MFH (2 units)"},
		{"Apartment (12 units)", 10, "Apartm..."},
		{"  Gold coin ", 0, "Gold coin"},
		{"abcdef", 2, "ab"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Fatalf("truncate(%q,%d)=%q want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestMatchOption(t *testing.T) {
	got, ok := matchOption(game.StockTickers, "gro4us")
	if !ok || got != "GRO4US" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if _, ok := matchOption(game.PropertyTypes, "castle"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestAssetRow(t *testing.T) {
	color.NoColor = true
	row := assetRow(game.NewAssetView(0, game.RealEstate{Label: "EFH (1 units)", PropertyType: "EFH", PurchasePrice: 80_000, DownPayment: 4_000, MonthlyCashflow: 250, Units: 1}))
	if !strings.Contains(row, "real estate") || !strings.Contains(row, game.FormatAmount(250)) {
		t.Fatalf("unexpected row: %q", row)
	}
	row = assetRow(game.NewAssetView(3, game.StockHolding{Ticker: "ON2U", Quantity: 7, PricePerShare: 10}))
	if !strings.HasPrefix(row, "3 ") || !strings.Contains(row, "ON2U") || !strings.HasSuffix(row, "-") {
		t.Fatalf("unexpected row: %q", row)
	}
}

func TestColorizeAmountPlain(t *testing.T) {
	color.NoColor = true
	if got := colorizeAmount(-40); got != game.FormatAmount(-40) {
		t.Fatalf("got %q", got)
	}
}

func TestPriceOptions(t *testing.T) {
	got := priceOptions()
	if len(got) != len(game.StockPrices) || got[0] != "5" {
		t.Fatalf("unexpected options: %v", got)
	}
}
