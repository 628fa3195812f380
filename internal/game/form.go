package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Form types carry the raw text of input fields. Their Command methods
// produce typed commands or an ErrValidation.

type RealEstateForm struct {
	PropertyType string
	Units        string
	Price        string
	DownPayment  string
	Cashflow     string
}

func (f RealEstateForm) Command() (BuyRealEstate, error) {
	if err := requireName("property type", f.PropertyType); err != nil {
		return BuyRealEstate{}, err
	}
	price, err := ParseWhole("price", f.Price)
	if err != nil {
		return BuyRealEstate{}, err
	}
	down, err := ParseWhole("down payment", f.DownPayment)
	if err != nil {
		return BuyRealEstate{}, err
	}
	cashflow, err := ParseWhole("monthly cashflow", f.Cashflow)
	if err != nil {
		return BuyRealEstate{}, err
	}
	units, err := ParseWhole("units", f.Units)
	if err != nil || units < 1 {
		units = 1
	}
	return BuyRealEstate{
		PropertyType: strings.TrimSpace(f.PropertyType),
		Units:        units,
		Price:        price,
		DownPayment:  down,
		Cashflow:     cashflow,
	}, nil
}

type StockForm struct {
	Ticker   string
	Quantity string
	Price    string
}

func (f StockForm) Command() (BuyStock, error) {
	if err := requireName("ticker", f.Ticker); err != nil {
		return BuyStock{}, err
	}
	qty, err := ParseWhole("quantity", f.Quantity)
	if err != nil {
		return BuyStock{}, err
	}
	price, err := ParseWhole("price", f.Price)
	if err != nil {
		return BuyStock{}, err
	}
	return BuyStock{Ticker: strings.ToUpper(strings.TrimSpace(f.Ticker)), Quantity: qty, Price: price}, nil
}

type GoldForm struct {
	Quantity string
	Price    string
}

func (f GoldForm) Command() (BuyGold, error) {
	qty, err := ParseWhole("quantity", f.Quantity)
	if err != nil {
		return BuyGold{}, err
	}
	price, err := ParseWhole("price", f.Price)
	if err != nil {
		return BuyGold{}, err
	}
	return BuyGold{Quantity: qty, Price: price}, nil
}

// SellForm leaves Quantity at zero ("sell everything") when the field is
// empty or not a number.
type SellForm struct {
	Price    string
	Quantity string
}

func (f SellForm) Command(index int) (SellAsset, error) {
	price, err := ParseWhole("sale price", f.Price)
	if err != nil {
		return SellAsset{}, err
	}
	qty, err := ParseWhole("quantity", f.Quantity)
	if err != nil {
		qty = 0
	}
	return SellAsset{Index: index, Price: price, Quantity: qty}, nil
}

// ParseWhole parses a signed whole number, tolerating surrounding spaces.
func ParseWhole(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", ErrValidation, field)
	}
	if err := requireInRange(field, v); err != nil {
		return 0, err
	}
	return v, nil
}
