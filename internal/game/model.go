package game

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

const (
	DefaultCash     = int64(5_000)
	DefaultSalary   = int64(3_000)
	DefaultExpenses = int64(2_500)

	LoanIncrement    = int64(1_000)
	LoanCarryingCost = LoanIncrement / 10 // folded into expenses per draw.

	// AdjustStep is the +/- step for salary, expenses and ad-hoc flows.
	AdjustStep = int64(100)

	// MaxAmount is the largest magnitude any stored amount may reach. It keeps
	// the amount in minor units within int64 when formatting.
	MaxAmount = int64(math.MaxInt64 / 100)
)

var (
	ErrValidation           = errors.New("invalid input")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrOverSell             = errors.New("cannot sell more than held")
	ErrNoLoanOutstanding    = errors.New("no loan outstanding")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
)

var (
	PropertyTypes = []string{"MFH", "EFH", "ETW", "Apartment", "Business"}
	StockTickers  = []string{"OK4U", "MYT4U", "ON2U", "GRO4US"}
	StockPrices   = []int64{5, 10, 20, 30, 40}
)

// repayRejected is returned by RepayLoan. Its message covers both causes,
// while errors.Is still reports which ones actually applied.
type repayRejected struct {
	causes []error
}

func (e *repayRejected) Error() string {
	return "cannot repay loan: either no loan is outstanding or there is not enough cash"
}

func (e *repayRejected) Unwrap() []error {
	return e.causes
}

func requirePositive(field string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be > 0", ErrValidation, field)
	}
	return requireInRange(field, v)
}

func requireInRange(field string, v int64) error {
	if v > MaxAmount || v < -MaxAmount {
		return fmt.Errorf("%w: %s is too large", ErrValidation, field)
	}
	return nil
}

func requireName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return nil
}

func totalCost(quantity, unitPrice int64) (int64, error) {
	return bounded(new(big.Int).Mul(big.NewInt(quantity), big.NewInt(unitPrice)))
}

func checkedAdd(a, b int64) (int64, error) {
	return bounded(new(big.Int).Add(big.NewInt(a), big.NewInt(b)))
}

var maxAmountBig = big.NewInt(MaxAmount)

func bounded(v *big.Int) (int64, error) {
	if new(big.Int).Abs(v).Cmp(maxAmountBig) > 0 {
		return 0, fmt.Errorf("%w: total overflow", ErrValidation)
	}
	return v.Int64(), nil
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampAmount(v int64) int64 {
	return min(clampNonNegative(v), MaxAmount)
}

func realEstateLabel(propertyType string, units int64) string {
	return fmt.Sprintf("%s (%d units)", strings.TrimSpace(propertyType), units)
}
