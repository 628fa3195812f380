package game

import (
	"fmt"
	"strings"
)

// Session owns one game: finances, the ordered asset list and the loan.
// It is not safe for concurrent use; callers that share a Session must
// serialize Execute calls.
type Session struct {
	fin    Finances
	assets []Asset
	loan   Loan
}

// Command is implemented by every state transition. A command either
// returns an error and leaves the session untouched, or applies fully.
type Command interface {
	apply(s *Session) (Confirmation, error)
}

func NewSession(start Finances) *Session {
	return &Session{
		fin: Finances{
			Cash:     clampAmount(start.Cash),
			Salary:   clampAmount(start.Salary),
			Expenses: clampAmount(start.Expenses),
		},
	}
}

func NewDefaultSession() *Session {
	return NewSession(Finances{Cash: DefaultCash, Salary: DefaultSalary, Expenses: DefaultExpenses})
}

func (s *Session) Execute(cmd Command) (Confirmation, error) {
	if cmd == nil {
		return Confirmation{}, fmt.Errorf("%w: no command", ErrValidation)
	}
	out, err := cmd.apply(s)
	if err != nil {
		return Confirmation{}, err
	}
	out.Cash = s.fin.Cash
	return out, nil
}

func (s *Session) PassiveIncome() int64 {
	return passiveIncome(s.assets)
}

func passiveIncome(assets []Asset) int64 {
	var total int64
	for _, a := range assets {
		if re, ok := a.(RealEstate); ok {
			total += re.MonthlyCashflow
		}
	}
	return total
}

func (s *Session) State() Snapshot {
	return Snapshot{
		Finances:      s.fin,
		PassiveIncome: s.PassiveIncome(),
		Assets:        append([]Asset(nil), s.assets...),
		Loan:          s.loan,
	}
}

func (s *Session) Dashboard() Dashboard {
	passive := s.PassiveIncome()
	d := Dashboard{
		Cash:             s.fin.Cash,
		Salary:           s.fin.Salary,
		Expenses:         s.fin.Expenses,
		PassiveIncome:    passive,
		TotalIncome:      s.fin.Salary + passive,
		MonthlyCashflow:  s.fin.Salary + passive - s.fin.Expenses,
		PassiveShortfall: clampNonNegative(s.fin.Expenses - passive),
		LoanPrincipal:    s.loan.Principal,
		LoanCarryingCost: s.loan.CarryingCost(),
		Assets:           make([]AssetView, 0, len(s.assets)),
	}
	for i, a := range s.assets {
		d.Assets = append(d.Assets, NewAssetView(i, a))
	}
	return d
}

func (s *Session) removeAt(i int) {
	s.assets = append(s.assets[:i:i], s.assets[i+1:]...)
}

// Payday credits salary plus passive income minus expenses. Cash is floored
// at zero; the floored amount is reported as Discarded.
type Payday struct{}

func (Payday) apply(s *Session) (Confirmation, error) {
	income, err := checkedAdd(s.fin.Salary, s.PassiveIncome())
	if err != nil {
		return Confirmation{}, err
	}
	net, err := checkedAdd(income, -s.fin.Expenses)
	if err != nil {
		return Confirmation{}, err
	}
	next := s.fin.Cash + net
	if next > MaxAmount {
		return Confirmation{}, fmt.Errorf("%w: total overflow", ErrValidation)
	}
	out := Confirmation{Action: ActionPayday, Amount: net}
	if next < 0 {
		out.Discarded = -next
		next = 0
	}
	s.fin.Cash = next
	out.Message = fmt.Sprintf("Payday! You received %s.", FormatAmount(net))
	if out.Discarded > 0 {
		out.Message += fmt.Sprintf(" Cash cannot drop below zero, %s was written off.", FormatAmount(out.Discarded))
	}
	return out, nil
}

type BuyRealEstate struct {
	PropertyType string
	Units        int64
	Price        int64
	DownPayment  int64
	Cashflow     int64
}

func (c BuyRealEstate) apply(s *Session) (Confirmation, error) {
	if err := requireName("property type", c.PropertyType); err != nil {
		return Confirmation{}, err
	}
	if err := requirePositive("price", c.Price); err != nil {
		return Confirmation{}, err
	}
	if err := requirePositive("down payment", c.DownPayment); err != nil {
		return Confirmation{}, err
	}
	if err := requirePositive("monthly cashflow", c.Cashflow); err != nil {
		return Confirmation{}, err
	}
	units := c.Units
	if units < 1 {
		units = 1
	}
	if s.fin.Cash < c.DownPayment {
		return Confirmation{}, fmt.Errorf("%w: down payment %s exceeds cash %s", ErrInsufficientFunds, FormatAmount(c.DownPayment), FormatAmount(s.fin.Cash))
	}
	if _, err := checkedAdd(s.PassiveIncome(), c.Cashflow); err != nil {
		return Confirmation{}, err
	}

	property := RealEstate{
		Label:           realEstateLabel(c.PropertyType, units),
		PropertyType:    strings.TrimSpace(c.PropertyType),
		PurchasePrice:   c.Price,
		DownPayment:     c.DownPayment,
		MonthlyCashflow: c.Cashflow,
		Units:           units,
	}
	s.assets = append(s.assets, property)
	s.fin.Cash -= c.DownPayment
	return Confirmation{
		Action:   ActionBuyRealEstate,
		Item:     property.Label,
		Quantity: units,
		Amount:   c.DownPayment,
		Message: fmt.Sprintf("You bought %s for a down payment of %s. It generates %s per month.",
			property.Label, FormatAmount(c.DownPayment), FormatAmount(c.Cashflow)),
	}, nil
}

type BuyStock struct {
	Ticker   string
	Quantity int64
	Price    int64
}

func (c BuyStock) apply(s *Session) (Confirmation, error) {
	if err := requireName("ticker", c.Ticker); err != nil {
		return Confirmation{}, err
	}
	if err := requirePositive("quantity", c.Quantity); err != nil {
		return Confirmation{}, err
	}
	if err := requirePositive("price", c.Price); err != nil {
		return Confirmation{}, err
	}
	cost, err := totalCost(c.Quantity, c.Price)
	if err != nil {
		return Confirmation{}, err
	}
	if s.fin.Cash < cost {
		return Confirmation{}, fmt.Errorf("%w: %d shares cost %s, cash is %s", ErrInsufficientFunds, c.Quantity, FormatAmount(cost), FormatAmount(s.fin.Cash))
	}

	ticker := strings.TrimSpace(c.Ticker)
	s.assets = append(s.assets, StockHolding{Ticker: ticker, Quantity: c.Quantity, PricePerShare: c.Price})
	s.fin.Cash -= cost
	return Confirmation{
		Action:   ActionBuyStock,
		Item:     ticker,
		Quantity: c.Quantity,
		Amount:   cost,
		Message:  fmt.Sprintf("You bought %d shares of %s at %s per share.", c.Quantity, ticker, FormatAmount(c.Price)),
	}, nil
}

type BuyGold struct {
	Quantity int64
	Price    int64
}

func (c BuyGold) apply(s *Session) (Confirmation, error) {
	if err := requirePositive("quantity", c.Quantity); err != nil {
		return Confirmation{}, err
	}
	if err := requirePositive("price", c.Price); err != nil {
		return Confirmation{}, err
	}
	cost, err := totalCost(c.Quantity, c.Price)
	if err != nil {
		return Confirmation{}, err
	}
	if s.fin.Cash < cost {
		return Confirmation{}, fmt.Errorf("%w: %d gold coins cost %s, cash is %s", ErrInsufficientFunds, c.Quantity, FormatAmount(cost), FormatAmount(s.fin.Cash))
	}

	gold := GoldHolding{Quantity: c.Quantity, PricePerUnit: c.Price}
	s.assets = append(s.assets, gold)
	s.fin.Cash -= cost
	return Confirmation{
		Action:   ActionBuyGold,
		Item:     gold.Name(),
		Quantity: c.Quantity,
		Amount:   cost,
		Message:  fmt.Sprintf("You bought %d gold coins for a total of %s.", c.Quantity, FormatAmount(cost)),
	}, nil
}

// SellAsset sells the entry at Index. Price is the lump sum for real estate
// and the unit price otherwise. Quantity 0 sells the whole holding.
type SellAsset struct {
	Index    int
	Price    int64
	Quantity int64
}

func (c SellAsset) apply(s *Session) (Confirmation, error) {
	if c.Index < 0 || c.Index >= len(s.assets) {
		return Confirmation{}, fmt.Errorf("%w: no entry at index %d", ErrAssetNotFound, c.Index)
	}
	if err := requirePositive("sale price", c.Price); err != nil {
		return Confirmation{}, err
	}

	var held int64
	switch a := s.assets[c.Index].(type) {
	case RealEstate:
		cash, err := checkedAdd(s.fin.Cash, c.Price)
		if err != nil {
			return Confirmation{}, err
		}
		s.removeAt(c.Index)
		s.fin.Cash = cash
		return Confirmation{
			Action:   ActionSell,
			Item:     a.Label,
			Quantity: a.Units,
			Amount:   c.Price,
			Message:  fmt.Sprintf("You sold %s for a total of %s.", a.Label, FormatAmount(c.Price)),
		}, nil
	case StockHolding:
		held = a.Quantity
	case GoldHolding:
		held = a.Quantity
	}

	qty := c.Quantity
	if qty == 0 {
		qty = held
	}
	if qty < 0 {
		return Confirmation{}, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	if qty > held {
		return Confirmation{}, fmt.Errorf("%w: requested %d, holding %d", ErrOverSell, qty, held)
	}
	proceeds, err := totalCost(qty, c.Price)
	if err != nil {
		return Confirmation{}, err
	}
	cash, err := checkedAdd(s.fin.Cash, proceeds)
	if err != nil {
		return Confirmation{}, err
	}

	name := s.assets[c.Index].Name()
	if qty == held {
		s.removeAt(c.Index)
	} else {
		switch a := s.assets[c.Index].(type) {
		case StockHolding:
			a.Quantity -= qty
			s.assets[c.Index] = a
		case GoldHolding:
			a.Quantity -= qty
			s.assets[c.Index] = a
		}
	}
	s.fin.Cash = cash
	return Confirmation{
		Action:   ActionSell,
		Item:     name,
		Quantity: qty,
		Amount:   proceeds,
		Message:  fmt.Sprintf("You sold %d %s for a total of %s.", qty, name, FormatAmount(proceeds)),
	}, nil
}

type TakeLoan struct{}

func (TakeLoan) apply(s *Session) (Confirmation, error) {
	principal, err := checkedAdd(s.loan.Principal, LoanIncrement)
	if err != nil {
		return Confirmation{}, err
	}
	cash, err := checkedAdd(s.fin.Cash, LoanIncrement)
	if err != nil {
		return Confirmation{}, err
	}
	expenses, err := checkedAdd(s.fin.Expenses, LoanCarryingCost)
	if err != nil {
		return Confirmation{}, err
	}
	s.loan.Principal = principal
	s.fin.Cash = cash
	s.fin.Expenses = expenses
	return Confirmation{
		Action: ActionTakeLoan,
		Amount: LoanIncrement,
		Message: fmt.Sprintf("You took out a loan of %s. Your monthly expenses rose by %s.",
			FormatAmount(LoanIncrement), FormatAmount(LoanCarryingCost)),
	}, nil
}

type RepayLoan struct{}

func (RepayLoan) apply(s *Session) (Confirmation, error) {
	var causes []error
	if s.loan.Principal < LoanIncrement {
		causes = append(causes, ErrNoLoanOutstanding)
	}
	if s.fin.Cash < LoanIncrement {
		causes = append(causes, ErrInsufficientFunds)
	}
	if len(causes) > 0 {
		return Confirmation{}, &repayRejected{causes: causes}
	}

	s.loan.Principal -= LoanIncrement
	s.fin.Cash -= LoanIncrement
	s.fin.Expenses = clampNonNegative(s.fin.Expenses - LoanCarryingCost)
	return Confirmation{
		Action: ActionRepayLoan,
		Amount: LoanIncrement,
		Message: fmt.Sprintf("You repaid %s of your loan. Your monthly expenses fell by %s.",
			FormatAmount(LoanIncrement), FormatAmount(LoanCarryingCost)),
	}, nil
}

// RecordFlow books a one-off income (Amount >= 0) or expense (Amount < 0).
// Cash is not floored on this path.
type RecordFlow struct {
	Amount int64
}

func (c RecordFlow) apply(s *Session) (Confirmation, error) {
	cash, err := checkedAdd(s.fin.Cash, c.Amount)
	if err != nil {
		return Confirmation{}, err
	}
	s.fin.Cash = cash
	kind := "Income"
	abs := c.Amount
	if c.Amount < 0 {
		kind = "Expense"
		abs = -c.Amount
	}
	return Confirmation{
		Action:  ActionFlow,
		Amount:  c.Amount,
		Message: fmt.Sprintf("%s of %s recorded.", kind, FormatAmount(abs)),
	}, nil
}

type SetCash struct {
	Value int64
}

func (c SetCash) apply(s *Session) (Confirmation, error) {
	v, err := editValue("cash", c.Value)
	if err != nil {
		return Confirmation{}, err
	}
	s.fin.Cash = v
	return Confirmation{Action: ActionSetCash, Amount: s.fin.Cash}, nil
}

type SetSalary struct {
	Value int64
}

func (c SetSalary) apply(s *Session) (Confirmation, error) {
	v, err := editValue("salary", c.Value)
	if err != nil {
		return Confirmation{}, err
	}
	s.fin.Salary = v
	return Confirmation{Action: ActionSetSalary, Amount: s.fin.Salary}, nil
}

type SetExpenses struct {
	Value int64
}

func (c SetExpenses) apply(s *Session) (Confirmation, error) {
	v, err := editValue("expenses", c.Value)
	if err != nil {
		return Confirmation{}, err
	}
	s.fin.Expenses = v
	return Confirmation{Action: ActionSetExpenses, Amount: s.fin.Expenses}, nil
}

// editValue floors negative edits at zero and rejects values too large to
// format.
func editValue(field string, v int64) (int64, error) {
	if v > MaxAmount {
		return 0, fmt.Errorf("%w: %s is too large", ErrValidation, field)
	}
	return clampNonNegative(v), nil
}
