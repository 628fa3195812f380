package game

// Finances is the player's stored snapshot. Passive income is not part of it;
// it is derived from the asset list (see Session.PassiveIncome).
type Finances struct {
	Cash     int64 `json:"cash"`
	Salary   int64 `json:"salary"`
	Expenses int64 `json:"expenses"`
}

type Loan struct {
	Principal int64 `json:"principal"`
}

// CarryingCost is informational only. The real cost is already part of
// Finances.Expenses.
func (l Loan) CarryingCost() int64 {
	if l.Principal <= 0 {
		return 0
	}
	return l.Principal / 10
}

type AssetKind string

const (
	KindRealEstate AssetKind = "real_estate"
	KindStock      AssetKind = "stock"
	KindGold       AssetKind = "gold"
)

// Asset is one of RealEstate, StockHolding or GoldHolding.
type Asset interface {
	Kind() AssetKind
	Name() string
	isAsset()
}

type RealEstate struct {
	Label           string
	PropertyType    string
	PurchasePrice   int64
	DownPayment     int64
	MonthlyCashflow int64
	Units           int64
}

type StockHolding struct {
	Ticker        string
	Quantity      int64
	PricePerShare int64
}

type GoldHolding struct {
	Quantity     int64
	PricePerUnit int64
}

func (RealEstate) Kind() AssetKind   { return KindRealEstate }
func (StockHolding) Kind() AssetKind { return KindStock }
func (GoldHolding) Kind() AssetKind  { return KindGold }

func (r RealEstate) Name() string   { return r.Label }
func (s StockHolding) Name() string { return s.Ticker }
func (GoldHolding) Name() string    { return "Gold coin" }

func (RealEstate) isAsset()   {}
func (StockHolding) isAsset() {}
func (GoldHolding) isAsset()  {}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	Finances      Finances
	PassiveIncome int64
	Assets        []Asset
	Loan          Loan
}

type Dashboard struct {
	Cash             int64       `json:"cash"`
	Salary           int64       `json:"salary"`
	Expenses         int64       `json:"expenses"`
	PassiveIncome    int64       `json:"passive_income"`
	TotalIncome      int64       `json:"total_income"`
	MonthlyCashflow  int64       `json:"monthly_cashflow"`
	PassiveShortfall int64       `json:"passive_shortfall"`
	LoanPrincipal    int64       `json:"loan_principal"`
	LoanCarryingCost int64       `json:"loan_carrying_cost"`
	Assets           []AssetView `json:"assets"`
}

type AssetView struct {
	Index           int       `json:"index"`
	Kind            AssetKind `json:"kind"`
	Name            string    `json:"name"`
	PurchasePrice   int64     `json:"purchase_price,omitempty"`
	DownPayment     int64     `json:"down_payment,omitempty"`
	MonthlyCashflow int64     `json:"monthly_cashflow,omitempty"`
	Units           int64     `json:"units,omitempty"`
	Quantity        int64     `json:"quantity,omitempty"`
	UnitPrice       int64     `json:"unit_price,omitempty"`
}

type Catalog struct {
	PropertyTypes []string `json:"property_types"`
	StockTickers  []string `json:"stock_tickers"`
	StockPrices   []int64  `json:"stock_prices"`
}

type Action string

const (
	ActionPayday        Action = "payday"
	ActionBuyRealEstate Action = "buy_real_estate"
	ActionBuyStock      Action = "buy_stock"
	ActionBuyGold       Action = "buy_gold"
	ActionSell          Action = "sell"
	ActionTakeLoan      Action = "take_loan"
	ActionRepayLoan     Action = "repay_loan"
	ActionFlow          Action = "flow"
	ActionSetCash       Action = "set_cash"
	ActionSetSalary     Action = "set_salary"
	ActionSetExpenses   Action = "set_expenses"
)

// Confirmation describes an accepted command. Message is empty for direct
// edits.
type Confirmation struct {
	Action    Action `json:"action"`
	Message   string `json:"message"`
	Item      string `json:"item,omitempty"`
	Quantity  int64  `json:"quantity,omitempty"`
	Amount    int64  `json:"amount"`
	Discarded int64  `json:"discarded,omitempty"`
	Cash      int64  `json:"cash"`
}

func NewAssetView(index int, a Asset) AssetView {
	v := AssetView{Index: index, Kind: a.Kind(), Name: a.Name()}
	switch t := a.(type) {
	case RealEstate:
		v.PurchasePrice = t.PurchasePrice
		v.DownPayment = t.DownPayment
		v.MonthlyCashflow = t.MonthlyCashflow
		v.Units = t.Units
	case StockHolding:
		v.Quantity = t.Quantity
		v.UnitPrice = t.PricePerShare
	case GoldHolding:
		v.Quantity = t.Quantity
		v.UnitPrice = t.PricePerUnit
	}
	return v
}

func DefaultCatalog() Catalog {
	return Catalog{
		PropertyTypes: append([]string(nil), PropertyTypes...),
		StockTickers:  append([]string(nil), StockTickers...),
		StockPrices:   append([]int64(nil), StockPrices...),
	}
}
