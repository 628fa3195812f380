package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cashflow/internal/game"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	alertTimeout    = 3 * time.Second
	purchaseTimeout = 2 * time.Second
)

type screen int

const (
	screenDashboard screen = iota
	screenBuy
	screenSell
	screenFlow
	screenEditCash
)

type buyTab int

const (
	tabRealEstate buyTab = iota
	tabStock
	tabGold
)

var buyTabNames = []string{"Real estate", "Stocks", "Gold"}

type bannerKind int

const (
	bannerInfo bannerKind = iota
	bannerError
)

type banner struct {
	text string
	kind bannerKind
	seq  int
}

// dismissMsg clears the banner it was scheduled for. A newer banner has a
// higher seq and survives older dismissals.
type dismissMsg struct{ seq int }

// Model drives one local session. The session is mutated immediately when a
// command is accepted; banners only trail behind.
type Model struct {
	session *game.Session
	screen  screen
	tab     buyTab
	inputs  []textinput.Model
	focus   int
	cursor  int
	banner  banner
	seq     int
	width   int
}

func New(session *game.Session) Model {
	if session == nil {
		session = game.NewDefaultSession()
	}
	return Model{session: session}
}

func Run(ctx context.Context, session *game.Session) error {
	p := tea.NewProgram(New(session), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case dismissMsg:
		if msg.seq == m.banner.seq {
			m.banner = banner{}
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenDashboard {
			return m.updateDashboard(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	assets := len(m.session.State().Assets)
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < assets-1 {
			m.cursor++
		}
	case "p":
		return m.execute(game.Payday{})
	case "l":
		return m.execute(game.TakeLoan{})
	case "r":
		return m.execute(game.RepayLoan{})
	case "+", "=":
		return m.execute(adjustSalary(m.session, game.AdjustStep))
	case "-", "_":
		return m.execute(adjustSalary(m.session, -game.AdjustStep))
	case "]":
		return m.execute(adjustExpenses(m.session, game.AdjustStep))
	case "[":
		return m.execute(adjustExpenses(m.session, -game.AdjustStep))
	case "b":
		return m.openBuy(m.tab)
	case "s":
		if assets == 0 {
			return m.alert("You have no assets to sell.", bannerError, alertTimeout)
		}
		return m.openForm(screenSell, sellInputs())
	case "f":
		return m.openForm(screenFlow, flowInputs())
	case "c":
		return m.openForm(screenEditCash, cashInputs(m.session.State().Finances.Cash))
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == screenFlow {
		switch msg.String() {
		case "up":
			return m.stepFlow(game.AdjustStep)
		case "down":
			return m.stepFlow(-game.AdjustStep)
		}
	}
	switch msg.String() {
	case "esc":
		return m.closeForm(), nil
	case "tab", "down":
		return m.focusField(m.focus + 1), nil
	case "shift+tab", "up":
		return m.focusField(m.focus - 1), nil
	case "ctrl+t":
		if m.screen == screenBuy {
			return m.openBuy((m.tab + 1) % buyTab(len(buyTabNames)))
		}
		return m, nil
	case "enter":
		if m.focus < len(m.inputs)-1 {
			return m.focusField(m.focus + 1), nil
		}
		return m.submit()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// stepFlow nudges the flow amount. An empty field counts as zero.
func (m Model) stepFlow(delta int64) (tea.Model, tea.Cmd) {
	current := int64(0)
	if raw := m.inputs[0].Value(); raw != "" {
		v, err := game.ParseWhole("amount", raw)
		if err != nil {
			return m.alert(err.Error(), bannerError, alertTimeout)
		}
		current = v
	}
	next := current + delta
	if next > game.MaxAmount || next < -game.MaxAmount {
		return m, nil
	}
	m.inputs[0].SetValue(strconv.FormatInt(next, 10))
	m.inputs[0].CursorEnd()
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	cmd, err := m.formCommand()
	if err != nil {
		return m.alert(err.Error(), bannerError, alertTimeout)
	}
	next, tick := m.execute(cmd)
	nm := next.(Model)
	if nm.banner.kind == bannerError {
		// Keep the form so the player can correct it.
		return nm, tick
	}
	return nm.closeForm(), tick
}

// formCommand turns the open form into a command.
func (m Model) formCommand() (game.Command, error) {
	v := func(i int) string { return m.inputs[i].Value() }
	switch m.screen {
	case screenBuy:
		switch m.tab {
		case tabRealEstate:
			return game.RealEstateForm{PropertyType: v(0), Units: v(1), Price: v(2), DownPayment: v(3), Cashflow: v(4)}.Command()
		case tabStock:
			return game.StockForm{Ticker: v(0), Quantity: v(1), Price: v(2)}.Command()
		default:
			return game.GoldForm{Quantity: v(0), Price: v(1)}.Command()
		}
	case screenSell:
		return game.SellForm{Price: v(0), Quantity: v(1)}.Command(m.cursor)
	case screenFlow:
		amount, err := game.ParseWhole("amount", v(0))
		if err != nil {
			return nil, err
		}
		return game.RecordFlow{Amount: amount}, nil
	case screenEditCash:
		value, err := game.ParseWhole("cash", v(0))
		if err != nil {
			return nil, err
		}
		return game.SetCash{Value: value}, nil
	}
	return nil, fmt.Errorf("%w: no form open", game.ErrValidation)
}

func (m Model) execute(cmd game.Command) (tea.Model, tea.Cmd) {
	out, err := m.session.Execute(cmd)
	if err != nil {
		return m.alert(err.Error(), bannerError, alertTimeout)
	}
	if n := len(m.session.State().Assets); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	timeout := alertTimeout
	switch out.Action {
	case game.ActionBuyRealEstate, game.ActionBuyStock, game.ActionBuyGold:
		timeout = purchaseTimeout
	}
	return m.alert(describe(out), bannerInfo, timeout)
}

func (m Model) alert(text string, kind bannerKind, after time.Duration) (tea.Model, tea.Cmd) {
	m.seq++
	m.banner = banner{text: text, kind: kind, seq: m.seq}
	seq := m.seq
	return m, tea.Tick(after, func(time.Time) tea.Msg { return dismissMsg{seq: seq} })
}

func (m Model) openBuy(tab buyTab) (tea.Model, tea.Cmd) {
	m.tab = tab
	switch tab {
	case tabRealEstate:
		return m.openForm(screenBuy, realEstateInputs())
	case tabStock:
		return m.openForm(screenBuy, stockInputs())
	default:
		return m.openForm(screenBuy, goldInputs())
	}
}

func (m Model) openForm(s screen, inputs []textinput.Model) (tea.Model, tea.Cmd) {
	m.screen = s
	m.inputs = inputs
	return m.focusField(0), textinput.Blink
}

func (m Model) closeForm() Model {
	m.screen = screenDashboard
	m.inputs = nil
	m.focus = 0
	return m
}

func (m Model) focusField(i int) Model {
	if len(m.inputs) == 0 {
		return m
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func adjustSalary(s *game.Session, delta int64) game.Command {
	return game.SetSalary{Value: s.State().Finances.Salary + delta}
}

func adjustExpenses(s *game.Session, delta int64) game.Command {
	return game.SetExpenses{Value: s.State().Finances.Expenses + delta}
}

func describe(out game.Confirmation) string {
	if out.Message != "" {
		return out.Message
	}
	switch out.Action {
	case game.ActionSetCash:
		return "Cash set to " + game.FormatAmount(out.Amount) + "."
	case game.ActionSetSalary:
		return "Salary set to " + game.FormatAmount(out.Amount) + "."
	case game.ActionSetExpenses:
		return "Expenses set to " + game.FormatAmount(out.Amount) + "."
	}
	return "Done."
}

func newInput(label, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = label + ": "
	ti.Placeholder = placeholder
	ti.CharLimit = 24
	ti.Width = 24
	return ti
}

func realEstateInputs() []textinput.Model {
	kind := newInput("Property type", game.PropertyTypes[0])
	kind.ShowSuggestions = true
	kind.SetSuggestions(game.PropertyTypes)
	return []textinput.Model{
		kind,
		newInput("Units", "1"),
		newInput("Purchase price", "100000"),
		newInput("Down payment", "5000"),
		newInput("Monthly cashflow", "200"),
	}
}

func stockInputs() []textinput.Model {
	ticker := newInput("Ticker", game.StockTickers[0])
	ticker.ShowSuggestions = true
	ticker.SetSuggestions(game.StockTickers)
	prices := make([]string, 0, len(game.StockPrices))
	for _, p := range game.StockPrices {
		prices = append(prices, strconv.FormatInt(p, 10))
	}
	price := newInput("Price per share", prices[0])
	price.ShowSuggestions = true
	price.SetSuggestions(prices)
	return []textinput.Model{ticker, newInput("Shares", "10"), price}
}

func goldInputs() []textinput.Model {
	return []textinput.Model{newInput("Coins", "1"), newInput("Price per coin", "500")}
}

func sellInputs() []textinput.Model {
	return []textinput.Model{newInput("Sale price", "per unit, total for property"), newInput("Quantity", "all")}
}

func flowInputs() []textinput.Model {
	return []textinput.Model{newInput("Amount", "+income / -expense")}
}

func cashInputs(current int64) []textinput.Model {
	in := newInput("Cash", "0")
	in.SetValue(strconv.FormatInt(current, 10))
	return []textinput.Model{in}
}
