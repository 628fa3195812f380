package tui

import (
	"strings"
	"testing"

	"cashflow/internal/game"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

func TestPaydayShowsBannerAndDismisses(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, cmd := send(t, m, key("p"))
	if cmd == nil {
		t.Fatalf("expected dismissal tick")
	}
	if got := m.session.State().Finances.Cash; got != 5_500 {
		t.Fatalf("cash=%d want 5500", got)
	}
	if m.banner.kind != bannerInfo || !strings.HasPrefix(m.banner.text, "Payday!") {
		t.Fatalf("unexpected banner: %+v", m.banner)
	}

	first := m.banner.seq
	m, _ = send(t, m, key("l"))
	m, _ = send(t, m, dismissMsg{seq: first})
	if m.banner.text == "" {
		t.Fatalf("stale dismissal cleared a newer banner")
	}
	m, _ = send(t, m, dismissMsg{seq: m.banner.seq})
	if m.banner.text != "" {
		t.Fatalf("banner not dismissed")
	}
}

func TestRejectedCommandShowsError(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, _ = send(t, m, key("r"))
	if m.banner.kind != bannerError {
		t.Fatalf("expected error banner, got %+v", m.banner)
	}
	if m.session.State().Finances.Cash != game.DefaultCash {
		t.Fatalf("rejected repay changed cash")
	}

	m, _ = send(t, m, key("s"))
	if m.screen != screenDashboard || m.banner.kind != bannerError {
		t.Fatalf("sell with no assets should stay on dashboard with an error")
	}
}

func TestSalaryAndExpenseSteps(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, _ = send(t, m, key("+"))
	m, _ = send(t, m, key("]"))
	m, _ = send(t, m, key("]"))
	fin := m.session.State().Finances
	if fin.Salary != 3_100 || fin.Expenses != 2_700 {
		t.Fatalf("unexpected finances: %+v", fin)
	}

	s := game.NewSession(game.Finances{Salary: 50})
	m = New(s)
	m, _ = send(t, m, key("-"))
	if got := s.State().Finances.Salary; got != 0 {
		t.Fatalf("salary=%d want 0", got)
	}
	if !strings.HasPrefix(m.banner.text, "Salary set to") {
		t.Fatalf("unexpected banner: %q", m.banner.text)
	}
}

func TestBuyStockThroughForm(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, _ = send(t, m, key("b"))
	if m.screen != screenBuy || m.tab != tabRealEstate {
		t.Fatalf("expected real estate tab")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.tab != tabStock || len(m.inputs) != 3 {
		t.Fatalf("expected stock tab with 3 inputs, got tab=%d inputs=%d", m.tab, len(m.inputs))
	}

	m.inputs[0].SetValue("ON2U")
	m.inputs[1].SetValue("10")
	m.inputs[2].SetValue("20")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.focus != 2 {
		t.Fatalf("focus=%d want 2", m.focus)
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected dismissal tick")
	}
	if m.screen != screenDashboard {
		t.Fatalf("form should close after a purchase")
	}
	st := m.session.State()
	if st.Finances.Cash != 4_800 || len(st.Assets) != 1 || st.Assets[0].Name() != "ON2U" {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestFailedPurchaseKeepsForm(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, _ = send(t, m, key("b"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.tab != tabGold {
		t.Fatalf("expected gold tab")
	}
	m.inputs[0].SetValue("100")
	m.inputs[1].SetValue("500")
	m = m.focusField(1)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenBuy || m.banner.kind != bannerError {
		t.Fatalf("expected form to stay open with an error")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.screen != screenDashboard || m.inputs != nil {
		t.Fatalf("esc should close the form")
	}
}

func TestSellSelectedAsset(t *testing.T) {
	s := game.NewDefaultSession()
	if _, err := s.Execute(game.BuyGold{Quantity: 2, Price: 100}); err != nil {
		t.Fatalf("buy gold: %v", err)
	}
	if _, err := s.Execute(game.BuyStock{Ticker: "OK4U", Quantity: 5, Price: 10}); err != nil {
		t.Fatalf("buy stock: %v", err)
	}
	m := New(s)
	m, _ = send(t, m, key("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor=%d want 1", m.cursor)
	}
	m, _ = send(t, m, key("s"))
	if m.screen != screenSell {
		t.Fatalf("expected sell screen")
	}
	m.inputs[0].SetValue("20")
	m = m.focusField(1)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	st := s.State()
	if len(st.Assets) != 1 || st.Finances.Cash != 4_800-50+100 {
		t.Fatalf("unexpected state after sale: %+v", st)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor should clamp to remaining assets, got %d", m.cursor)
	}
}

func TestFlowAndCashForms(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, _ = send(t, m, key("f"))
	m.inputs[0].SetValue("-6000")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.session.State().Finances.Cash; got != -1_000 {
		t.Fatalf("cash=%d want -1000", got)
	}
	if !strings.HasPrefix(m.banner.text, "Expense of") {
		t.Fatalf("unexpected banner %q", m.banner.text)
	}

	m, _ = send(t, m, key("c"))
	if m.inputs[0].Value() != "-1000" {
		t.Fatalf("cash form should start with current cash, got %q", m.inputs[0].Value())
	}
	m.inputs[0].SetValue("abc")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.screen != screenEditCash || m.banner.kind != bannerError {
		t.Fatalf("invalid number should keep the form open")
	}
	m.inputs[0].SetValue("750")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.session.State().Finances.Cash; got != 750 {
		t.Fatalf("cash=%d want 750", got)
	}
}

func TestFlowFormStepKeys(t *testing.T) {
	m := New(game.NewDefaultSession())
	m, _ = send(t, m, key("f"))
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}
	m, _ = send(t, m, up)
	m, _ = send(t, m, up)
	m, _ = send(t, m, down)
	if got := m.inputs[0].Value(); got != "100" {
		t.Fatalf("amount=%q want 100", got)
	}
	if !strings.Contains(m.View(), "±100") {
		t.Fatalf("flow form should list the step keys")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.session.State().Finances.Cash; got != 5_100 {
		t.Fatalf("cash=%d want 5100", got)
	}

	m, _ = send(t, m, key("f"))
	m.inputs[0].SetValue("-50")
	m, _ = send(t, m, down)
	if got := m.inputs[0].Value(); got != "-150" {
		t.Fatalf("amount=%q want -150", got)
	}
	m.inputs[0].SetValue("abc")
	m, _ = send(t, m, up)
	if m.banner.kind != bannerError || m.inputs[0].Value() != "abc" {
		t.Fatalf("stepping an invalid amount should report an error and keep the text")
	}
}

func TestViewRenders(t *testing.T) {
	s := game.NewDefaultSession()
	if _, err := s.Execute(game.BuyRealEstate{PropertyType: "ETW", Units: 1, Price: 60_000, DownPayment: 3_000, Cashflow: 200}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	m := New(s)
	out := m.View()
	if !strings.Contains(out, "ETW (1 units)") || !strings.Contains(out, "Cash Flow") {
		t.Fatalf("dashboard view missing content:\n%s", out)
	}
	m, _ = send(t, m, key("b"))
	if out := m.View(); !strings.Contains(out, "Real estate") {
		t.Fatalf("buy view missing tabs:\n%s", out)
	}
}
