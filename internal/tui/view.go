package tui

import (
	"fmt"
	"strings"

	"cashflow/internal/game"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cash Flow"))
	b.WriteString("\n")
	if m.banner.text != "" {
		style := bannerInfoStyle
		if m.banner.kind == bannerError {
			style = bannerErrorStyle
		}
		b.WriteString(style.Render(m.banner.text))
	}
	b.WriteString("\n\n")

	switch m.screen {
	case screenDashboard:
		b.WriteString(m.dashboardView())
	default:
		b.WriteString(m.formView())
	}
	return b.String()
}

func (m Model) dashboardView() string {
	d := m.session.Dashboard()

	rows := []string{
		sectionStyle.Render("Finances"),
		row("Cash", valueStyle.Render(game.FormatAmount(d.Cash))),
		row("Salary", valueStyle.Render(game.FormatAmount(d.Salary))),
		row("Passive income", amountStyle(d.PassiveIncome).Render(game.FormatAmount(d.PassiveIncome))),
		row("Total income", valueStyle.Render(game.FormatAmount(d.TotalIncome))),
		row("Expenses", valueStyle.Render(game.FormatAmount(d.Expenses))),
		row("Monthly cashflow", amountStyle(d.MonthlyCashflow).Render(game.FormatAmount(d.MonthlyCashflow))),
	}
	if d.LoanPrincipal > 0 {
		rows = append(rows, row("Loan", valueStyle.Render(fmt.Sprintf("%s (%s/month)",
			game.FormatAmount(d.LoanPrincipal), game.FormatAmount(d.LoanCarryingCost)))))
	}
	if d.PassiveShortfall == 0 && d.Expenses > 0 {
		rows = append(rows, positiveStyle.Render("Passive income covers your expenses!"))
	} else {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("%s more passive income to leave the rat race.", game.FormatAmount(d.PassiveShortfall))))
	}
	finances := panelStyle.Render(strings.Join(rows, "\n"))

	assetRows := []string{sectionStyle.Render("Assets")}
	if len(d.Assets) == 0 {
		assetRows = append(assetRows, mutedStyle.Render("No assets yet. Press b to buy."))
	}
	for _, a := range d.Assets {
		line := assetLine(a)
		if a.Index == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		assetRows = append(assetRows, line)
	}
	assets := panelStyle.Render(strings.Join(assetRows, "\n"))

	var body string
	if m.width > 0 && m.width < 90 {
		body = lipgloss.JoinVertical(lipgloss.Left, finances, assets)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, finances, " ", assets)
	}
	help := helpStyle.Render("p payday • b buy • s sell • l loan • r repay • f flow • c cash • +/- salary • [/] expenses • ↑/↓ select • q quit")
	return body + "\n" + help
}

func (m Model) formView() string {
	var b strings.Builder
	switch m.screen {
	case screenBuy:
		tabs := make([]string, 0, len(buyTabNames))
		for i, name := range buyTabNames {
			if buyTab(i) == m.tab {
				tabs = append(tabs, activeTabStyle.Render(name))
			} else {
				tabs = append(tabs, inactiveTabStyle.Render(name))
			}
		}
		b.WriteString(sectionStyle.Render("Buy"))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	case screenSell:
		title := "Sell"
		if assets := m.session.State().Assets; m.cursor < len(assets) {
			title = "Sell " + assets[m.cursor].Name()
		}
		b.WriteString(sectionStyle.Render(title))
	case screenFlow:
		b.WriteString(sectionStyle.Render("Record income or expense"))
	case screenEditCash:
		b.WriteString(sectionStyle.Render("Edit cash"))
	}
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	help := "tab next • enter submit • esc cancel"
	switch m.screen {
	case screenBuy:
		help += " • ctrl+t switch tab"
	case screenFlow:
		help += " • ↑/↓ ±100"
	}
	b.WriteString(helpStyle.Render(help))
	return panelStyle.Render(b.String())
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func assetLine(a game.AssetView) string {
	switch a.Kind {
	case game.KindRealEstate:
		return fmt.Sprintf("%d. %s  %s/month", a.Index+1, a.Name, game.FormatAmount(a.MonthlyCashflow))
	default:
		return fmt.Sprintf("%d. %s  %d @ %s", a.Index+1, a.Name, a.Quantity, game.FormatAmount(a.UnitPrice))
	}
}
