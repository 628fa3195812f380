package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	cl "cashflow/internal/cli"
	"cashflow/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// promptChoice returns the option as listed, matching input case-insensitively.
func promptChoice(label string, options []string, defaultValue string) (string, error) {
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			text = defaultValue
		}
		if opt, ok := matchOption(options, text); ok {
			return opt, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func matchOption(options []string, text string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(text)) {
			return opt, true
		}
	}
	return "", false
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

func renderDashboard(d game.Dashboard) {
	accent.Println("\n== CASH FLOW ==")
	fmt.Printf("Cash:               %s\n", game.FormatAmount(d.Cash))
	fmt.Printf("Salary:             %s\n", game.FormatAmount(d.Salary))
	fmt.Printf("Passive Income:     %s\n", colorizeAmount(d.PassiveIncome))
	fmt.Printf("Total Income:       %s\n", game.FormatAmount(d.TotalIncome))
	fmt.Printf("Expenses:           %s\n", game.FormatAmount(d.Expenses))
	fmt.Printf("Monthly Cashflow:   %s\n", colorizeAmount(d.MonthlyCashflow))
	if d.LoanPrincipal > 0 {
		fmt.Printf("Loan:               %s (%s/month)\n", game.FormatAmount(d.LoanPrincipal), game.FormatAmount(d.LoanCarryingCost))
	}
	if d.PassiveShortfall > 0 {
		printInfo(fmt.Sprintf("Passive income is %s short of covering expenses.", game.FormatAmount(d.PassiveShortfall)))
	} else {
		printSuccess("Passive income covers your expenses. You are out of the rat race!")
	}

	fmt.Println()
	accent.Println("Assets")
	if len(d.Assets) == 0 {
		printInfo("No assets yet.")
		fmt.Println()
		return
	}
	fmt.Printf("%-4s %-12s %-24s %10s %14s %14s\n", "#", "KIND", "NAME", "QTY", "PRICE", "CASHFLOW")
	for _, a := range d.Assets {
		fmt.Println(assetRow(a))
	}
	fmt.Println()
}

func assetRow(a game.AssetView) string {
	qty := a.Quantity
	price := a.UnitPrice
	cashflow := "-"
	if a.Kind == game.KindRealEstate {
		qty = a.Units
		price = a.PurchasePrice
		cashflow = game.FormatAmount(a.MonthlyCashflow)
	}
	return fmt.Sprintf("%-4d %-12s %-24s %10d %14s %14s",
		a.Index,
		kindLabel(a.Kind),
		truncate(a.Name, 24),
		qty,
		game.FormatAmount(price),
		cashflow,
	)
}

func kindLabel(k game.AssetKind) string {
	switch k {
	case game.KindRealEstate:
		return "real estate"
	case game.KindStock:
		return "stock"
	case game.KindGold:
		return "gold"
	default:
		return string(k)
	}
}

func renderCatalog(c game.Catalog) {
	accent.Println("Property types")
	fmt.Println("  " + strings.Join(c.PropertyTypes, ", "))
	accent.Println("Stock tickers")
	fmt.Println("  " + strings.Join(c.StockTickers, ", "))
	accent.Println("Stock prices")
	prices := make([]string, 0, len(c.StockPrices))
	for _, p := range c.StockPrices {
		prices = append(prices, game.FormatAmount(p))
	}
	fmt.Println("  " + strings.Join(prices, ", "))
}

func renderResult(out cl.CommandResult) {
	if out.Message != "" {
		printSuccess(out.Message)
	} else {
		printSuccess(fmt.Sprintf("Updated %s.", strings.TrimPrefix(string(out.Confirmation.Action), "set_")))
	}
	if out.Confirmation.Discarded > 0 {
		printWarn(fmt.Sprintf("%s could not be paid and was written off.", game.FormatAmount(out.Confirmation.Discarded)))
	}
	fmt.Printf("Cash now: %s\n", colorizeAmount(out.State.Cash))
}

func colorizeAmount(v int64) string {
	text := game.FormatAmount(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
