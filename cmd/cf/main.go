package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "cashflow/internal/cli"
	"cashflow/internal/config"
	"cashflow/internal/game"
	"cashflow/internal/syncq"
	"cashflow/internal/tui"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "cf",
		Short:        "Cash Flow personal finance game",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	root.AddCommand(
		newStateCmd(&apiBase),
		newCatalogCmd(&apiBase),
		newPaydayCmd(&apiBase),
		newBuyCmd(&apiBase),
		newSellCmd(&apiBase),
		newLoanCmd(&apiBase),
		newFlowCmd(&apiBase),
		newSetCmd(&apiBase),
		newSyncCmd(&apiBase),
		newPlayCmd(cfg.Start),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "state",
		Short:   "Show cash, income, expenses and assets",
		Aliases: []string{"dash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Dashboard(ctx)
			if err != nil {
				return apiError(err)
			}
			renderDashboard(out)
			return nil
		},
	}
}

func newCatalogCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List property types, tickers and stock prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Catalog(ctx)
			if err != nil {
				return apiError(err)
			}
			renderCatalog(out)
			return nil
		},
	}
}

func newPaydayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "payday",
		Short: "Collect salary and passive income, pay expenses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/payday"},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.Payday(ctx, idem)
				})
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	buy := &cobra.Command{
		Use:   "buy",
		Short: "Buy real estate, stocks or gold",
	}
	buy.AddCommand(newBuyRealEstateCmd(apiBase), newBuyStockCmd(apiBase), newBuyGoldCmd(apiBase))
	return buy
}

func newBuyRealEstateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "realestate [type]",
		Short:   "Buy a property with a down payment",
		Aliases: []string{"property", "re"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var form game.RealEstateForm
			var err error
			if len(args) > 0 {
				form.PropertyType = strings.TrimSpace(args[0])
			} else if form.PropertyType, err = promptChoice("Property type", game.PropertyTypes, game.PropertyTypes[0]); err != nil {
				return err
			}
			if form.Units, err = promptOptional("Units [1]"); err != nil {
				return err
			}
			if form.Price, err = promptRequired("Purchase price"); err != nil {
				return err
			}
			if form.DownPayment, err = promptRequired("Down payment"); err != nil {
				return err
			}
			if form.Cashflow, err = promptRequired("Monthly cashflow"); err != nil {
				return err
			}
			buy, err := form.Command()
			if err != nil {
				return err
			}
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/assets/real-estate", Body: cl.RealEstateBody(buy)},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.BuyRealEstate(ctx, buy, idem)
				})
		},
	}
}

func newBuyStockCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "stock [ticker]",
		Short:   "Buy shares",
		Aliases: []string{"stocks"},
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var form game.StockForm
			var err error
			if len(args) > 0 {
				form.Ticker = args[0]
			} else if form.Ticker, err = promptChoice("Ticker", game.StockTickers, game.StockTickers[0]); err != nil {
				return err
			}
			if form.Quantity, err = promptRequired("Shares"); err != nil {
				return err
			}
			if form.Price, err = promptChoice("Price per share", priceOptions(), priceOptions()[0]); err != nil {
				return err
			}
			buy, err := form.Command()
			if err != nil {
				return err
			}
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/assets/stocks", Body: cl.StockBody(buy)},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.BuyStock(ctx, buy, idem)
				})
		},
	}
}

func newBuyGoldCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "gold",
		Short: "Buy gold coins",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form game.GoldForm
			var err error
			if form.Quantity, err = promptRequired("Coins"); err != nil {
				return err
			}
			if form.Price, err = promptRequired("Price per coin"); err != nil {
				return err
			}
			buy, err := form.Command()
			if err != nil {
				return err
			}
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/assets/gold", Body: cl.GoldBody(buy)},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.BuyGold(ctx, buy, idem)
				})
		},
	}
}

func newSellCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell [index]",
		Short: "Sell an asset by its list position",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := intFromArgOrPrompt(args, 0, "Asset #")
			if err != nil {
				return err
			}
			var form game.SellForm
			if form.Price, err = promptRequired("Sale price (total for property, per unit otherwise)"); err != nil {
				return err
			}
			if form.Quantity, err = promptOptional("Quantity [all]"); err != nil {
				return err
			}
			sell, err := form.Command(index)
			if err != nil {
				return err
			}
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: cl.SellPath(index), Body: cl.SellBody(sell)},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.Sell(ctx, sell, idem)
				})
		},
	}
}

func newLoanCmd(apiBase *string) *cobra.Command {
	loan := &cobra.Command{
		Use:   "loan",
		Short: fmt.Sprintf("Borrow or repay in steps of %s", game.FormatAmount(game.LoanIncrement)),
	}
	loan.AddCommand(&cobra.Command{
		Use:   "take",
		Short: "Take a loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/loan/take"},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.TakeLoan(ctx, idem)
				})
		},
	})
	loan.AddCommand(&cobra.Command{
		Use:   "repay",
		Short: "Repay part of the loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/loan/repay"},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.RepayLoan(ctx, idem)
				})
		},
	})
	return loan
}

func newFlowCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "flow [amount]",
		Short:   "Record a one-off income (positive) or expense (negative)",
		Example: "  cf flow 400\n  cf flow -- -250",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := wholeFromArgOrPrompt(args, "Amount")
			if err != nil {
				return err
			}
			return sendCommand(cmd, apiBase, syncq.Command{Method: "POST", Path: "/v1/flows", Body: map[string]any{"amount": amount}},
				func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
					return c.RecordFlow(ctx, amount, idem)
				})
		},
	}
}

func newSetCmd(apiBase *string) *cobra.Command {
	set := &cobra.Command{
		Use:   "set",
		Short: "Overwrite cash, salary or expenses",
	}
	type target struct {
		name string
		path string
		call func(*cl.Client) func(context.Context, int64, string) (cl.CommandResult, error)
	}
	targets := []target{
		{"cash", "/v1/cash", func(c *cl.Client) func(context.Context, int64, string) (cl.CommandResult, error) { return c.SetCash }},
		{"salary", "/v1/salary", func(c *cl.Client) func(context.Context, int64, string) (cl.CommandResult, error) { return c.SetSalary }},
		{"expenses", "/v1/expenses", func(c *cl.Client) func(context.Context, int64, string) (cl.CommandResult, error) { return c.SetExpenses }},
	}
	for _, tg := range targets {
		set.AddCommand(&cobra.Command{
			Use:   tg.name + " [value]",
			Short: "Set " + tg.name + " (negative values become 0)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := wholeFromArgOrPrompt(args, strings.ToUpper(tg.name[:1])+tg.name[1:])
				if err != nil {
					return err
				}
				return sendCommand(cmd, apiBase, syncq.Command{Method: "PUT", Path: tg.path, Body: map[string]any{"value": value}},
					func(ctx context.Context, c *cl.Client, idem string) (cl.CommandResult, error) {
						return tg.call(c)(ctx, value, idem)
					})
			},
		})
	}
	return set
}

func newSyncCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay commands queued while the API was unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Sync queue is empty.")
				return nil
			}
			client := newClient(apiBase)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			remaining := make([]syncq.Command, 0, len(queue))
			success := 0
			for _, q := range queue {
				out, err := client.Do(ctx, q.Method, q.Path, q.Body, q.IdempotencyKey)
				if err != nil {
					if !cl.ShouldRetry(err) {
						// Rejected for good; keeping it would fail the same way next time.
						printError(fmt.Sprintf("Dropped %s %s: %v", q.Method, q.Path, apiError(err)))
						continue
					}
					remaining = append(remaining, q)
					printError(fmt.Sprintf("Sync failed for %s %s: %v", q.Method, q.Path, err))
					continue
				}
				if out.Message != "" {
					printSuccess(out.Message)
				}
				success++
			}
			if err := syncq.Save(remaining); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", success, len(remaining)))
			return nil
		},
	}
}

func newPlayCmd(start config.StartConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a local game in the terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("play needs an interactive terminal")
			}
			session := game.NewSession(game.Finances{
				Cash:     start.Cash,
				Salary:   start.Salary,
				Expenses: start.Expenses,
			})
			return tui.Run(cmd.Context(), session)
		},
	}
}

func sendCommand(cmd *cobra.Command, apiBase *string, q syncq.Command, call func(context.Context, *cl.Client, string) (cl.CommandResult, error)) error {
	q.IdempotencyKey = uuid.NewString()
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	out, err := call(ctx, newClient(apiBase), q.IdempotencyKey)
	if err != nil {
		return queueOnNetworkError(err, q)
	}
	renderResult(out)
	return nil
}

func queueOnNetworkError(err error, q syncq.Command) error {
	if err == nil {
		return nil
	}
	if !cl.ShouldRetry(err) {
		return apiError(err)
	}
	if qerr := syncq.Push(q); qerr != nil {
		return fmt.Errorf("request failed and could not be queued: %w", errors.Join(err, qerr))
	}
	printWarn(fmt.Sprintf("API unavailable (%v), queued %s %s. Run `cf sync` once it is back.", err, q.Method, q.Path))
	return nil
}

func apiError(err error) error {
	var status *cl.StatusError
	if errors.As(err, &status) {
		return errors.New(status.Message())
	}
	return err
}

func priceOptions() []string {
	out := make([]string, 0, len(game.StockPrices))
	for _, p := range game.StockPrices {
		out = append(out, strconv.FormatInt(p, 10))
	}
	return out
}

func intFromArgOrPrompt(args []string, idx int, label string) (int, error) {
	if len(args) > idx {
		v, err := strconv.Atoi(strings.TrimSpace(args[idx]))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	v, err := promptInt64(label, 0)
	return int(v), err
}

func wholeFromArgOrPrompt(args []string, label string) (int64, error) {
	if len(args) > 0 {
		return game.ParseWhole(strings.ToLower(label), args[0])
	}
	text, err := promptRequired(label)
	if err != nil {
		return 0, err
	}
	return game.ParseWhole(strings.ToLower(label), text)
}
