package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/subcommands"
	"github.com/quantkit/trading"
)

// replayCmd holds the flags for the 'replay' subcommand.
type replayCmd struct {
	ordersFile string
	cash       float64
	currency   string
}

func (*replayCmd) Name() string { return "replay" }
func (*replayCmd) Synopsis() string {
	return "replay an order stream into a portfolio and report the outcome"
}
func (*replayCmd) Usage() string {
	return `tcs replay [-o <orders>] [-cash <amount>] [-currency <code>]

  Reads an order stream (JSONL format), reconciles every fill into the
  position held for its symbol, and displays the resulting portfolio.
  Positions are marked to market at the last fill price seen for their symbol.
  Rejected orders are reported but do not stop the replay.
`
}

func (c *replayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ordersFile, "o", "orders.jsonl", "Order stream to replay (JSONL format)")
	f.Float64Var(&c.cash, "cash", 0, "Opening cash balance")
	f.StringVar(&c.currency, "currency", "USD", "Portfolio currency code")
}

func (c *replayCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	orders, err := DecodeOrdersFile(c.ordersFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	pf := trading.NewPortfolio(c.currency)
	pf.AddCash(trading.M(c.cash, c.currency))

	for i, o := range orders {
		p := pf.Position(o.Symbol)
		if p == nil {
			p = trading.NewPosition()
		}
		p.SetCurrentPrice(o.FilledAtPrice)
		r := p.ApplyOrder(o)
		if !r.Success {
			fmt.Fprintf(os.Stderr, "order %d rejected: %s\n", i+1, r.Message)
			continue
		}
		pf.AddPosition(p)
	}

	printMarkdown(portfolioMarkdown(pf))
	return subcommands.ExitSuccess
}

// portfolioMarkdown renders the portfolio as a markdown report.
func portfolioMarkdown(pf *trading.Portfolio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio\n\n")
	fmt.Fprintf(&b, "| Symbol | Side | Balance | Entry | Current | PnL |\n")
	fmt.Fprintf(&b, "|--------|------|--------:|------:|--------:|----:|\n")
	for _, p := range sortedPositions(pf) {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
			p.Symbol, p.Side, p.Balance, p.EntryPrice, p.CurrentPrice, p.PnL)
	}
	fmt.Fprintf(&b, "\nCash: %s\n\n", pf.Cash())
	fmt.Fprintf(&b, "Total value: %s\n", pf.TotalValue())
	return b.String()
}

func sortedPositions(pf *trading.Portfolio) []*trading.Position {
	positions := pf.Positions()
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions
}
