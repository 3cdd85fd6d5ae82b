package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/quantkit/trading"
)

// valueCmd holds the flags for the 'value' subcommand.
type valueCmd struct {
	positionsFile string
	cash          float64
	currency      string
}

func (*valueCmd) Name() string { return "value" }
func (*valueCmd) Synopsis() string {
	return "value a set of positions plus a cash balance"
}
func (*valueCmd) Usage() string {
	return `tcs value -p <positions> [-cash <amount>] [-currency <code>]

  Reads a position stream (JSONL format) and displays the portfolio value:
  the cash balance plus the mark-to-market PnL of every position. Positions
  are valued at the current price they carry.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.positionsFile, "p", "positions.jsonl", "Position stream to value (JSONL format)")
	f.Float64Var(&c.cash, "cash", 0, "Cash balance")
	f.StringVar(&c.currency, "currency", "USD", "Portfolio currency code")
}

func (c *valueCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	positions, err := DecodePositionsFile(c.positionsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	pf := trading.NewPortfolio(c.currency)
	pf.AddCash(trading.M(c.cash, c.currency))
	for _, p := range positions {
		if err := p.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "position %q is not valid: %v\n", p.Symbol, err)
			return subcommands.ExitFailure
		}
		pf.AddPosition(p)
	}

	printMarkdown(portfolioMarkdown(pf))
	return subcommands.ExitSuccess
}
