// Package cmd implements the CLI application to replay order streams and
// inspect market series.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/quantkit/trading"
)

// Register the subcommands.
// A main package calls Register() to declare subcommands, and Execute() on the
// user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&replayCmd{}, "portfolio")
	c.Register(&valueCmd{}, "portfolio")
	c.Register(&barsCmd{}, "market")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

// DecodeOrdersFile reads the JSONL order stream at 'filename'. A missing file
// is not an error, it just yields no orders.
func DecodeOrdersFile(filename string) ([]trading.Order, error) {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, order file %q does not exist, replaying nothing", filename)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open order file %q: %w", filename, err)
	}
	defer f.Close()
	return trading.DecodeOrders(f)
}

// DecodePositionsFile reads the JSONL position stream at 'filename'.
func DecodePositionsFile(filename string) ([]*trading.Position, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open position file %q: %w", filename, err)
	}
	defer f.Close()
	return trading.DecodePositions(f)
}

// printMarkdown renders markdown for the terminal and prints it to stdout.
// If rendering fails the raw markdown is printed instead.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
