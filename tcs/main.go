package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/quantkit/trading/cmd"
)

func main() {
	name := path.Base(os.Args[0])

	// Shell completion, a no-op outside of a completion request.
	completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"replay": {Flags: map[string]complete.Predictor{
				"o":        predict.Files("*.jsonl"),
				"cash":     predict.Something,
				"currency": predict.Set{"USD", "EUR", "GBP"},
			}},
			"value": {Flags: map[string]complete.Predictor{
				"p":        predict.Files("*.jsonl"),
				"cash":     predict.Something,
				"currency": predict.Set{"USD", "EUR", "GBP"},
			}},
			"bars": {Flags: map[string]complete.Predictor{
				"f":          predict.Files("*"),
				"path":       predict.Something,
				"symbol":     predict.Something,
				"d":          predict.Something,
				"heikinashi": predict.Nothing,
			}},
		},
	}
}
