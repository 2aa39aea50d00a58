package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"

	"github.com/yiblet/pix/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	// With no subcommand, open the browser
	if parser.Subcommand() == nil {
		args.Browse = &cli.BrowseCmd{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cliHandler.Execute(ctx, &args)
	cliHandler.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr)
			parser.WriteUsageForSubcommand(os.Stderr, parser.SubcommandNames()...)
		}
		os.Exit(1)
	}
}
