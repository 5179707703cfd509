// Package swap implements the swap command, which converts images between
// byte orders.
package swap

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/clktmr/n64rom/internal/logger"
	"github.com/clktmr/n64rom/rom"
	"github.com/clktmr/n64rom/tools/romfile"
)

const usageString = `n64 ROM byte order converter.

Usage: %s [flags] <input> <output>

`

var (
	flags = flag.NewFlagSet("swap", flag.ExitOnError)

	to      = flags.String("to", "z64", "z64 | v64")
	verbose = flags.Bool("v", false, "verbose output")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "swap")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 2 {
		flags.Usage()
		os.Exit(1)
	}

	log := logger.New("swap", os.Stderr, *verbose)
	defer log.Sync()

	order, err := parseOrder(*to)
	if err != nil {
		log.Fatal(err)
	}
	if err := Swap(log, flags.Arg(0), flags.Arg(1), order); err != nil {
		log.Fatal(err)
	}
}

// Swap writes infile converted to byte order o to outfile.
func Swap(log *zap.SugaredLogger, infile, outfile string, o rom.ByteOrder) error {
	buf, order, err := romfile.Read(infile)
	if err != nil {
		return err
	}
	if err = rom.SwapTo(o, buf); err != nil {
		return fmt.Errorf("%s: unable to swap binary: %w", infile, err)
	}
	log.Debugw("swapped", "from", order, "to", o)
	return os.WriteFile(outfile, buf, 0644)
}

func parseOrder(s string) (rom.ByteOrder, error) {
	f, err := romfile.ParseFormat(s)
	if err != nil || f == romfile.UF2 {
		return 0, fmt.Errorf("unsupported byte order %q", s)
	}
	return f.ByteOrder(), nil
}
