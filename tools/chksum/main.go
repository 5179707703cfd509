// Package chksum implements the chksum command, which recalculates and
// patches the boot checksum of an image.
package chksum

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/clktmr/n64rom/internal/logger"
	"github.com/clktmr/n64rom/rom"
	"github.com/clktmr/n64rom/tools/romfile"
)

const usageString = `n64 ROM checksum calculator.

Usage: %s [flags] <input> [output]

Calculates the CIC-NUS-6102 boot checksum of a z64 or v64 image and writes
it to the header. The byte order of the input is preserved. Without output
the input file is updated.

`

var (
	flags = flag.NewFlagSet("chksum", flag.ExitOnError)

	dryRun  = flags.Bool("n", false, "only print the checksums, don't write")
	verbose = flags.Bool("v", false, "verbose output")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "chksum")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	var infile, outfile string
	switch flags.NArg() {
	case 1:
		infile, outfile = flags.Arg(0), flags.Arg(0)
	case 2:
		infile, outfile = flags.Arg(0), flags.Arg(1)
	default:
		flags.Usage()
		os.Exit(1)
	}
	if *dryRun {
		outfile = ""
	}

	log := logger.New("chksum", os.Stderr, *verbose)
	defer log.Sync()

	if err := Chksum(log, os.Stdout, infile, outfile); err != nil {
		log.Fatal(err)
	}
}

// Chksum fixes the checksum of infile and writes the result to outfile. The
// old and new checksums are printed to w. If outfile is empty nothing is
// written.
func Chksum(log *zap.SugaredLogger, w io.Writer, infile, outfile string) error {
	buf, order, err := romfile.Read(infile)
	if err != nil {
		return err
	}
	log.Debugw("read image", "file", infile, "order", order, "size", len(buf))

	old, crc, err := rom.Fix(buf)
	if err != nil {
		return fmt.Errorf("%s: unable to calculate checksum: %w", infile, err)
	}

	fmt.Fprintf(w, "Old Checksum:        %s\n", formatChecksum(old))
	fmt.Fprintf(w, "New Checksum:        %s\n", formatChecksum(crc))
	if old == crc {
		log.Debug("checksum unchanged")
	}

	if outfile == "" {
		return nil
	}
	return os.WriteFile(outfile, buf, 0644)
}

// formatChecksum prints crc the way it is stored in a native ordered header.
func formatChecksum(crc [2]uint32) string {
	return fmt.Sprintf("% x  % x",
		[]byte{byte(crc[0] >> 24), byte(crc[0] >> 16), byte(crc[0] >> 8), byte(crc[0])},
		[]byte{byte(crc[1] >> 24), byte(crc[1] >> 16), byte(crc[1] >> 8), byte(crc[1])},
	)
}
