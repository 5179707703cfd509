// Package info implements the info command, which prints the header of an
// image and verifies its checksum.
package info

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/clktmr/n64rom/internal/logger"
	"github.com/clktmr/n64rom/rom"
	"github.com/clktmr/n64rom/tools/romfile"
)

const usageString = `n64 ROM inspector.

Usage: %s [flags] <rom>

Exits with status 1 if the checksum in the header doesn't match.

`

var (
	flags = flag.NewFlagSet("info", flag.ExitOnError)

	verbose = flags.Bool("v", false, "verbose output")
)

var ErrChecksumMismatch = errors.New("checksum mismatch")

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "info")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}

	log := logger.New("info", os.Stderr, *verbose)
	defer log.Sync()

	if err := Info(log, os.Stdout, flags.Arg(0)); err != nil {
		log.Fatal(err)
	}
}

// Info prints the header of the image in file name to w.
func Info(log *zap.SugaredLogger, w io.Writer, name string) error {
	buf, order, err := romfile.Read(name)
	if err != nil {
		return err
	}
	if err = rom.SwapTo(rom.Native, buf); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	var h rom.Header
	if err = h.UnmarshalBinary(buf); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	// Not rom.Verify: the calculated pair is printed next to the stored one.
	crc, err := rom.Checksum(buf)
	if err != nil {
		return fmt.Errorf("%s: unable to calculate checksum: %w", name, err)
	}
	log.Debugw("checksum calculated", "file", name, "size", len(buf))

	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", name)
	fmt.Fprintf(tw, "Byte Order:\t%v\n", order)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", len(buf))
	fmt.Fprintf(tw, "Title:\t%q\n", h.TitleString())
	fmt.Fprintf(tw, "Clock Rate:\t%#08x\n", h.ClockRate)
	fmt.Fprintf(tw, "Boot Address:\t%#08x\n", h.BootAddr)
	fmt.Fprintf(tw, "Release:\t%#08x\n", h.Release)
	fmt.Fprintf(tw, "Category:\t%q\n", byte(h.ManufacturerID))
	fmt.Fprintf(tw, "Cartridge ID:\t%q\n", []byte{byte(h.CartridgeID >> 8), byte(h.CartridgeID)})
	fmt.Fprintf(tw, "Destination:\t%q\n", byte(h.CountryCode>>8))
	fmt.Fprintf(tw, "Version:\t%d\n", byte(h.CountryCode))
	fmt.Fprintf(tw, "Checksum:\t%08x %08x\n", h.Checksum[0], h.Checksum[1])
	fmt.Fprintf(tw, "Calculated:\t%08x %08x\n", crc[0], crc[1])
	if err = tw.Flush(); err != nil {
		return err
	}

	if crc != h.Checksum {
		return fmt.Errorf("%s: %w", name, ErrChecksumMismatch)
	}
	return nil
}
