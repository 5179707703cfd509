// Package build implements the build command, which assembles a bootable
// image from IPL3 bootcode and a flat load image.
package build

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/clktmr/n64rom/internal/config"
	"github.com/clktmr/n64rom/internal/logger"
	"github.com/clktmr/n64rom/rom"
	"github.com/clktmr/n64rom/tools/romfile"
)

const usageString = `Bootable n64 ROM builder.

Usage: %s [flags] <bootcode> <loadaddr> <loadimage> [output]

The bootcode must be exactly %d bytes, the load image at most %d bytes.
loadaddr is decimal or hexadecimal with 0x prefix. Without output the ROM
is written next to the load image, named after the format.

`

var (
	flags = flag.NewFlagSet("build", flag.ExitOnError)

	format  = flags.String("format", "", "z64 | v64 | uf2 (default from output extension)")
	header  = flags.String("header", "", "YAML file describing the header fields")
	title   = flags.String("title", "", "game title, overrides the header file")
	run     = flags.String("run", "", "Run the ROM with command")
	verbose = flags.Bool("v", false, "verbose output")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "build", rom.BootCodeSize, rom.LoadMaxSize)
	flags.PrintDefaults()
}

// Options are the inputs of a build.
type Options struct {
	BootCode  string
	LoadAddr  uint32
	LoadImage string
	Output    string
	Format    romfile.Format
	Header    *config.Header
	Title     string
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 3 && flags.NArg() != 4 {
		flags.Usage()
		os.Exit(1)
	}

	log := logger.New("build", os.Stderr, *verbose)
	defer log.Sync()

	addr, err := parseUint32(flags.Arg(1))
	if err != nil {
		log.Fatalw("invalid load address", "addr", flags.Arg(1), "error", err)
	}

	opts := Options{
		BootCode:  flags.Arg(0),
		LoadAddr:  addr,
		LoadImage: flags.Arg(2),
		Title:     *title,
	}
	opts.Output, opts.Format, err = outputFile(*format, opts.LoadImage, flags.Arg(3))
	if err != nil {
		log.Fatal(err)
	}
	if *header != "" {
		if opts.Header, err = config.Load(*header); err != nil {
			log.Fatal(err)
		}
	}

	if err = Build(log, opts); err != nil {
		log.Fatal(err)
	}

	if *run != "" {
		code, err := romfile.Run(log, *run, opts.Output)
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(code)
	}
}

// Build writes the image described by opts.
func Build(log *zap.SugaredLogger, opts Options) error {
	bootcode, err := os.ReadFile(opts.BootCode)
	if err != nil {
		return err
	}
	load, err := os.ReadFile(opts.LoadImage)
	if err != nil {
		return err
	}

	h := rom.NewHeader()
	if opts.Header != nil {
		if err = opts.Header.Apply(h); err != nil {
			return err
		}
	}
	// loadaddr is a required argument and always wins over the header file.
	if opts.Header != nil && opts.Header.BootAddress != nil && *opts.Header.BootAddress != opts.LoadAddr {
		log.Warnw("boot_address from header file ignored",
			"header", fmt.Sprintf("%#08x", *opts.Header.BootAddress),
			"loadaddr", fmt.Sprintf("%#08x", opts.LoadAddr))
	}
	h.BootAddr = opts.LoadAddr
	if opts.Title != "" {
		if err = h.SetTitle(opts.Title); err != nil {
			return err
		}
	}

	image, err := rom.Build(bootcode, load, h)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.BootCode, err)
	}
	log.Debugw("built image",
		"title", h.TitleString(),
		"bootaddr", fmt.Sprintf("%#08x", h.BootAddr),
		"checksum", fmt.Sprintf("%08x %08x", h.Checksum[0], h.Checksum[1]),
		"load", len(load),
	)

	return romfile.Write(log, opts.Output, opts.Format, image)
}

// parseUint32 accepts decimal numbers or hexadecimal numbers with 0x prefix.
func parseUint32(s string) (uint32, error) {
	base := 10
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s, base = hex, 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	return uint32(v), err
}

// outputFile picks the output path and format. An empty output is derived
// from the load image.
func outputFile(format, loadimage, output string) (string, romfile.Format, error) {
	if output != "" {
		f, err := outputFormat(format, output)
		return output, f, err
	}
	f, err := outputFormat(format, "")
	if err != nil {
		return "", "", err
	}
	output = romfile.OutputName(loadimage, f)
	if output == loadimage {
		return "", "", fmt.Errorf("%s: output would overwrite the load image", loadimage)
	}
	return output, f, nil
}

func outputFormat(name, output string) (romfile.Format, error) {
	if name != "" {
		return romfile.ParseFormat(name)
	}
	if f, err := romfile.ParseFormat(strings.TrimPrefix(filepath.Ext(output), ".")); err == nil {
		return f, nil
	}
	return romfile.Z64, nil
}
