// Command n64rom creates, converts and validates Nintendo 64 cartridge
// images.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clktmr/n64rom/tools/build"
	"github.com/clktmr/n64rom/tools/chksum"
	"github.com/clktmr/n64rom/tools/info"
	"github.com/clktmr/n64rom/tools/swap"
)

const usageString = `n64rom is a tool for Nintendo64 ROM images.

Usage:

	%s <command> [arguments]

The commands are:

	build    assemble a bootable ROM from bootcode and a load image
	chksum   calculate and patch the boot checksum
	swap     convert between z64 and v64 byte order
	info     print the header and verify the checksum
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "build":
		build.Main(flag.Args())
	case "chksum":
		chksum.Main(flag.Args())
	case "swap":
		swap.Main(flag.Args())
	case "info":
		info.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
