// Package config loads header descriptions for images created by the build
// command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/clktmr/n64rom/rom"
	"gopkg.in/yaml.v3"
)

// Header describes the header fields of an image. Unset fields keep the
// defaults of rom.NewHeader.
//
//	title: GOPHER
//	boot_address: 0x80000400
//	cartridge_id: GO
//	destination: E
type Header struct {
	Title       *string `yaml:"title"`
	BootAddress *uint32 `yaml:"boot_address"`
	ClockRate   *uint32 `yaml:"clock_rate"`
	Release     *uint32 `yaml:"release"`
	Category    *string `yaml:"category"`     // 'N' Game Pak, 'D' 64DD disk, ...
	CartridgeID *string `yaml:"cartridge_id"` // two characters
	Destination *string `yaml:"destination"`  // region code
	Version     *uint8  `yaml:"version"`
}

// Load reads a header description from a YAML file.
func Load(filename string) (*Header, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading header file: %w", err)
	}

	h, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return h, nil
}

// Parse decodes and validates a header description. Unknown keys are
// rejected.
func Parse(r io.Reader) (*Header, error) {
	var h Header
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing header file: %w", err)
	}

	if err := h.validate(); err != nil {
		return nil, fmt.Errorf("invalid header: %w", err)
	}
	return &h, nil
}

func (h *Header) validate() error {
	if err := asciiField("category", h.Category, 1); err != nil {
		return err
	}
	if err := asciiField("cartridge_id", h.CartridgeID, 2); err != nil {
		return err
	}
	if err := asciiField("destination", h.Destination, 1); err != nil {
		return err
	}
	if h.Title != nil {
		if err := rom.NewHeader().SetTitle(*h.Title); err != nil {
			return fmt.Errorf("title: %w", err)
		}
	}
	return nil
}

func asciiField(name string, s *string, n int) error {
	if s == nil {
		return nil
	}
	if len(*s) != n {
		return fmt.Errorf("%s must be %d ASCII characters, got %q", name, n, *s)
	}
	for _, c := range []byte(*s) {
		if c < 0x20 || c > 0x7e {
			return fmt.Errorf("%s must be %d ASCII characters, got %q", name, n, *s)
		}
	}
	return nil
}

// Apply writes all fields set in h to dst.
func (h *Header) Apply(dst *rom.Header) error {
	if h.Title != nil {
		if err := dst.SetTitle(*h.Title); err != nil {
			return err
		}
	}
	if h.BootAddress != nil {
		dst.BootAddr = *h.BootAddress
	}
	if h.ClockRate != nil {
		dst.ClockRate = *h.ClockRate
	}
	if h.Release != nil {
		dst.Release = *h.Release
	}
	if h.Category != nil {
		dst.ManufacturerID = dst.ManufacturerID&^0xff | uint32((*h.Category)[0])
	}
	if h.CartridgeID != nil {
		dst.CartridgeID = uint16((*h.CartridgeID)[0])<<8 | uint16((*h.CartridgeID)[1])
	}
	if h.Destination != nil {
		dst.CountryCode = dst.CountryCode&0x00ff | uint16((*h.Destination)[0])<<8
	}
	if h.Version != nil {
		dst.CountryCode = dst.CountryCode&0xff00 | uint16(*h.Version)
	}
	return nil
}
