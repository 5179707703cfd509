// Package romfile reads and writes image files for the n64rom tools.
package romfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/clktmr/n64rom/rom"
)

// Format is an output file format.
type Format string

const (
	Z64 Format = "z64" // native byte order
	V64 Format = "v64" // 16-bit words swapped
	UF2 Format = "uf2" // PicoCart64 flash image
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Z64, V64, UF2:
		return f, nil
	}
	return "", fmt.Errorf("%s format not supported", s)
}

// ByteOrder returns the byte order images are stored in.
func (f Format) ByteOrder() rom.ByteOrder {
	if f == V64 {
		return rom.U16LittleEndian
	}
	return rom.Native
}

// OutputName replaces the extension of name with the one of format f.
func OutputName(name string, f Format) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + string(f)
}

// Read reads an image file and checks that its byte order is known.
func Read(name string) ([]byte, rom.ByteOrder, error) {
	buf, err := os.ReadFile(name)
	if err != nil {
		return nil, 0, err
	}
	order, ok := rom.DetectByteOrder(buf)
	if !ok {
		return nil, 0, fmt.Errorf("%s: unable to detect byte order: %w", name, rom.ErrUnknownByteOrder)
	}
	return buf, order, nil
}

// Write stores a native ordered image in format f. The image is swapped in
// place when writing V64.
func Write(log *zap.SugaredLogger, name string, f Format, image []byte) error {
	switch f {
	case Z64, V64:
		if err := rom.SwapTo(f.ByteOrder(), image); err != nil {
			return err
		}
		return os.WriteFile(name, image, 0644)
	case UF2:
		var buf bytes.Buffer
		flash, err := WriteUF2(&buf, image)
		if err != nil {
			return err
		}
		if flash > picoFlashSize {
			log.Warnf("the compressed ROM requires %d MiB of flash (> 2 MiB)", (flash+1<<20-1)>>20)
		}
		return os.WriteFile(name, buf.Bytes(), 0644)
	}
	return fmt.Errorf("%s format not supported", f)
}
