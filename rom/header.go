// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
)

const (
	HeaderSize = 0x40
	TitleSize  = 20

	// PI BSD DOM1 configuration as found in every retail image. Stored
	// big endian it's the magic identifying Native byte order.
	DefaultPIConfig  = 0x80371240
	DefaultClockRate = 0x0000000f
	DefaultBootAddr  = 0x80000400
)

var ErrTitleTooLong = errors.New("title too long")

// Header is the first 0x40 bytes of an image.
//
// https://n64brew.dev/wiki/ROM_Header
type Header struct {
	PIConfig  uint32    // 0x00
	ClockRate uint32    // 0x04
	BootAddr  uint32    // 0x08
	Release   uint32    // 0x0c, libultra version
	Checksum  [2]uint32 // 0x10
	_         [8]byte
	Title     [TitleSize]byte // 0x20, Shift-JIS
	_         [4]byte
	// ManufacturerID holds the category code in its lowest byte.
	ManufacturerID uint32 // 0x38
	CartridgeID    uint16 // 0x3c
	CountryCode    uint16 // 0x3e, destination code and ROM version
}

// NewHeader returns a header with the defaults of a homebrew "Game Pak".
func NewHeader() *Header {
	h := &Header{
		PIConfig:       DefaultPIConfig,
		ClockRate:      DefaultClockRate,
		BootAddr:       DefaultBootAddr,
		Release:        0x1444,
		ManufacturerID: 'N',
		CartridgeID:    ' '<<8 | ' ',
		CountryCode:    ' ' << 8,
	}
	h.SetTitle("")
	return h
}

// SetTitle encodes s to Shift-JIS and stores it space padded.
func (h *Header) SetTitle(s string) error {
	enc, err := japanese.ShiftJIS.NewEncoder().String(s)
	if err != nil {
		return fmt.Errorf("title %q: %w", s, err)
	}
	if len(enc) > TitleSize {
		return fmt.Errorf("%w (%d > %d bytes)", ErrTitleTooLong, len(enc), TitleSize)
	}
	n := copy(h.Title[:], enc)
	for i := n; i < len(h.Title); i++ {
		h.Title[i] = ' '
	}
	return nil
}

// TitleString decodes the title, without trailing padding.
func (h *Header) TitleString() string {
	raw := strings.TrimRight(string(h.Title[:]), " \x00")
	s, err := japanese.ShiftJIS.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return s
}

func (h *Header) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.BigEndian, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary reads the header from the start of a native ordered image.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header: %w", ErrNotLongEnough)
	}
	return binary.Read(bytes.NewReader(data[:HeaderSize]), binary.BigEndian, h)
}

// ReadChecksum returns the checksum stored in the header of a native ordered
// image.
func ReadChecksum(buf []byte) (crc [2]uint32, err error) {
	if len(buf) < 0x18 {
		return crc, fmt.Errorf("header: %w", ErrNotLongEnough)
	}
	crc[0] = binary.BigEndian.Uint32(buf[0x10:])
	crc[1] = binary.BigEndian.Uint32(buf[0x14:])
	return crc, nil
}

// PutChecksum stores crc in the header of a native ordered image.
func PutChecksum(buf []byte, crc [2]uint32) error {
	if len(buf) < 0x18 {
		return fmt.Errorf("header: %w", ErrNotLongEnough)
	}
	binary.BigEndian.PutUint32(buf[0x10:], crc[0])
	binary.BigEndian.PutUint32(buf[0x14:], crc[1])
	return nil
}
