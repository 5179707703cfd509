// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rom

import (
	"errors"
	"fmt"
)

const (
	BootCodeStart = HeaderSize
	BootCodeSize  = ChecksumStart - HeaderSize
	LoadStart     = ChecksumStart
	LoadMaxSize   = ChecksumLength

	// ImageSize is the size of images created by Build.
	ImageSize = ChecksumEnd
)

var (
	ErrBootCodeSize  = errors.New("bootcode size mismatch")
	ErrLoadImageSize = errors.New("load image too large")
)

// Build assembles a native ordered image from the IPL3 bootcode and the load
// image, which is copied to the cartridge address space right after the
// bootcode. Unused space is filled with 0xff. The checksum fields of h are
// overwritten with the checksum of the new image.
func Build(bootcode, load []byte, h *Header) ([]byte, error) {
	if len(bootcode) != BootCodeSize {
		return nil, fmt.Errorf("%w (%d != %d bytes)", ErrBootCodeSize, len(bootcode), BootCodeSize)
	}
	if len(load) > LoadMaxSize {
		return nil, fmt.Errorf("%w (%d > %d bytes)", ErrLoadImageSize, len(load), LoadMaxSize)
	}

	rom := make([]byte, ImageSize)
	for i := range rom {
		rom[i] = 0xff
	}
	copy(rom[BootCodeStart:], bootcode)
	copy(rom[LoadStart:], load)

	crc, err := Checksum(rom)
	if err != nil {
		return nil, err
	}
	h.Checksum = crc

	hdr, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	copy(rom, hdr)
	return rom, nil
}

// Fix recalculates the checksum of buf and stores it in the header. The image
// may be in any known byte order, which is preserved. It returns the checksum
// found in the header before and the newly calculated one.
func Fix(buf []byte) (old, crc [2]uint32, err error) {
	err = native(buf, func() error {
		if crc, err = Checksum(buf); err != nil {
			return err
		}
		if old, err = ReadChecksum(buf); err != nil {
			return err
		}
		return PutChecksum(buf, crc)
	})
	return
}

// Verify reports whether the checksum stored in the header of buf matches its
// contents. buf is swapped temporarily if it's not in Native byte order.
func Verify(buf []byte) (ok bool, err error) {
	err = native(buf, func() error {
		crc, err := Checksum(buf)
		if err != nil {
			return err
		}
		old, err := ReadChecksum(buf)
		if err != nil {
			return err
		}
		ok = crc == old
		return nil
	})
	return
}

// native calls fn with buf swapped to Native byte order and restores the
// original order afterwards.
func native(buf []byte, fn func() error) error {
	orig, ok := DetectByteOrder(buf)
	if !ok {
		return ErrUnknownByteOrder
	}
	if err := SwapTo(Native, buf); err != nil {
		return err
	}
	err := fn()
	if err1 := SwapTo(orig, buf); err == nil {
		err = err1
	}
	return err
}
