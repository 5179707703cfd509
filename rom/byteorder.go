// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rom implements the binary format of Nintendo 64 cartridge images:
// byte order detection and conversion, the boot checksum and the ROM header.
//
// All functions operate on in-memory images owned by the caller. None of them
// retain a reference to the passed buffer.
package rom

import (
	"errors"
	"strconv"
)

var (
	ErrUnknownByteOrder = errors.New("unknown original byte order")
	ErrOddLength        = errors.New("not an even length for swapping")
)

// ByteOrder is the arrangement an image is stored in. It is identified only
// by the PI configuration word at the start of the image.
type ByteOrder uint8

const (
	Native          ByteOrder = iota // big endian, usually *.z64
	U16LittleEndian                  // 16-bit words swapped, usually *.v64
)

func (o ByteOrder) String() string {
	switch o {
	case Native:
		return "Native"
	case U16LittleEndian:
		return "U16 Little Endian"
	}
	return "ByteOrder(" + strconv.Itoa(int(o)) + ")"
}

var (
	magicNative = [4]byte{0x80, 0x37, 0x12, 0x40}
	magicU16LE  = [4]byte{0x37, 0x80, 0x40, 0x12}
)

// DetectByteOrder classifies buf by its first four bytes. The boolean is
// false if buf is shorter than four bytes or matches neither magic.
//
// The result describes buf as it is now and is stale after buf was swapped.
func DetectByteOrder(buf []byte) (ByteOrder, bool) {
	if len(buf) < 4 {
		return 0, false
	}
	switch [4]byte(buf[:4]) {
	case magicNative:
		return Native, true
	case magicU16LE:
		return U16LittleEndian, true
	}
	return 0, false
}

// SwapTo converts buf in place to the byte order o. If buf is already in
// order o it is left untouched. On error buf is never modified.
func SwapTo(o ByteOrder, buf []byte) error {
	cur, ok := DetectByteOrder(buf)
	if !ok {
		return ErrUnknownByteOrder
	}
	if len(buf)%2 != 0 {
		return ErrOddLength
	}
	if cur == o {
		return nil
	}
	swap16(buf)
	return nil
}

// swap16 exchanges the bytes of every 16-bit word in buf. It is its own
// inverse.
func swap16(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}
