// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package romfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"unsafe"
)

// UF2 block flags
const (
	UF2FamilyIDPresent = 0x00002000
)

// UF2 families
const (
	uf2_rp2040 = 0xe48bff56
)

var ErrChunkMapOverflow = errors.New("uf2: chunk map overflow")

type uf2block struct {
	Magic0 uint32
	Magic1 uint32
	Flags  uint32
	Addr   uint32
	Len    uint32
	Seq    uint32
	Total  uint32
	Family uint32
	Data   [256]byte
	_      [476 - 256]byte
	Magic2 uint32
}

// UF2Writer splits everything written to it into UF2 blocks of 256 bytes
// payload. Flush must be called after the last write.
type UF2Writer struct {
	w io.Writer
	b uf2block
}

func NewUF2Writer(w io.Writer, addr, flags, family uint32, size int) *UF2Writer {
	u := new(UF2Writer)
	u.w = w
	u.b.Magic0 = 0x0a324655
	u.b.Magic1 = 0x9e5d5157
	u.b.Flags = flags
	u.b.Addr = addr
	u.b.Total = uint32((size + len(u.b.Data) - 1) / len(u.b.Data))
	u.b.Family = family
	u.b.Magic2 = 0x0ab16f30
	return u
}

func (u *UF2Writer) WriteString(s string) (n int, err error) {
	b := &u.b
	for len(s) != 0 {
		m := copy(b.Data[b.Len:], s)
		n += m
		s = s[m:]
		b.Len += uint32(m)
		if int(b.Len) == len(b.Data) {
			if err = u.emit(); err != nil {
				return
			}
		}
	}
	return
}

func (u *UF2Writer) Write(p []byte) (n int, err error) {
	return u.WriteString(unsafe.String(unsafe.SliceData(p), len(p)))
}

func (u *UF2Writer) Flush() (err error) {
	b := &u.b
	if b.Len == 0 {
		return
	}
	clear(b.Data[b.Len:])
	b.Len = uint32(len(b.Data))
	return u.emit()
}

func (u *UF2Writer) emit() error {
	b := &u.b
	err := binary.Write(u.w, binary.LittleEndian, b)
	b.Addr += b.Len
	b.Seq++
	b.Len = 0
	return err
}

const (
	picoFlashStart = 0x10000000
	picoROMAddr    = 0x10030000
	picoFlashSize  = 2 << 20
)

// WriteUF2 writes image in the compressed format expected by PicoCart64. It
// returns the number of flash bytes the image occupies, which may exceed
// the 2 MiB of a stock board.
//
// This is a translation to Go of the generateAndSaveUF2 function from
// https://kbeckmann.github.io/PicoCart64/js/PicoCart64.js
// Original author: Konrad Beckmann.
func WriteUF2(w io.Writer, image []byte) (flash int, err error) {
	const (
		chunkSize = 1024
		header    = "picocartcompress"
	)

	// Split image into chunks

	var (
		chunkData   []byte
		chunkMap    [(0x8000 - len(header)) / 2]uint16
		chunkMapLen int
	)

	for i := 0; i < len(image); i += chunkSize {
		k := min(len(image), i+chunkSize)
		chunk := image[i:k]

		// Check if chunk is in chunkData
		for k = 0; k < len(chunkData); k += chunkSize {
			if bytes.HasPrefix(chunkData[k:], chunk) {
				break
			}
		}
		if k == len(chunkData) {
			// Found a unique chunk
			chunkData = append(chunkData, chunk...)
		}
		if chunkMapLen >= len(chunkMap) {
			return 0, ErrChunkMapOverflow
		}
		k /= chunkSize // chunk number in chunkData
		chunkMap[chunkMapLen] = uint16(k)
		chunkMapLen++
	}

	newSize := len(header) + len(chunkMap)*2 + len(chunkData)
	flash = picoROMAddr + newSize - picoFlashStart

	u := NewUF2Writer(w, picoROMAddr, UF2FamilyIDPresent, uf2_rp2040, newSize)
	if _, err = u.WriteString(header); err != nil {
		return
	}
	if err = binary.Write(u, binary.LittleEndian, chunkMap); err != nil {
		return
	}
	if _, err = u.Write(chunkData); err != nil {
		return
	}
	err = u.Flush()
	return
}
