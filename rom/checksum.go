// Copyright 2024 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/clktmr/n64rom/debug"
)

const (
	ChecksumStart  = 0x1000
	ChecksumLength = 0x100000
	ChecksumEnd    = ChecksumStart + ChecksumLength

	// CIC-NUS-6102 seed
	checksumSeed uint32 = 0xF8CA4DDC
)

var (
	ErrNotLongEnough = errors.New("not long enough")
	ErrReadBuffer    = errors.New("error reading buffer")
)

// Checksum calculates the boot checksum of a native ordered image, which is
// verified by the CIC-NUS-6102 during boot. Only the bytes in
// [ChecksumStart, ChecksumEnd) are read.
//
// This is more or less a direct rip of chksum64:
// Copyright 1997 Andreas Sterbenz <stan@sbox.tu-graz.ac.at>
func Checksum(buf []byte) (crc [2]uint32, err error) {
	if len(buf) < ChecksumEnd {
		return crc, ErrNotLongEnough
	}

	t1 := checksumSeed
	t2 := checksumSeed
	t3 := checksumSeed
	t4 := checksumSeed
	t5 := checksumSeed
	t6 := checksumSeed

	r := bytes.NewReader(buf[ChecksumStart:ChecksumEnd])
	var word [4]byte
	for range ChecksumLength / 4 {
		if _, err = io.ReadFull(r, word[:]); err != nil {
			return crc, ErrReadBuffer
		}
		c1 := binary.BigEndian.Uint32(word[:])

		k1 := t6 + c1
		if k1 < t6 {
			t4++
		}
		t6 = k1
		t3 ^= c1
		k1 = rotl(c1, c1&0x1f)
		t5 += k1
		if c1 < t2 {
			t2 ^= k1
		} else {
			t2 ^= t6 ^ c1
		}
		t1 += c1 ^ t5
	}

	crc[0] = t6 ^ t4 ^ t3
	crc[1] = t5 ^ t2 ^ t1
	return crc, nil
}

func rotl(x, k uint32) uint32 {
	debug.Assert(k < 32, "rotl: shift out of range")
	if k == 0 {
		return x
	}
	return x<<k | x>>(32-k)
}
