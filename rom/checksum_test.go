package rom

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceChecksum is a plain transcription of chksum64 used to cross-check
// Checksum on arbitrary data.
func referenceChecksum(window []byte) (crc [2]uint32) {
	t1, t2, t3, t4, t5, t6 := checksumSeed, checksumSeed, checksumSeed,
		checksumSeed, checksumSeed, checksumSeed
	for i := 0; i < len(window); i += 4 {
		c1 := binary.BigEndian.Uint32(window[i:])
		k1 := t6 + c1
		if k1 < t6 {
			t4++
		}
		t6 = k1
		t3 ^= c1
		k1 = bits.RotateLeft32(c1, int(c1&0x1f))
		t5 += k1
		if c1 < t2 {
			t2 ^= k1
		} else {
			t2 ^= t6 ^ c1
		}
		t1 += c1 ^ t5
	}
	return [2]uint32{t6 ^ t4 ^ t3, t5 ^ t2 ^ t1}
}

func TestChecksumLength(t *testing.T) {
	tests := map[string]struct {
		size int
		err  error
	}{
		"empty":     {0, ErrNotLongEnough},
		"header":    {HeaderSize, ErrNotLongEnough},
		"window":    {ChecksumLength, ErrNotLongEnough},
		"oneShort":  {ChecksumEnd - 1, ErrNotLongEnough},
		"exact":     {ChecksumEnd, nil},
		"oversized": {ChecksumEnd + 0x1000, nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Checksum(make([]byte, tc.size))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestChecksumZeroWindow(t *testing.T) {
	buf := make([]byte, ChecksumEnd)
	crc, err := Checksum(buf)
	require.NoError(t, err)

	// Zero words never carry, xor or rotate, so only t1 moves: it gains t5,
	// which stays at the seed, once per word.
	t1 := checksumSeed
	for range ChecksumLength / 4 {
		t1 += checksumSeed
	}
	assert.Equal(t, uint32(0xF8CA4DDC), crc[0])
	assert.Equal(t, checksumSeed^checksumSeed^t1, crc[1])
}

func TestChecksumKnownAnswer(t *testing.T) {
	tests := map[string]struct {
		fill func(i int) byte
		want [2]uint32
	}{
		"zero":  {func(i int) byte { return 0 }, [2]uint32{0xf8ca4ddc, 0x303a4ddc}},
		"ramp":  {func(i int) byte { return byte(i) }, [2]uint32{0xfac847da, 0xb2dea121}},
		"ramp7": {func(i int) byte { return byte(i * 7 >> 3) }, [2]uint32{0xf8ce4ddc, 0x46560553}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			buf := make([]byte, ChecksumEnd)
			for i := range buf {
				buf[i] = tc.fill(i)
			}
			crc, err := Checksum(buf)
			require.NoError(t, err)
			assert.Equal(t, tc.want, crc)
		})
	}
}

func TestChecksumWindowOnly(t *testing.T) {
	buf := randomImage(t, ChecksumEnd+0x100, magicNative)
	want, err := Checksum(buf)
	require.NoError(t, err)

	// Bytes outside of the window don't contribute.
	for i := range ChecksumStart {
		buf[i] ^= 0xa5
	}
	for i := ChecksumEnd; i < len(buf); i++ {
		buf[i] ^= 0xa5
	}
	crc, err := Checksum(buf)
	require.NoError(t, err)
	assert.Equal(t, want, crc)

	buf[ChecksumEnd-1] ^= 0x01
	crc, err = Checksum(buf)
	require.NoError(t, err)
	assert.NotEqual(t, want, crc)
}

func TestChecksumReference(t *testing.T) {
	fills := map[string]func(i int) byte{
		"ones":     func(i int) byte { return 0xff },
		"ramp":     func(i int) byte { return byte(i) },
		"ramp7":    func(i int) byte { return byte(i * 7 >> 3) },
		"carry":    func(i int) byte { return []byte{0xf0, 0, 0, 0x1f}[i%4] },
		"lowShift": func(i int) byte { return []byte{0x12, 0x34, 0x56, 0x60}[i%4] },
	}
	for name, fill := range fills {
		t.Run(name, func(t *testing.T) {
			buf := make([]byte, ChecksumEnd)
			for i := range buf {
				buf[i] = fill(i)
			}
			crc, err := Checksum(buf)
			require.NoError(t, err)
			assert.Equal(t, referenceChecksum(buf[ChecksumStart:ChecksumEnd]), crc)
		})
	}

	t.Run("random", func(t *testing.T) {
		buf := randomImage(t, ChecksumEnd, magicNative)
		crc, err := Checksum(buf)
		require.NoError(t, err)
		assert.Equal(t, referenceChecksum(buf[ChecksumStart:ChecksumEnd]), crc)
	})
}

func TestChecksumDeterministic(t *testing.T) {
	buf := randomImage(t, ChecksumEnd, magicNative)
	orig := bytes.Clone(buf)
	first, err := Checksum(buf)
	require.NoError(t, err)
	second, err := Checksum(buf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, orig, buf, "buffer modified")
}

func TestRotl(t *testing.T) {
	tests := map[string]struct{ x, k, want uint32 }{
		"zero":  {0x80000001, 0, 0x80000001},
		"one":   {0x80000001, 1, 0x00000003},
		"max":   {0x80000001, 31, 0xc0000000},
		"nibbl": {0x12345678, 4, 0x23456781},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, rotl(tc.x, tc.k))
		})
	}
}

func BenchmarkChecksum(b *testing.B) {
	buf := make([]byte, ChecksumEnd)
	b.SetBytes(ChecksumLength)
	for b.Loop() {
		Checksum(buf)
	}
}
