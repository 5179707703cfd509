package rom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := map[string]struct {
		bootcode, load int
		err            error
	}{
		"empty":         {BootCodeSize, 0, nil},
		"small":         {BootCodeSize, 0x1234, nil},
		"full":          {BootCodeSize, LoadMaxSize, nil},
		"shortBootcode": {BootCodeSize - 1, 0x100, ErrBootCodeSize},
		"longBootcode":  {0x1000, 0x100, ErrBootCodeSize},
		"loadTooLarge":  {BootCodeSize, LoadMaxSize + 1, ErrLoadImageSize},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			bootcode := bytes.Repeat([]byte{0x3c}, tc.bootcode)
			load := bytes.Repeat([]byte{0x01, 0x02, 0x03}, tc.load/3+1)[:tc.load]
			h := NewHeader()

			rom, err := Build(bootcode, load, h)
			require.ErrorIs(t, err, tc.err)
			if err != nil {
				return
			}
			require.Len(t, rom, ImageSize)

			order, ok := DetectByteOrder(rom)
			require.True(t, ok)
			assert.Equal(t, Native, order)
			assert.Equal(t, bootcode, rom[BootCodeStart:LoadStart])
			assert.Equal(t, load, rom[LoadStart:LoadStart+len(load)])
			for i := LoadStart + len(load); i < len(rom); i++ {
				if rom[i] != 0xff {
					t.Fatalf("padding at %#x is %#x", i, rom[i])
				}
			}

			crc, err := Checksum(rom)
			require.NoError(t, err)
			assert.Equal(t, crc, h.Checksum)
			stored, err := ReadChecksum(rom)
			require.NoError(t, err)
			assert.Equal(t, crc, stored)

			ok, err = Verify(rom)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func buildTestImage(t *testing.T) []byte {
	t.Helper()
	rom, err := Build(make([]byte, BootCodeSize), []byte("hello, world\n"), NewHeader())
	require.NoError(t, err)
	return rom
}

func TestFix(t *testing.T) {
	for _, order := range []ByteOrder{Native, U16LittleEndian} {
		t.Run(order.String(), func(t *testing.T) {
			rom := buildTestImage(t)
			want, err := ReadChecksum(rom)
			require.NoError(t, err)
			require.NoError(t, PutChecksum(rom, [2]uint32{1, 2}))
			require.NoError(t, SwapTo(order, rom))

			ok, err := Verify(rom)
			require.NoError(t, err)
			assert.False(t, ok)

			old, crc, err := Fix(rom)
			require.NoError(t, err)
			assert.Equal(t, [2]uint32{1, 2}, old)
			assert.Equal(t, want, crc)

			got, ok := DetectByteOrder(rom)
			require.True(t, ok)
			assert.Equal(t, order, got, "byte order not restored")

			ok, err = Verify(rom)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestFixErrors(t *testing.T) {
	tests := map[string]struct {
		data []byte
		err  error
	}{
		"unknown": {make([]byte, ImageSize), ErrUnknownByteOrder},
		"odd":     {append([]byte{0x80, 0x37, 0x12, 0x40}, make([]byte, ImageSize-3)...), ErrOddLength},
		"short":   {append([]byte{0x37, 0x80, 0x40, 0x12}, make([]byte, 0x1000)...), ErrNotLongEnough},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			orig := bytes.Clone(tc.data)
			_, _, err := Fix(tc.data)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, orig, tc.data, "buffer modified")

			_, err = Verify(tc.data)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
