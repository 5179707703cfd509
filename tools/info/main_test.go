package info

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clktmr/n64rom/rom"
)

func writeImage(t *testing.T, order rom.ByteOrder, corrupt bool) string {
	t.Helper()
	h := rom.NewHeader()
	require.NoError(t, h.SetTitle("GOPHER"))
	h.CartridgeID = 'G'<<8 | 'O'
	image, err := rom.Build(make([]byte, rom.BootCodeSize), []byte("hello, world\n"), h)
	require.NoError(t, err)
	if corrupt {
		image[rom.LoadStart] ^= 0xff
	}
	require.NoError(t, rom.SwapTo(order, image))

	name := filepath.Join(t.TempDir(), "test.rom")
	require.NoError(t, os.WriteFile(name, image, 0644))
	return name
}

func TestInfo(t *testing.T) {
	log := zap.NewNop().Sugar()
	tests := map[string]struct {
		order   rom.ByteOrder
		corrupt bool
		err     error
	}{
		"native":   {rom.Native, false, nil},
		"u16le":    {rom.U16LittleEndian, false, nil},
		"mismatch": {rom.Native, true, ErrChecksumMismatch},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			err := Info(log, &out, writeImage(t, tc.order, tc.corrupt))
			require.ErrorIs(t, err, tc.err)

			assert.Contains(t, out.String(), "Byte Order:   "+tc.order.String()+"\n")
			assert.Contains(t, out.String(), "Title:        \"GOPHER\"\n")
			assert.Contains(t, out.String(), "Cartridge ID: \"GO\"\n")
			assert.Contains(t, out.String(), "Boot Address: 0x80000400\n")
		})
	}
}

func TestInfoShort(t *testing.T) {
	name := filepath.Join(t.TempDir(), "short.z64")
	require.NoError(t, os.WriteFile(name, []byte{0x80, 0x37, 0x12, 0x40}, 0644))
	var out bytes.Buffer
	err := Info(zap.NewNop().Sugar(), &out, name)
	assert.ErrorIs(t, err, rom.ErrNotLongEnough)
	assert.Empty(t, out.String())
}
