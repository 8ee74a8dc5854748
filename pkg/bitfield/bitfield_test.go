package bitfield_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/bitfield"
)

func TestSetHasClear(t *testing.T) {
	b := bitfield.NewEmpty(10)

	require.False(t, b.Has(0))
	require.False(t, b.Has(9))

	b.Set(0)
	b.Set(9)

	require.True(t, b.Has(0))
	require.True(t, b.Has(9))
	require.False(t, b.Has(1))

	b.Clear(0)
	require.False(t, b.Has(0))
	require.True(t, b.Has(9))
}

func TestHasOutOfRangeIsFalse(t *testing.T) {
	b := bitfield.New([]byte{0xff})
	require.False(t, b.Has(-1))
	require.False(t, b.Has(100))
}

func TestFromWireBitfieldPayload(t *testing.T) {
	// a wire bitfield payload of [0x01,0x02,0x03,0x04,0x05] as in the
	// framing example: pieces are numbered from the high bit of each
	// byte, so 0x01 sets only piece 7 (piece 0 is clear), and 0x05 =
	// 0b101 in byte 4 sets pieces 37 and 39.
	b := bitfield.New([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	require.True(t, b.Has(7))  // last bit of 0x01
	require.True(t, b.Has(39)) // last bit of 0x05
	require.False(t, b.Has(0))
}
