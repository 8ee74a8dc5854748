package message_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/message"
)

func TestSerializeAndReadBitfield(t *testing.T) {
	// the framing example: a bitfield message carrying the five bytes
	// 01 02 03 04 05 serializes to the 10 byte frame
	// 00 00 00 06 05 01 02 03 04 05.
	m := &message.Message{
		Identifier: message.Bitfield,
		Payload:    []byte{0x01, 0x02, 0x03, 0x04, 0x05},
	}

	want := []byte{0x00, 0x00, 0x00, 0x06, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05}
	require.Equal(t, want, m.Serialize())

	got, err := message.Read(bytes.NewReader(m.Serialize()))
	require.NoError(t, err)
	require.Equal(t, m.Identifier, got.Identifier)
	require.Equal(t, m.Payload, got.Payload)
}

func TestReadKeepAlive(t *testing.T) {
	got, err := message.Read(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x00}))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestNewRequest(t *testing.T) {
	m := message.NewRequest(3, 16384, 16384)
	require.Equal(t, message.Request, m.Identifier)
	require.Len(t, m.Payload, 12)
}

func TestParseHave(t *testing.T) {
	m := &message.Message{
		Identifier: message.Have,
		Payload:    []byte{0x00, 0x00, 0x00, 0x05},
	}
	index, err := message.ParseHave(m)
	require.NoError(t, err)
	require.Equal(t, 5, index)
}

func TestParsePiece(t *testing.T) {
	buf := make([]byte, 8)
	m := &message.Message{
		Identifier: message.Piece,
		Payload: append(
			[]byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00},
			[]byte{0xaa, 0xbb, 0xcc, 0xdd}...,
		),
	}

	n, err := message.ParsePiece(2, buf, m)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0, 0, 0, 0}, buf)
}

func TestParsePieceWrongIndex(t *testing.T) {
	buf := make([]byte, 4)
	m := &message.Message{
		Identifier: message.Piece,
		Payload:    []byte{0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00, 0x00},
	}
	_, err := message.ParsePiece(2, buf, m)
	require.Error(t, err)
}

func TestHandshakeRoundTrip(t *testing.T) {
	var hash, id [20]byte
	copy(hash[:], "abcdefghij0123456789")
	copy(id[:], "-LE0001-abcdefghijkl")

	h := message.NewHandshake(hash, id)
	buf := h.Serialize()
	require.Len(t, buf, 68) // 1 + 19 + 8 + 20 + 20

	got, err := message.ReadHandshake(bytes.NewReader(buf))
	require.NoError(t, err)
	require.NoError(t, got.Verify(hash))
	require.Equal(t, message.ProtocolName, got.Protocol)
}

func TestHandshakeVerifyRejectsWrongHash(t *testing.T) {
	var hash, other, id [20]byte
	copy(hash[:], "abcdefghij0123456789")
	copy(other[:], "zzzzzzzzzzzzzzzzzzzz")
	copy(id[:], "-LE0001-abcdefghijkl")

	h := message.NewHandshake(hash, id)
	got, err := message.ReadHandshake(bytes.NewReader(h.Serialize()))
	require.NoError(t, err)
	require.Error(t, got.Verify(other))
}
