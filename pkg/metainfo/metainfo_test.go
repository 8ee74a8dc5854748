package metainfo_test

import (
	"bytes"
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/bencode"
	"github.com/arvikar/leech/pkg/metainfo"
)

// buildTorrent bencodes a minimal single-file metainfo dict by hand so
// tests do not depend on any fixture file on disk.
func buildTorrent(t *testing.T, announce, name string, length, pieceLen int64, pieceHash [20]byte) []byte {
	t.Helper()

	info := bencode.Dict(
		bencode.DictEntry{Key: []byte("length"), Value: bencode.Integer(length)},
		bencode.DictEntry{Key: []byte("name"), Value: bencode.String([]byte(name))},
		bencode.DictEntry{Key: []byte("piece length"), Value: bencode.Integer(pieceLen)},
		bencode.DictEntry{Key: []byte("pieces"), Value: bencode.String(pieceHash[:])},
	)
	top := bencode.Dict(
		bencode.DictEntry{Key: []byte("announce"), Value: bencode.String([]byte(announce))},
		bencode.DictEntry{Key: []byte("info"), Value: info},
	)
	return bencode.Encode(top)
}

func TestOpenSingleFile(t *testing.T) {
	data := []byte("hello world, this is one piece")
	hash := sha1.Sum(data)

	raw := buildTorrent(t, "http://tracker.example/announce", "greeting.txt", int64(len(data)), int64(len(data)), hash)

	mi, err := metainfo.Open(bytes.NewReader(raw))
	require.NoError(t, err)

	require.Equal(t, "http://tracker.example/announce", mi.Announce())
	require.Equal(t, "greeting.txt", mi.Name())
	require.Equal(t, int64(len(data)), mi.Length())
	require.Equal(t, 1, mi.NumPieces())
	require.Equal(t, hash, mi.PieceHash(0))
	require.True(t, mi.VerifyPiece(0, data))
	require.False(t, mi.VerifyPiece(0, []byte("wrong data")))
}

func TestInfoHashIsSHA1OfCanonicalInfoDict(t *testing.T) {
	var hash [20]byte
	raw := buildTorrent(t, "http://tracker.example/announce", "file.bin", 10, 10, hash)

	mi, err := metainfo.Open(bytes.NewReader(raw))
	require.NoError(t, err)

	v, _, err := bencode.Decode(raw)
	require.NoError(t, err)
	infoVal, ok := v.Get("info")
	require.True(t, ok)

	want := sha1.Sum(bencode.Encode(infoVal))
	require.Equal(t, want, mi.InfoHash())
}

func TestPieceLengthLastPieceIsShort(t *testing.T) {
	var hash [40]byte // two piece hashes worth of zero bytes
	info := bencode.Dict(
		bencode.DictEntry{Key: []byte("length"), Value: bencode.Integer(25)},
		bencode.DictEntry{Key: []byte("name"), Value: bencode.String([]byte("f"))},
		bencode.DictEntry{Key: []byte("piece length"), Value: bencode.Integer(16)},
		bencode.DictEntry{Key: []byte("pieces"), Value: bencode.String(hash[:])},
	)
	top := bencode.Dict(
		bencode.DictEntry{Key: []byte("announce"), Value: bencode.String([]byte("http://t"))},
		bencode.DictEntry{Key: []byte("info"), Value: info},
	)

	mi, err := metainfo.Open(bytes.NewReader(bencode.Encode(top)))
	require.NoError(t, err)
	require.Equal(t, 2, mi.NumPieces())
	require.Equal(t, 16, mi.PieceLength(0))
	require.Equal(t, 9, mi.PieceLength(1))
}

func TestOpenRejectsMultiFile(t *testing.T) {
	var hash [20]byte
	files := bencode.List(
		bencode.Dict(
			bencode.DictEntry{Key: []byte("length"), Value: bencode.Integer(5)},
			bencode.DictEntry{Key: []byte("path"), Value: bencode.List(bencode.String([]byte("a.txt")))},
		),
	)
	info := bencode.Dict(
		bencode.DictEntry{Key: []byte("files"), Value: files},
		bencode.DictEntry{Key: []byte("name"), Value: bencode.String([]byte("dir"))},
		bencode.DictEntry{Key: []byte("piece length"), Value: bencode.Integer(5)},
		bencode.DictEntry{Key: []byte("pieces"), Value: bencode.String(hash[:])},
	)
	top := bencode.Dict(
		bencode.DictEntry{Key: []byte("announce"), Value: bencode.String([]byte("http://t"))},
		bencode.DictEntry{Key: []byte("info"), Value: info},
	)

	_, err := metainfo.Open(bytes.NewReader(bencode.Encode(top)))
	require.Error(t, err)
}

func TestOpenRejectsMalformedPieces(t *testing.T) {
	info := bencode.Dict(
		bencode.DictEntry{Key: []byte("length"), Value: bencode.Integer(5)},
		bencode.DictEntry{Key: []byte("name"), Value: bencode.String([]byte("f"))},
		bencode.DictEntry{Key: []byte("piece length"), Value: bencode.Integer(5)},
		bencode.DictEntry{Key: []byte("pieces"), Value: bencode.String([]byte("short"))},
	)
	top := bencode.Dict(
		bencode.DictEntry{Key: []byte("announce"), Value: bencode.String([]byte("http://t"))},
		bencode.DictEntry{Key: []byte("info"), Value: info},
	)

	_, err := metainfo.Open(bytes.NewReader(bencode.Encode(top)))
	require.Error(t, err)
}
