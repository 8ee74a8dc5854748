// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metainfo parses single-file .torrent metainfo files and
// derives the values a leecher needs from them: the announce URL, the
// info hash, and the expected hash of every piece.
package metainfo

import (
	"crypto/sha1"
	"fmt"
	"io"

	"github.com/arvikar/leech/pkg/bencode"
)

// MetainfoError wraps a problem found while parsing or validating a
// .torrent file: a missing required key, a key of the wrong kind, or a
// malformed pieces string.
type MetainfoError struct {
	Reason string
	Err    error
}

func (e *MetainfoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metainfo: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("metainfo: %s", e.Reason)
}

func (e *MetainfoError) Unwrap() error { return e.Err }

// Metainfo is the parsed form of a single-file .torrent metainfo file.
// Multi-file torrents (an info dict carrying a "files" list instead of
// "length") are rejected by Open; this leecher only ever downloads one
// file.
type Metainfo struct {
	announce string
	name     string
	length   int64
	pieceLen int64
	pieces   [][20]byte
	infoHash [20]byte
}

// Open parses r as a .torrent metainfo file and computes its info
// hash. It validates that the top-level value is a dict carrying
// "announce" and "info" keys, and that "info" is a single-file info
// dict.
func Open(r io.Reader) (*Metainfo, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &MetainfoError{Reason: "reading metainfo", Err: err}
	}

	v, _, err := bencode.Decode(raw)
	if err != nil {
		return nil, &MetainfoError{Reason: "decoding metainfo", Err: err}
	}
	if v.Kind != bencode.KindDict {
		return nil, &MetainfoError{Reason: "top-level metainfo value is not a dict"}
	}

	announce, ok := v.Get("announce")
	if !ok || announce.Kind != bencode.KindString {
		return nil, &MetainfoError{Reason: "missing or malformed announce key"}
	}

	infoVal, ok := v.Get("info")
	if !ok || infoVal.Kind != bencode.KindDict {
		return nil, &MetainfoError{Reason: "missing or malformed info dict"}
	}

	mi, err := parseInfo(infoVal)
	if err != nil {
		return nil, err
	}
	mi.announce = string(announce.Str())

	// The info hash is the SHA-1 of the canonical encoding of the info
	// dict exactly as it appeared in the file. Because Decode validates
	// dict key ordering and Value preserves raw bytes and key order,
	// re-encoding infoVal reproduces those bytes exactly, so no manual
	// byte-offset slicing of the original file is needed.
	mi.infoHash = sha1.Sum(bencode.Encode(infoVal))

	return mi, nil
}

// parseInfo builds a Metainfo from the info sub-dict, rejecting
// multi-file torrents and malformed piece hash strings.
func parseInfo(info bencode.Value) (*Metainfo, error) {
	name, ok := info.Get("name")
	if !ok || name.Kind != bencode.KindString {
		return nil, &MetainfoError{Reason: "info dict missing name"}
	}

	pieceLen, ok := info.Get("piece length")
	if !ok || pieceLen.Kind != bencode.KindInteger {
		return nil, &MetainfoError{Reason: "info dict missing piece length"}
	}

	piecesVal, ok := info.Get("pieces")
	if !ok || piecesVal.Kind != bencode.KindString {
		return nil, &MetainfoError{Reason: "info dict missing pieces"}
	}

	if _, isMultiFile := info.Get("files"); isMultiFile {
		return nil, &MetainfoError{Reason: "multi-file torrents are not supported"}
	}

	length, ok := info.Get("length")
	if !ok || length.Kind != bencode.KindInteger {
		return nil, &MetainfoError{Reason: "info dict missing length"}
	}

	hashes, err := splitPieceHashes(piecesVal.Str())
	if err != nil {
		return nil, err
	}

	return &Metainfo{
		name:     string(name.Str()),
		length:   length.Int(),
		pieceLen: pieceLen.Int(),
		pieces:   hashes,
	}, nil
}

// splitPieceHashes splits the concatenated 20 byte SHA-1 piece hashes
// in buf into individual hashes.
func splitPieceHashes(buf []byte) ([][20]byte, error) {
	if len(buf)%20 != 0 {
		return nil, &MetainfoError{Reason: fmt.Sprintf("malformed pieces string of length %d", len(buf))}
	}

	n := len(buf) / 20
	hashes := make([][20]byte, n)
	for i := 0; i < n; i++ {
		copy(hashes[i][:], buf[i*20:(i+1)*20])
	}
	return hashes, nil
}

// Announce returns the tracker announce URL.
func (m *Metainfo) Announce() string { return m.announce }

// Name returns the file name the torrent describes.
func (m *Metainfo) Name() string { return m.name }

// Length returns the total length of the file in bytes.
func (m *Metainfo) Length() int64 { return m.length }

// InfoHash returns the SHA-1 hash of the info dict.
func (m *Metainfo) InfoHash() [20]byte { return m.infoHash }

// NumPieces returns the number of pieces the file is split into.
func (m *Metainfo) NumPieces() int { return len(m.pieces) }

// PieceHash returns the expected SHA-1 hash of piece i.
func (m *Metainfo) PieceHash(i int) [20]byte { return m.pieces[i] }

// PieceLen returns the nominal piece length from the info dict, i.e.
// the size of every piece except possibly the last.
func (m *Metainfo) PieceLen() int64 { return m.pieceLen }

// PieceLength returns the length in bytes of piece i, accounting for
// the last piece being shorter than pieceLen when length is not an
// exact multiple of it.
func (m *Metainfo) PieceLength(i int) int {
	begin := int64(i) * m.pieceLen
	end := begin + m.pieceLen
	if end > m.length {
		return int(m.length - begin)
	}
	return int(m.pieceLen)
}

// VerifyPiece reports whether data hashes to the expected hash of
// piece i.
func (m *Metainfo) VerifyPiece(i int, data []byte) bool {
	return sha1.Sum(data) == m.pieces[i]
}
