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

// Package piece downloads a single piece's worth of blocks from an
// already-unchoked peer session, pipelining requests up to a backlog
// limit the way a real leecher must to get acceptable throughput from
// one TCP connection.
package piece

import (
	"fmt"
	"time"

	"github.com/arvikar/leech/pkg/message"
	"github.com/arvikar/leech/pkg/peer"
)

// BlockSize is the number of bytes requested per block. Peers are
// free to refuse larger requests, so 16 KiB is the size every
// well-behaved client uses.
const BlockSize = 16384

// MaxBacklog is the maximum number of outstanding block requests kept
// in flight against one peer at a time.
const MaxBacklog = 20

// downloadDeadline bounds how long a single piece download may take
// before the peer is considered unresponsive.
const downloadDeadline = 30 * time.Second

// ChokedMidPiece is returned when the peer chokes us before a piece
// finishes downloading. The caller may retry the piece against another
// peer.
type ChokedMidPiece struct {
	Index int
}

func (e *ChokedMidPiece) Error() string {
	return fmt.Sprintf("piece: peer choked mid-download of piece %d", e.Index)
}

// HashMismatch is returned when a fully downloaded piece's SHA-1 does
// not match the hash recorded in the metainfo.
type HashMismatch struct {
	Index int
}

func (e *HashMismatch) Error() string {
	return fmt.Sprintf("piece: piece %d failed hash verification", e.Index)
}

// progress tracks the in-flight state of one piece download.
type progress struct {
	index      int
	buf        []byte
	downloaded int
	requested  int
	backlog    int
}

// Download fetches the size bytes of piece index from sess, which must
// already be in its unchoked state. It pipelines up to MaxBacklog
// concurrent block requests of BlockSize bytes each (the last block of
// a piece may be shorter) and returns the reassembled piece buffer.
// Download does not verify the piece hash; callers compare the result
// against metainfo.VerifyPiece.
func Download(sess *peer.Session, index, size int) ([]byte, error) {
	p := progress{index: index, buf: make([]byte, size)}

	if err := sess.SetDeadline(time.Now().Add(downloadDeadline)); err != nil {
		return nil, err
	}
	defer sess.SetDeadline(time.Time{})

	for p.downloaded < size {
		if sess.Choked() {
			return nil, &ChokedMidPiece{Index: index}
		}

		for p.backlog < MaxBacklog && p.requested < size {
			blockSize := BlockSize
			if size-p.requested < blockSize {
				blockSize = size - p.requested
			}

			if err := sess.Request(index, p.requested, blockSize); err != nil {
				return nil, err
			}
			p.backlog++
			p.requested += blockSize
		}

		if err := p.readMessage(sess); err != nil {
			return nil, err
		}
	}

	return p.buf, nil
}

// readMessage reads and applies one message relevant to this piece
// download. Have and Choke/UnChoke bookkeeping is already handled by
// Session.ReadMessage; readMessage only needs to act on Piece
// messages. Any other message id received before the piece finishes
// downloading is a protocol error.
func (p *progress) readMessage(sess *peer.Session) error {
	msg, err := sess.ReadMessage()
	if err != nil {
		return err
	}
	if msg == nil {
		return nil // keep-alive
	}
	switch msg.Identifier {
	case message.Choke, message.UnChoke, message.Have:
		return nil
	case message.Piece:
		// handled below
	default:
		return &peer.FramingError{Reason: fmt.Sprintf("unexpected message id %v mid-piece", msg.Identifier)}
	}

	n, err := message.ParsePiece(p.index, p.buf, msg)
	if err != nil {
		return err
	}

	p.downloaded += n
	p.backlog--
	return nil
}
