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

package peer

import (
	"fmt"
	"net"
	"time"

	"github.com/arvikar/leech/pkg/bitfield"
	"github.com/arvikar/leech/pkg/message"
)

// state is a Session's position in its handshake/download state machine.
type state int

const (
	stateInit       state = iota // dialed, nothing exchanged yet
	stateHandshaken              // handshake exchanged and verified
	stateBitfielded              // peer's bitfield received
	stateInterested              // interested sent
	stateUnchoked                // peer has unchoked us, ready to request pieces
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateHandshaken:
		return "handshaken"
	case stateBitfielded:
		return "bitfielded"
	case stateInterested:
		return "interested"
	case stateUnchoked:
		return "unchoked"
	default:
		return "unknown"
	}
}

// dialTimeout bounds how long Dial waits for the TCP handshake, and
// messageTimeout bounds the BitTorrent handshake, the bitfield read, and
// each read while awaiting unchoke. Once unchoked, the caller arms the
// deadline itself via SetDeadline. A slow or dead peer should never be allowed to hang a
// single-peer download forever.
const (
	dialTimeout    = 5 * time.Second
	messageTimeout = 10 * time.Second
)

// Session is a single stateful connection to one peer. Unlike a pool of
// interchangeable connections, a Session's methods must be called in
// the order the BitTorrent handshake sequence requires: Handshake,
// then ReadBitfield, then SendInterested, then AwaitUnchoke, and only
// then Request and ReadMessage (which pkg/piece drives to download a
// piece). Calling a method before its prerequisite state is
// reached returns a *StateError instead of silently doing the wrong
// thing.
type Session struct {
	conn net.Conn
	peer Peer

	infoHash [20]byte
	peerID   [20]byte
	myID     [20]byte

	state    state
	bitfield bitfield.Bitfield
	choked   bool
}

// Dial opens a TCP connection to p and returns a Session in its initial
// state. It does not perform the BitTorrent handshake; call Handshake
// for that.
func Dial(p Peer) (*Session, error) {
	conn, err := net.DialTimeout("tcp", p.String(), dialTimeout)
	if err != nil {
		return nil, &TransportError{Peer: p, Err: err}
	}

	return newSession(conn, p), nil
}

// newSession wraps an already-established connection in a Session at
// stateInit. Dial uses it after a successful TCP dial; tests use it to
// drive both ends of a connection over net.Pipe without a real socket.
func newSession(conn net.Conn, p Peer) *Session {
	return &Session{conn: conn, peer: p, state: stateInit}
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Peer returns the peer this Session is connected to.
func (s *Session) Peer() Peer {
	return s.peer
}

// require returns a *StateError if the Session is not currently in
// want, identifying the failing call as op.
func (s *Session) require(op string, want state) error {
	if s.state != want {
		return &StateError{Op: op, Want: want, Got: s.state}
	}
	return nil
}

// Handshake sends the BitTorrent handshake and verifies the peer's
// reply carries the same info hash. myID is the 20 byte peer id this
// client identifies itself as. On success the Session advances to
// stateHandshaken and PeerID returns the peer's self-reported id.
func (s *Session) Handshake(infoHash, myID [20]byte) error {
	if err := s.require("Handshake", stateInit); err != nil {
		return err
	}

	s.conn.SetDeadline(time.Now().Add(messageTimeout))
	defer s.conn.SetDeadline(time.Time{})

	req := message.NewHandshake(infoHash, myID)
	if _, err := s.conn.Write(req.Serialize()); err != nil {
		return &TransportError{Peer: s.peer, Err: err}
	}

	res, err := message.ReadHandshake(s.conn)
	if err != nil {
		return &HandshakeError{Reason: "reading peer handshake", Err: err}
	}

	if err := res.Verify(infoHash); err != nil {
		return &HandshakeError{Reason: "verifying peer handshake", Err: err}
	}

	s.infoHash = infoHash
	s.myID = myID
	s.peerID = res.Identifier
	s.state = stateHandshaken
	return nil
}

// PeerID returns the 20 byte peer id the remote side reported during
// the handshake. It is only meaningful once Handshake has succeeded.
func (s *Session) PeerID() [20]byte {
	return s.peerID
}

// ReadBitfield awaits the peer's bitfield message. A correct peer sends
// this immediately after the handshake, before any other message, so
// ReadBitfield does not tolerate interleaved Have messages the way
// AwaitUnchoke does. On success the Session advances to
// stateBitfielded.
func (s *Session) ReadBitfield() error {
	if err := s.require("ReadBitfield", stateHandshaken); err != nil {
		return err
	}

	s.conn.SetDeadline(time.Now().Add(messageTimeout))
	defer s.conn.SetDeadline(time.Time{})

	msg, err := message.Read(s.conn)
	if err != nil {
		return &TransportError{Peer: s.peer, Err: err}
	}
	if msg == nil {
		return &FramingError{Reason: "keep-alive before bitfield"}
	}
	if msg.Identifier != message.Bitfield {
		return &FramingError{Reason: fmt.Sprintf("expected bitfield message, got identifier %d", msg.Identifier)}
	}

	s.bitfield = bitfield.New(msg.Payload)
	s.state = stateBitfielded
	return nil
}

// HasPiece reports whether the peer's bitfield claims piece index.
// Callers are not required to consult HasPiece before requesting a piece:
// per the protocol a peer may legitimately omit bits for pieces it
// acquires later and announces via Have, so HasPiece is informational,
// not a gate.
func (s *Session) HasPiece(index int) bool {
	return s.bitfield.Has(index)
}

// SendInterested tells the peer we want to download from it. On
// success the Session advances to stateInterested.
func (s *Session) SendInterested() error {
	if err := s.require("SendInterested", stateBitfielded); err != nil {
		return err
	}

	m := &message.Message{Identifier: message.Interested}
	if _, err := s.conn.Write(m.Serialize()); err != nil {
		return &TransportError{Peer: s.peer, Err: err}
	}

	s.state = stateInterested
	return nil
}

// AwaitUnchoke blocks, discarding Have and keep-alive messages, until
// the peer sends UnChoke. On success the Session advances to
// stateUnchoked and Request and ReadMessage become callable.
func (s *Session) AwaitUnchoke() error {
	if err := s.require("AwaitUnchoke", stateInterested); err != nil {
		return err
	}

	for {
		s.conn.SetDeadline(time.Now().Add(messageTimeout))
		msg, err := message.Read(s.conn)
		s.conn.SetDeadline(time.Time{})
		if err != nil {
			return &TransportError{Peer: s.peer, Err: err}
		}
		if msg == nil {
			continue // keep-alive
		}

		switch msg.Identifier {
		case message.UnChoke:
			s.choked = false
			s.state = stateUnchoked
			return nil
		case message.Have:
			index, err := message.ParseHave(msg)
			if err != nil {
				return &FramingError{Reason: "parsing have message", Err: err}
			}
			s.bitfield.Set(index)
		case message.Choke, message.Interested, message.NotInterested:
			// no-op while waiting to be unchoked
		default:
			// ignore anything else a peer sends unprompted
		}
	}
}

// Choked reports whether the peer is currently choking us. It is only
// meaningful once AwaitUnchoke has succeeded.
func (s *Session) Choked() bool {
	return s.choked
}

// Request sends a Request message for a block of a piece. The Session
// must already be unchoked.
func (s *Session) Request(index, begin, length int) error {
	if err := s.require("Request", stateUnchoked); err != nil {
		return err
	}

	req := message.NewRequest(index, begin, length)
	if _, err := s.conn.Write(req.Serialize()); err != nil {
		return &TransportError{Peer: s.peer, Err: err}
	}
	return nil
}

// ReadMessage reads one message from the peer, transparently applying
// Have and Choke/UnChoke updates to the Session's tracked state before
// returning it to the caller. A nil Message with a nil error means a
// keep-alive was received.
func (s *Session) ReadMessage() (*message.Message, error) {
	if err := s.require("ReadMessage", stateUnchoked); err != nil {
		return nil, err
	}

	msg, err := message.Read(s.conn)
	if err != nil {
		return nil, &TransportError{Peer: s.peer, Err: err}
	}
	if msg == nil {
		return nil, nil
	}

	switch msg.Identifier {
	case message.Choke:
		s.choked = true
	case message.UnChoke:
		s.choked = false
	case message.Have:
		index, err := message.ParseHave(msg)
		if err != nil {
			return nil, &FramingError{Reason: "parsing have message", Err: err}
		}
		s.bitfield.Set(index)
	}

	return msg, nil
}

// SetDeadline sets a read/write deadline on the underlying connection.
// Callers wrap a full piece download in a single deadline rather than
// re-arming it per message.
func (s *Session) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}
