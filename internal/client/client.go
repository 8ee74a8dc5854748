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

// Package client is the orchestrator that drives a single-file
// download end-to-end: announce, connect to the first peer, walk the
// peer session's state machine, and download every piece sequentially
// off that one connection.
package client

import (
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/arvikar/leech/internal/manager"
	"github.com/arvikar/leech/pkg/metainfo"
	"github.com/arvikar/leech/pkg/peer"
	"github.com/arvikar/leech/pkg/piece"
	"github.com/arvikar/leech/pkg/tracker"
)

// Port is the port this client advertises to the tracker as its own
// listening port. The leecher never actually accepts inbound
// connections, but trackers expect a plausible value.
const Port = 6881

// Client holds the state shared across an orchestrated download: the
// HTTP client used to talk to the tracker and the peer id this run
// identifies itself as.
type Client struct {
	HTTP   *http.Client
	PeerID [20]byte
}

// New builds a Client with a freshly generated peer id and a
// reasonably-timed HTTP client for tracker announces.
func New() *Client {
	return &Client{
		HTTP:   &http.Client{Timeout: 15 * time.Second},
		PeerID: randomPeerID(),
	}
}

// randomPeerID generates a 20 byte peer id with the conventional
// Azureus-style "-XX0001-" prefix.
func randomPeerID() [20]byte {
	var id [20]byte
	copy(id[:], "-LE0001-")
	rand.Read(id[8:])
	return id
}

// Peers announces mi to its tracker and returns the peers it offered.
func (c *Client) Peers(ctx context.Context, mi *metainfo.Metainfo) ([]peer.Peer, error) {
	hash := mi.InfoHash()
	announceURL, err := tracker.BuildURL(mi.Announce(), hash, c.PeerID, Port, 0, 0, mi.Length())
	if err != nil {
		return nil, errors.Wrap(err, "building announce url")
	}

	res, err := tracker.Announce(ctx, c.HTTP, announceURL)
	if err != nil {
		return nil, errors.Wrap(err, "announcing to tracker")
	}

	logrus.WithField("count", len(res.Peers)).Info("client: tracker returned peers")
	return res.Peers, nil
}

// connect dials p and drives the session through handshake, bitfield,
// interested, and unchoke, per the orchestrator's fixed sequence.
func (c *Client) connect(p peer.Peer, infoHash [20]byte) (*peer.Session, error) {
	sess, err := peer.Dial(p)
	if err != nil {
		return nil, err
	}

	if err := sess.Handshake(infoHash, c.PeerID); err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.ReadBitfield(); err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.SendInterested(); err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.AwaitUnchoke(); err != nil {
		sess.Close()
		return nil, err
	}

	return sess, nil
}

// Handshake dials p and performs the handshake only (used by the CLI's
// standalone handshake subcommand, which does not need a full session).
// It returns the remote peer id.
func (c *Client) Handshake(p peer.Peer, infoHash [20]byte) ([20]byte, error) {
	sess, err := peer.Dial(p)
	if err != nil {
		return [20]byte{}, err
	}
	defer sess.Close()

	if err := sess.Handshake(infoHash, c.PeerID); err != nil {
		return [20]byte{}, err
	}
	return sess.PeerID(), nil
}

// DownloadOne downloads and verifies a single piece of mi from its
// first announced peer.
func (c *Client) DownloadOne(ctx context.Context, mi *metainfo.Metainfo, index int) ([]byte, error) {
	peers, err := c.Peers(ctx, mi)
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, errors.New("client: tracker returned no peers")
	}

	sess, err := c.connect(peers[0], mi.InfoHash())
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to peer %s", peers[0])
	}
	defer sess.Close()

	size := mi.PieceLength(index)
	buf, err := piece.Download(sess, index, size)
	if err != nil {
		return nil, errors.Wrapf(err, "downloading piece %d", index)
	}
	if !mi.VerifyPiece(index, buf) {
		return nil, &piece.HashMismatch{Index: index}
	}

	return buf, nil
}

// DownloadAll downloads every piece of mi sequentially off a single
// peer session and writes the reassembled file to out, in ascending
// piece order.
func (c *Client) DownloadAll(ctx context.Context, mi *metainfo.Metainfo, out io.Writer) error {
	peers, err := c.Peers(ctx, mi)
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		return errors.New("client: tracker returned no peers")
	}

	sess, err := c.connect(peers[0], mi.InfoHash())
	if err != nil {
		return errors.Wrapf(err, "connecting to peer %s", peers[0])
	}
	defer sess.Close()

	store := manager.New()
	if err := store.Init(); err != nil {
		return err
	}
	defer store.Close()

	n := mi.NumPieces()
	for i := 0; i < n; i++ {
		size := mi.PieceLength(i)

		buf, err := piece.Download(sess, i, size)
		if err != nil {
			return errors.Wrapf(err, "downloading piece %d", i)
		}
		if !mi.VerifyPiece(i, buf) {
			return &piece.HashMismatch{Index: i}
		}
		if err := store.Put(i, buf); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{"piece": i, "of": n}).Info("client: piece verified")
	}

	if err := store.WriteTo(out, n); err != nil {
		return err
	}

	return nil
}
