package peer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/message"
)

// fakePeer drives the other end of a net.Pipe as a minimally-compliant
// BitTorrent peer: it verifies the handshake, echoes one back, sends a
// bitfield, and then waits for whatever the test sends it next.
func fakePeer(t *testing.T, conn net.Conn, hash, id [20]byte, bits []byte) {
	t.Helper()

	hs, err := message.ReadHandshake(conn)
	require.NoError(t, err)
	require.NoError(t, hs.Verify(hash))

	reply := message.NewHandshake(hash, id)
	_, err = conn.Write(reply.Serialize())
	require.NoError(t, err)

	bf := &message.Message{Identifier: message.Bitfield, Payload: bits}
	_, err = conn.Write(bf.Serialize())
	require.NoError(t, err)
}

func TestSessionHandshakeAndBitfield(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var hash, myID, peerID [20]byte
	copy(hash[:], "abcdefghij0123456789")
	copy(myID[:], "-LE0001-000000000001")
	copy(peerID[:], "-XY0001-000000000002")

	done := make(chan struct{})
	go func() {
		defer close(done)
		fakePeer(t, server, hash, peerID, []byte{0xff})
	}()

	sess := newSession(client, Peer{IP: net.ParseIP("127.0.0.1"), Port: 6881})
	require.NoError(t, sess.Handshake(hash, myID))
	require.Equal(t, peerID, sess.PeerID())

	require.NoError(t, sess.ReadBitfield())
	require.True(t, sess.HasPiece(0))
	<-done
}

func TestSessionStateErrorOutOfOrder(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sess := newSession(client, Peer{})
	err := sess.SendInterested()
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	require.Equal(t, "SendInterested", stateErr.Op)
}

func TestSessionFullHandshakeToUnchoke(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	var hash, myID, peerID [20]byte
	copy(hash[:], "abcdefghij0123456789")
	copy(myID[:], "-LE0001-000000000001")
	copy(peerID[:], "-XY0001-000000000002")

	go func() {
		fakePeer(t, server, hash, peerID, []byte{0xff})

		// wait for Interested
		msg, err := message.Read(server)
		require.NoError(t, err)
		require.Equal(t, message.Interested, msg.Identifier)

		unchoke := &message.Message{Identifier: message.UnChoke}
		server.Write(unchoke.Serialize())
	}()

	sess := newSession(client, Peer{})
	require.NoError(t, sess.Handshake(hash, myID))
	require.NoError(t, sess.ReadBitfield())
	require.NoError(t, sess.SendInterested())
	require.NoError(t, sess.AwaitUnchoke())
	require.False(t, sess.Choked())
}

func TestSessionSetDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	sess := newSession(client, Peer{})
	require.NoError(t, sess.SetDeadline(time.Now().Add(time.Second)))
}
