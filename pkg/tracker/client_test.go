package tracker_test

import (
	"encoding/hex"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/tracker"
)

func TestBuildURLPercentEncodesInfoHash(t *testing.T) {
	raw, err := hex.DecodeString("d69f91e6b2ae4c542468d1073a71d4ea13879a7f")
	require.NoError(t, err)
	var hash [20]byte
	copy(hash[:], raw)

	var peerID [20]byte
	copy(peerID[:], "-LE0001-000000000000")

	got, err := tracker.BuildURL("http://tracker.example/announce", hash, peerID, 6881, 0, 0, 1000)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	require.Equal(t, "tracker.example", u.Host)

	const want = "%d6%9f%91%e6%b2%ae%4c%54%24%68%d1%07%3a%71%d4%ea%13%87%9a%7f"
	require.Contains(t, u.RawQuery, "info_hash="+want)
	require.Contains(t, u.RawQuery, "compact=1")
	require.Contains(t, u.RawQuery, "left=1000")
}

func TestBuildURLPreservesExistingQuery(t *testing.T) {
	var hash, peerID [20]byte
	got, err := tracker.BuildURL("http://tracker.example/announce?passkey=abc", hash, peerID, 6881, 0, 0, 0)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	require.Contains(t, u.RawQuery, "passkey=abc")
	require.Contains(t, u.RawQuery, "info_hash=")
}
