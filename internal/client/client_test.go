package client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/internal/client"
)

func TestNewGeneratesAzureusStylePeerID(t *testing.T) {
	c := client.New()
	require.Equal(t, "-LE0001-", string(c.PeerID[:8]))
	require.NotNil(t, c.HTTP)
}

func TestPortIsConventional(t *testing.T) {
	require.Equal(t, 6881, client.Port)
}
