package piece_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/pkg/piece"
)

func TestBlockSizeAndBacklogConstants(t *testing.T) {
	// a 32 KiB piece at the standard 16 KiB block size takes exactly two
	// requests to saturate, well under the default backlog.
	require.Equal(t, 16384, piece.BlockSize)
	require.Equal(t, 20, piece.MaxBacklog)

	const pieceSize = 32 * 1024
	require.Equal(t, 2, pieceSize/piece.BlockSize)
}

func TestChokedMidPieceError(t *testing.T) {
	err := &piece.ChokedMidPiece{Index: 7}
	require.Contains(t, err.Error(), "7")
}

func TestHashMismatchError(t *testing.T) {
	err := &piece.HashMismatch{Index: 3}
	require.Contains(t, err.Error(), "3")
}
