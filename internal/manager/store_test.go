package manager_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvikar/leech/internal/manager"
)

func TestStorePutGetWriteTo(t *testing.T) {
	s := manager.New()
	require.NoError(t, s.Init())
	defer s.Close()

	require.NoError(t, s.Put(0, []byte("hello ")))
	require.NoError(t, s.Put(1, []byte("world")))

	got, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, []byte("hello "), got)

	var buf bytes.Buffer
	require.NoError(t, s.WriteTo(&buf, 2))
	require.Equal(t, "hello world", buf.String())
}

func TestStoreErrorsWhenClosed(t *testing.T) {
	s := manager.New()
	require.NoError(t, s.Init())
	require.NoError(t, s.Close())

	_, err := s.Get(0)
	require.ErrorIs(t, err, manager.ErrStoreClosed)

	err = s.Put(0, nil)
	require.ErrorIs(t, err, manager.ErrStoreClosed)
}
