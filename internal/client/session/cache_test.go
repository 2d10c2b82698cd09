package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_PersistsAcrossInstances(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := NewCache(".tk-test")
	require.NoError(t, err)
	require.Equal(t, "", c.Token())

	require.NoError(t, c.SetToken("abc.def.ghi"))
	require.Equal(t, "abc.def.ghi", c.Token())

	// A new process picks up the saved token.
	c2, err := NewCache(".tk-test")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", c2.Token())
}

func TestCache_Clear(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := NewCache(".tk-test")
	require.NoError(t, err)
	require.NoError(t, c.SetToken("tok"))

	require.NoError(t, c.Clear())
	require.Equal(t, "", c.Token())

	// The token is gone from disk too.
	c2, err := NewCache(".tk-test")
	require.NoError(t, err)
	require.Equal(t, "", c2.Token())

	// Clearing an empty cache is fine.
	require.NoError(t, c.Clear())
}

func TestCache_UserIsMemoryOnly(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := NewCache(".tk-test")
	require.NoError(t, err)
	require.Nil(t, c.User())

	require.NoError(t, c.SetToken("tok"))
	c.SetUser(&User{ID: "u-1", Email: "a@x.com", Name: "Ana"})
	require.Equal(t, "Ana", c.User().Name)

	// A new process keeps the token but must refetch the user.
	c2, err := NewCache(".tk-test")
	require.NoError(t, err)
	require.Equal(t, "tok", c2.Token())
	require.Nil(t, c2.User())

	require.NoError(t, c.Clear())
	require.Nil(t, c.User())
}
