package navigation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	require.False(t, ok)
	r.Navigate(Login)
	r.Navigate(Home)
	require.Equal(t, []Boundary{Login, Home}, r.Boundaries())
	last, ok := r.Last()
	require.True(t, ok)
	require.Equal(t, Home, last)
}

func TestNavigatorFunc(t *testing.T) {
	var got Boundary
	NavigatorFunc(func(b Boundary) { got = b }).Navigate(Admin)
	require.Equal(t, Admin, got)
	require.NotPanics(t, func() { Discard.Navigate(Login) })
}
