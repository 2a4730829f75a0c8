package clip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionStart(t *testing.T) {
	fwd := Selection{Anchor: Position{1, 2}, Active: Position{3, 0}}
	require.Equal(t, Position{1, 2}, fwd.Start())

	back := Selection{Anchor: Position{3, 0}, Active: Position{1, 2}}
	require.Equal(t, Position{1, 2}, back.Start())

	require.True(t, Selection{Anchor: Position{2, 2}, Active: Position{2, 2}}.Empty())
}

func TestExtend(t *testing.T) {
	require.Equal(t, Position{4, 9}, Extend(Position{4, 5}, "abcd", "\n"))
	require.Equal(t, Position{6, 0}, Extend(Position{4, 5}, "x\ny\n", "\n"))
	require.Equal(t, Position{5, 3}, Extend(Position{4, 5}, "ab\r\nhéj", "\r\n"))
}
