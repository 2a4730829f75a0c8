package clip

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToCSV(t *testing.T) {
	entries := []Entry{
		{Lines: []string{"a", "b"}},
		{Lines: []string{"c"}},
	}

	got, ok := ToCSV(entries, `"`)
	require.True(t, ok)
	require.Equal(t, `"a", "b", "c"`, got)

	got, ok = ToCSV(entries, "")
	require.True(t, ok)
	require.Equal(t, "a, b, c", got)
}

func TestToCSV_EscapesWrapCharacter(t *testing.T) {
	entries := []Entry{{Lines: []string{`say "hi" "there"`}}}

	got, ok := ToCSV(entries, `"`)
	require.True(t, ok)
	require.Equal(t, `"say \"hi\" \"there\""`, got)

	// Only the first character of a longer wrap is escaped
	got, ok = ToCSV([]Entry{{Lines: []string{"x'y"}}}, "''")
	require.True(t, ok)
	require.Equal(t, `''x\'y''`, got)
}

func TestToCSV_NothingToPaste(t *testing.T) {
	_, ok := ToCSV(nil, `"`)
	require.False(t, ok)

	_, ok = ToCSV([]Entry{{Lines: []string{""}}}, "")
	require.False(t, ok)
}
