package cli

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/amp-labs/amp-editform/editcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	t.Parallel()

	out := Banner("signup", 12)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "╒══════════╕", lines[0])
	assert.Equal(t, "│  signup  │", lines[1])
	assert.Equal(t, "└──────────┘", lines[2])
}

func TestBanner_Truncates(t *testing.T) {
	t.Parallel()

	out := Banner("a very long form title", 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	assert.Equal(t, "│a very …│", lines[1])

	for _, line := range lines {
		assert.Equal(t, 10, utf8.RuneCountInString(line))
	}
}

func TestBanner_NarrowWidthFallsBack(t *testing.T) {
	t.Parallel()

	first := strings.Split(Banner("x", 0), "\n")[0]

	assert.Equal(t, DefaultWidth, utf8.RuneCountInString(first))
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := WriteReport(&buf, "signup", 12, false, []editcontext.Message{
		{Path: "Email", Text: "'Email' must not be empty."},
		{Path: "Password", Text: "'Password' must be at least 8 characters long."},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "✗ Email: 'Email' must not be empty.\n")
	assert.Contains(t, buf.String(), "✗ Password: 'Password' must be at least 8 characters long.\n")

	buf.Reset()

	require.NoError(t, WriteReport(&buf, "signup", 12, true, nil))
	assert.True(t, strings.HasSuffix(buf.String(), "✓ valid\n"))
}

func TestSortedUnique(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Item2", "Item10", "Remote"},
		sortedUnique([]string{"Remote", "Item10", "Item2", "Remote"}))
}

func TestSelected_KeepsInputOrder(t *testing.T) {
	t.Parallel()

	picked := map[string]bool{"b": true, "a": true}

	assert.Equal(t, []string{"b", "a"}, selected([]string{"b", "c", "a", "b"}, picked))
}
