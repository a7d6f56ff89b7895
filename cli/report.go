package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/amp-labs/amp-editform/editcontext"
)

const (
	boxTopLeft     = "╒"
	boxTopRight    = "╕"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	ellipsis       = "…"

	// DefaultWidth is used when no usable width is given.
	DefaultWidth = 80

	bannerPadding = 2
	minWidth      = 8
)

// Banner frames title in a box width runes wide, centered. Long titles are
// cut with an ellipsis.
func Banner(title string, width int) string {
	if width < minWidth {
		width = DefaultWidth
	}

	inner := width - bannerPadding

	if utf8.RuneCountInString(title) > inner {
		title = string([]rune(title)[:inner-1]) + ellipsis
	}

	gap := inner - utf8.RuneCountInString(title)
	left := gap / 2 //nolint:mnd

	return strings.Join([]string{
		boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight,
		boxSide + strings.Repeat(" ", left) + title + strings.Repeat(" ", gap-left) + boxSide,
		boxBottomLeft + strings.Repeat(boxBottom, inner) + boxBottomRight,
	}, "\n") + "\n"
}

// WriteReport prints the outcome of a validation pass: a banner, then one
// line per message in field order.
func WriteReport(w io.Writer, title string, width int, valid bool, messages []editcontext.Message) error {
	if _, err := io.WriteString(w, Banner(title, width)); err != nil {
		return err
	}

	if valid {
		_, err := fmt.Fprintln(w, "✓ valid")

		return err
	}

	for _, msg := range messages {
		if _, err := fmt.Fprintf(w, "✗ %s: %s\n", msg.Path, msg.Text); err != nil {
			return err
		}
	}

	return nil
}
