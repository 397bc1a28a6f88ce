package session

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// invisible strips format characters (zero-width spaces, joiners, BOM) that
// TrimSpace leaves behind.
var invisible = runes.Remove(runes.In(unicode.Cf))

// isBlank reports whether text has no visible content.
func isBlank(text string) bool {
	visible, _, err := transform.String(invisible, text)
	if err != nil {
		visible = text
	}
	return strings.TrimSpace(visible) == ""
}
