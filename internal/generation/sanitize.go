package generation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// horizontalRun matches two or more tabs or space separators.
	horizontalRun = regexp.MustCompile(`[\t\p{Zs}]{2,}`)
	// blankLines matches three or more newlines, allowing whitespace-only lines between them.
	blankLines = regexp.MustCompile(`\n(?:[\t\p{Zs}]*\n){2,}`)
)

// Sanitize normalizes user-supplied source text before it is hashed, stored and
// sent to the model. Line endings become \n, control characters other than \n
// and \t are dropped, horizontal whitespace runs collapse to one space and
// more than one blank line collapses to exactly one.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}

	s := strings.ReplaceAll(input, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	s = horizontalRun.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
