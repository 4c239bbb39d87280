package entity

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ShellQuote quotes s for a POSIX shell. Strings that need no quoting are
// returned as is, the empty string becomes a pair of single quotes.
func ShellQuote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// non-printable bytes, fall back to plain single quoting
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return quoted
}
