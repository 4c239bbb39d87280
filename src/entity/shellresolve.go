package entity

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"github.com/clok/kemba"
	"github.com/samber/oops"
)

// IsShell reports whether value is a `$(command)` to be resolved locally.
func IsShell(value string) bool {
	return len(value) > 3 && strings.HasPrefix(value, "$(") && strings.HasSuffix(value, ")")
}

// ResolveShell runs the command inside `$(...)` with sh and returns its
// printable output.
func ResolveShell(value string) (string, error) {
	l := kemba.New("entity::ResolveShell").Printf
	script := value[2 : len(value)-1]

	l("about to run command %q", script)
	cmd := exec.Command("sh", "-c", script)
	cmd.Stderr = os.Stderr
	out, e := cmd.Output()
	if e != nil {
		return "", oops.
			Trace("6928F3B4-0D17-45FB-9633-DABA63E163A1").
			Hint("failed to run command").
			With("cmd", script).
			Wrap(e)
	}

	clean, e := FilterNonPrintable(bytes.NewReader(out))
	if e != nil {
		return "", oops.
			Trace("CE16720F-D992-4EA3-9E68-3F1A740A66C1").
			Hint("failed to filter non-printable characters").
			Wrap(e)
	}
	return clean, nil
}

// FilterNonPrintable drops every rune unicode does not consider printable,
// trailing newlines included.
func FilterNonPrintable(r io.Reader) (string, error) {
	reader := bufio.NewReader(r)
	var buffer strings.Builder
	for {
		ch, _, err := reader.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if unicode.IsPrint(ch) {
			buffer.WriteRune(ch)
		}
	}
	return buffer.String(), nil
}
