package shellcheck

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/samber/oops"
)

type ShellCheckProvider struct {
	Out io.Writer
}

func New() *ShellCheckProvider {
	return &ShellCheckProvider{Out: os.Stderr}
}

// Installed reports whether shellcheck is on PATH.
func Installed() bool {
	_, err := exec.LookPath("shellcheck")
	return err == nil
}

// Check pipes cmd into shellcheck. A missing shellcheck binary is not an error.
func (s *ShellCheckProvider) Check(cmd string, cmdName string) error {
	l := kemba.New("gw::shellcheck::check").Printf

	scPath, err := exec.LookPath("shellcheck")
	if err != nil {
		l("shellcheck not installed, skipping %s", cmdName)
		return nil
	}
	l("shellcheck path: %s", scPath)

	check := []string{scPath, "-s", "sh", "-f", "tty", "-e", "SC2148", "-"}
	scCommand := exec.Command(check[0], check[1:]...)
	scCommand.Stdin = strings.NewReader(cmd)
	out, e := scCommand.CombinedOutput()

	if e != nil {
		if s.Out != nil {
			fmt.Fprint(s.Out, entity.ResetColor)
			fmt.Fprintln(s.Out, "SHELLCHECK > command_name: "+cmdName)
			fmt.Fprintln(s.Out, string(s.AddNumbers([]byte(cmd))))
			fmt.Fprintln(s.Out, string(out))
		}
		return oops.
			Trace("5386853C-E58D-4DBE-99F9-EE23C1E2444E").
			Hint("running shellcheck").
			With("command", cmdName).
			Wrap(e)
	}
	return nil
}

// AddNumbers adds numbers to each line
func (s *ShellCheckProvider) AddNumbers(data []byte) []byte {
	var result bytes.Buffer
	for id, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(&result, "%3d: %s\n", id+1, line)
	}
	return result.Bytes()
}
