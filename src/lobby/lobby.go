// Package lobby holds the helpers shared by the transports and the usecases.
package lobby

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/clok/kemba"
	"github.com/goware/prefixer"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/pkg/errors"
	sf "github.com/wissance/stringFormatter"
)

// FormatCommand renders cmd as the single shell line sent to the host.
//
// A scoped command always gets its `cd`, even with an empty path, so the
// remote shell decides what an empty directory means. Every part is joined
// with `&&`: a failed `cd` or export stops the line.
func FormatCommand(cmd entity.Command) string {
	l := kemba.New("lobby::FormatCommand").Printf

	body := cmd.Run
	if cmd.Env.Len() > 0 {
		body = sf.Format("{0} && {1}", cmd.Env.AsExport(), body)
	}

	if cmd.Dir.Scoped {
		body = sf.FormatComplex("cd {dir} && {body}", map[string]any{
			"dir":  entity.ShellQuote(cmd.Dir.Path),
			"body": body,
		})
	}

	l("formatted command: %s", body)
	return body
}

// StreamOutput copies src to dst line by line with prefix, keeping a copy in
// capture. It runs in its own goroutine and marks wg done on EOF.
func StreamOutput(wg *sync.WaitGroup, src io.Reader, dst io.Writer, capture *bytes.Buffer, prefix, errMsg string) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if dst == nil {
			dst = io.Discard
		}

		reader := io.TeeReader(src, capture)
		if prefix != "" {
			reader = prefixer.New(reader, prefix)
		}

		_, err := io.Copy(dst, reader)
		if err != nil && err != io.EOF {
			fmt.Fprintf(os.Stderr, "%v\n", errors.Wrap(err, prefix+errMsg))
		}
	}()
}

// Prefix builds the `user@host | ` output prefix, colored unless color is "".
func Prefix(user, hostname, color string) string {
	host := user + "@" + hostname + " | "
	if color == "" {
		return host
	}
	return color + host + entity.ResetColor
}
