package localhost

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/user"
	"sync"
	"time"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/momo182/webeid-deploy/src/lobby"
	"github.com/samber/oops"
)

// killDelay is how long an interrupted command gets before it is killed.
const killDelay = 2 * time.Second

// LocalhostClient runs commands through the local shell, it backs the
// `localhost` and `127.0.0.1` hosts.
type LocalhostClient struct {
	user     string
	Host     string
	Shell    string
	Color    string
	NoPrefix bool
	Stdout   io.Writer
	Stderr   io.Writer
}

// GetHost returns the host of the LocalhostClient.
func (c *LocalhostClient) GetHost() string {
	return c.Host
}

// Connect checks a usable shell exists, there is nothing to dial.
func (c *LocalhostClient) Connect(host entity.Host) error {
	l := kemba.New("gw::localhost::Connect").Printf

	c.Host = host.Addr
	c.user = host.User
	if c.user == "" {
		if u, err := user.Current(); err == nil {
			c.user = u.Username
		}
	}

	if c.Shell == "" {
		c.Shell = "sh"
	}
	path, err := exec.LookPath(c.Shell)
	if err != nil {
		return entity.ErrConnect{User: c.user, Host: "localhost", Reason: c.Shell + " not found"}
	}
	l("using shell %s", path)
	return nil
}

// Run runs cmd with `sh -c` and waits for it.
func (c *LocalhostClient) Run(ctx context.Context, cmd entity.Command) (*entity.Result, error) {
	l := kemba.New("gw::localhost::Run").Printf

	invocation := lobby.FormatCommand(cmd)
	l("prepared command: %s", invocation)

	proc := exec.CommandContext(ctx, c.Shell, "-c", invocation)
	proc.Cancel = func() error {
		return proc.Process.Signal(os.Interrupt)
	}
	proc.WaitDelay = killDelay

	outPipe, err := proc.StdoutPipe()
	if err != nil {
		return nil, err
	}
	errPipe, err := proc.StderrPipe()
	if err != nil {
		return nil, err
	}

	l("starting local party")
	if err := proc.Start(); err != nil {
		return nil, oops.Trace("B4730A7E-1E1A-478B-A499-51FEB83BCD88").
			Hint("starting local command").
			With("command", invocation).
			Wrap(err)
	}

	var wg sync.WaitGroup
	var outBuf, errBuf bytes.Buffer
	prefix := c.Prefix()
	lobby.StreamOutput(&wg, outPipe, c.Stdout, &outBuf, prefix, "reading STDOUT failed")
	lobby.StreamOutput(&wg, errPipe, c.Stderr, &errBuf, prefix, "reading STDERR failed")
	wg.Wait()

	status := 0
	if err := proc.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, oops.Trace("96827050-82E3-4CB3-B6D2-DE5EA1FA48C2").
				Hint("waiting for local command").
				With("command", invocation).
				Wrap(err)
		}
		status = exitErr.ExitCode()
		if status < 0 {
			// terminated by a signal
			status = entity.ExitGeneric
		}
	}

	return &entity.Result{
		Command:    cmd,
		Host:       c.Host,
		Stdout:     outBuf.String(),
		Stderr:     errBuf.String(),
		ExitStatus: status,
	}, nil
}

// StatDir checks path is a local directory. path is taken literally, the
// same way the quoted `cd` of a scoped command takes it.
func (c *LocalhostClient) StatDir(path string) error {
	if path == "" {
		return entity.ErrConfig{Reason: entity.DeployDirEnv + " is empty"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return entity.ErrConfig{Reason: "dir " + path + ": " + err.Error()}
	}
	if !info.IsDir() {
		return entity.ErrConfig{Reason: "path " + path + " is not a directory"}
	}
	return nil
}

// Close is a no-op.
func (c *LocalhostClient) Close() error {
	return nil
}

// Prefix returns the client's prefix.
func (c *LocalhostClient) Prefix() string {
	if c.NoPrefix {
		return ""
	}
	return lobby.Prefix(c.user, "localhost", c.Color)
}

var _ entity.RemoteExecutor = (*LocalhostClient)(nil)
var _ entity.DirChecker = (*LocalhostClient)(nil)
