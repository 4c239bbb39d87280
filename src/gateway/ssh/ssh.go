package ssh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/momo182/webeid-deploy/src/lobby"
	"github.com/pkg/errors"
	"github.com/samber/oops"
	"golang.org/x/crypto/ssh"
)

// killDelay is how long an interrupted remote command gets before its
// session is closed. Older sshd builds drop signal requests.
const killDelay = 5 * time.Second

// SSHClient is a wrapper over the SSH connection, one session per command.
type SSHClient struct {
	conn         *ssh.Client
	ConnectOrder entity.ConnectOrder
	User         string
	Host         string
	Password     string
	IdentityFile string
	Timeout      time.Duration
	Color        string
	NoPrefix     bool
	Stdout       io.Writer
	Stderr       io.Writer
	connOpened   bool
}

// SSHDialFunc can dial an ssh server and return a client
type SSHDialFunc func(net, addr string, config *ssh.ClientConfig) (*ssh.Client, error)

// Dial dials addr directly.
func Dial(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	return ssh.Dial(network, addr, config)
}

// GetHost returns host:port of the client.
func (c *SSHClient) GetHost() string {
	return c.Host
}

// GetSSHConfig returns the client configuration of the SSHClient.
func (c *SSHClient) GetSSHConfig() *ssh.ClientConfig {
	return c.ConnectOrder.ClientConfig
}

// GetConnection returns the underlying ssh connection.
func (c *SSHClient) GetConnection() *ssh.Client {
	return c.conn
}

// SetConnection sets the SSH client connection of the SSHClient.
func (c *SSHClient) SetConnection(client *ssh.Client) {
	c.conn = client
	c.connOpened = client != nil
}

// Prepare fills the ssh client config for host. It does not dial.
func (c *SSHClient) Prepare(host entity.Host) error {
	l := kemba.New("gw::ssh::SSHClient.Prepare").Printf

	c.Host = host.Addr
	if host.User != "" {
		c.User = host.User
	}
	if host.Password != "" {
		c.Password = host.Password
	}
	if host.IdentityFile != "" {
		c.IdentityFile = host.IdentityFile
	}
	if c.User == "" {
		return ErrConnect(c.User, c.Host, "no user to log in as")
	}

	auth, err := authMethods(c.Password, lobby.ResolvePath(c.IdentityFile))
	if err != nil {
		return ErrConnect(c.User, c.Host, err.Error())
	}

	l("creating config for %s@%s with %d auth methods", c.User, c.Host, len(auth))
	config := &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.Timeout,
	}

	c.ConnectOrder = entity.ConnectOrder{
		Host:         c.Host,
		ClientConfig: config,
	}
	return nil
}

// Connect creates SSH connection to a specified host.
func (c *SSHClient) Connect(host entity.Host) error {
	if err := c.Prepare(host); err != nil {
		return err
	}
	return c.ConnectWith(Dial)
}

// ConnectWith creates a SSH connection to the prepared host. It will use
// dialer to establish the connection.
func (c *SSHClient) ConnectWith(dialer SSHDialFunc) error {
	l := kemba.New("gw::ssh::SSHClient.ConnectWith").Printf
	l("connecting to %v", c.Host)

	if c.connOpened {
		return fmt.Errorf("Already connected")
	}
	config := c.ConnectOrder.ClientConfig
	if config == nil {
		return fmt.Errorf("ssh ClientConfig is nil")
	}

	conn, err := dialer("tcp", c.Host, config)
	if err != nil {
		return ErrConnect(c.User, c.Host, err.Error())
	}

	c.SetConnection(conn)
	l("done creating ssh client")
	return nil
}

// DialThrough will create a new connection from the ssh server c is
// connected to. DialThrough is an SSHDialFunc.
func (c *SSHClient) DialThrough(net, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := c.conn.Dial(net, addr)
	if err != nil {
		return nil, err
	}
	cl, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		return nil, err
	}
	return ssh.NewClient(cl, chans, reqs), nil
}

// Run runs cmd on the remote host and waits for it. Output is streamed to
// c.Stdout/c.Stderr with the host prefix and captured into the result.
// Cancelling ctx sends SIGINT to the remote command.
func (c *SSHClient) Run(ctx context.Context, cmd entity.Command) (*entity.Result, error) {
	l := kemba.New("gw::ssh::SSHClient.Run").Printf

	if !c.connOpened || c.conn == nil {
		return nil, errors.New("ssh client not connected")
	}

	l("setting pipes")
	sess, err := c.conn.NewSession()
	if err != nil {
		return nil, ErrConnect(c.User, c.Host, "new session: "+err.Error())
	}
	defer sess.Close()

	stdout, err := sess.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := sess.StderrPipe()
	if err != nil {
		return nil, err
	}

	command := lobby.FormatCommand(cmd)
	l("built following command:\n%s", command)

	if err := sess.Start(command); err != nil {
		return nil, oops.Trace("3C0E1F4B-2F7E-4E44-9A57-3D0B8A8A5E61").
			Hint("starting remote command").
			With("host", c.Host).
			With("command", command).
			Wrap(err)
	}

	var wg sync.WaitGroup
	var outBuf, errBuf bytes.Buffer
	prefix := c.Prefix()
	lobby.StreamOutput(&wg, stdout, c.Stdout, &outBuf, prefix, "reading STDOUT failed")
	lobby.StreamOutput(&wg, stderr, c.Stderr, &errBuf, prefix, "reading STDERR failed")

	done := make(chan error, 1)
	go func() {
		wg.Wait()
		done <- sess.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		l("context done, interrupting remote command")
		if err := sess.Signal(ssh.SIGINT); err != nil {
			l("failed to signal session: %v", err)
		}
		select {
		case waitErr = <-done:
		case <-time.After(killDelay):
			l("remote command ignored SIGINT, closing session")
			sess.Close()
			<-done
			waitErr = errors.Wrap(ctx.Err(), "remote command interrupted")
		}
	}

	status, err := exitStatus(waitErr)
	if err != nil {
		return nil, oops.Trace("9B8F1E52-61C4-4B2D-8E8A-0F2C6A7D4B13").
			Hint("waiting for remote command").
			With("host", c.Host).
			With("command", command).
			Wrap(err)
	}

	return &entity.Result{
		Command:    cmd,
		Host:       c.Host,
		Stdout:     outBuf.String(),
		Stderr:     errBuf.String(),
		ExitStatus: status,
	}, nil
}

// exitStatus turns the error of Session.Wait into a shell exit status.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		status := exitErr.ExitStatus()
		if status == 0 && exitErr.Signal() != "" {
			// killed by a signal, there is no status to hand over
			status = entity.ExitGeneric
		}
		return status, nil
	}
	return 0, err
}

// Close closes the underlying SSH connection.
func (c *SSHClient) Close() error {
	if !c.connOpened {
		return fmt.Errorf("Trying to close the already closed connection")
	}

	err := c.conn.Close()
	c.connOpened = false
	return err
}

// Prefix returns the prefix put in front of every output line.
func (c *SSHClient) Prefix() string {
	if c.NoPrefix {
		return ""
	}
	return lobby.Prefix(c.User, entity.Host{Addr: c.Host}.Hostname(), c.Color)
}

// ErrConnect is shorthand for the entity error with the ssh client fields.
func ErrConnect(user, host, reason string) error {
	return entity.ErrConnect{User: user, Host: host, Reason: reason}
}

var _ entity.RemoteExecutor = (*SSHClient)(nil)
var _ entity.DirChecker = (*SSHClient)(nil)
