package usecase

import (
	"io"
	"os"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	clientLocal "github.com/momo182/webeid-deploy/src/gateway/localhost"
	clientSSH "github.com/momo182/webeid-deploy/src/gateway/ssh"
	"github.com/pkg/errors"
)

// Connector opens SSH or localhost executors for the hosts of an
// invocation, going through the bastion when one is configured.
type Connector struct {
	cfg     *entity.Config
	Stdout  io.Writer
	Stderr  io.Writer
	bastion *clientSSH.SSHClient
	count   int
}

func NewConnector(cfg *entity.Config) *Connector {
	return &Connector{
		cfg:    cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Connect returns a connected executor for host.
func (c *Connector) Connect(host entity.Host) (entity.RemoteExecutor, error) {
	l := kemba.New("uc::Connector.Connect").Printf
	color := c.nextColor()

	if host.IsLocal() {
		l("found localhost")
		local := &clientLocal.LocalhostClient{
			Color:    color,
			NoPrefix: c.cfg.DisablePrefix,
			Stdout:   c.Stdout,
			Stderr:   c.Stderr,
		}
		if err := local.Connect(host); err != nil {
			return nil, errors.Wrap(err, "connecting to localhost failed")
		}
		return local, nil
	}

	l("found remote host: %s", host.String())
	remote := c.newSSHClient(color)
	if err := remote.Prepare(host); err != nil {
		return nil, err
	}

	if c.cfg.Bastion != "" {
		bastion, err := c.connectToBastionHost()
		if err != nil {
			return nil, err
		}
		l("bastion is set, trying it now")
		if err := remote.ConnectWith(bastion.DialThrough); err != nil {
			return nil, errors.Wrap(err, "connecting to remote host through bastion failed")
		}
		return remote, nil
	}

	l("connecting via direct connection")
	if err := remote.ConnectWith(clientSSH.Dial); err != nil {
		return nil, errors.Wrap(err, "connecting to remote host failed")
	}
	return remote, nil
}

// Close closes the bastion connection, if any.
func (c *Connector) Close() error {
	if c.bastion == nil {
		return nil
	}
	err := c.bastion.Close()
	c.bastion = nil
	return err
}

func (c *Connector) connectToBastionHost() (*clientSSH.SSHClient, error) {
	l := kemba.New("uc::Connector.connectToBastionHost").Printf
	if c.bastion != nil {
		return c.bastion, nil
	}

	l("prepping ssh client to bastion: %s", c.cfg.Bastion)
	host, err := entity.ParseHost(c.cfg.Bastion, c.cfg.User, entity.DefaultSSHPort)
	if err != nil {
		return nil, err
	}

	bastion := c.newSSHClient("")
	if err := bastion.Connect(host); err != nil {
		return nil, errors.Wrap(err, "connecting to bastion failed")
	}
	c.bastion = bastion
	return bastion, nil
}

func (c *Connector) newSSHClient(color string) *clientSSH.SSHClient {
	return &clientSSH.SSHClient{
		User:         c.cfg.User,
		Password:     c.cfg.Password,
		IdentityFile: c.cfg.IdentityFile,
		Timeout:      c.cfg.ConnectTimeout,
		Color:        color,
		NoPrefix:     c.cfg.DisablePrefix,
		Stdout:       c.Stdout,
		Stderr:       c.Stderr,
	}
}

func (c *Connector) nextColor() string {
	if c.cfg.DisableColor {
		return ""
	}
	color := entity.Colors[c.count%len(entity.Colors)]
	c.count++
	return color
}

var _ entity.ConnectorFacade = (*Connector)(nil)
