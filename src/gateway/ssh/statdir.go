package ssh

import (
	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/pkg/sftp"
	"github.com/samber/oops"
)

// StatDir checks over SFTP that path exists on the remote host and is a
// directory. Relative paths resolve against the login directory.
func (c *SSHClient) StatDir(path string) error {
	l := kemba.New("gw::ssh::SSHClient.StatDir").Printf
	l("stat %s on %s", path, c.Host)

	if path == "" {
		return entity.ErrConfig{Reason: entity.DeployDirEnv + " is empty"}
	}

	client, err := sftp.NewClient(c.GetConnection())
	if err != nil {
		return oops.Trace("7F1D9E0A-3C4B-4E2E-9F61-22B0C1A8D5E7").
			Hint("failed to create sftp client").
			With("host", c.Host).
			Wrap(err)
	}
	defer client.Close()

	info, err := client.Stat(path)
	if err != nil {
		return entity.ErrConfig{Reason: "remote dir " + path + " on " + c.Host + ": " + err.Error()}
	}
	if !info.IsDir() {
		return entity.ErrConfig{Reason: "remote path " + path + " on " + c.Host + " is not a directory"}
	}
	return nil
}
