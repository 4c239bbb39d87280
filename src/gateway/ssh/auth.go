package ssh

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clok/kemba"
	"github.com/gookit/goutil/fsutil"
	"github.com/gookit/goutil/strutil"
	"github.com/samber/oops"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var initSignersOnce sync.Once
var defaultSigners []ssh.Signer

// initSigners collects signers from a running ssh-agent and from the
// default ~/.ssh/id_* keys. It runs once per process.
func initSigners() {
	l := kemba.New("gw::ssh::initSigners").Printf

	l("check ssh agent is running")
	if sockPath := os.Getenv("SSH_AUTH_SOCK"); sockPath != "" {
		sock, err := net.Dial("unix", sockPath)
		if err == nil {
			l("using SSH Agent")
			signers, _ := agent.NewClient(sock).Signers()
			defaultSigners = append(defaultSigners, signers...)
		}
	}

	l("check if user has SSH private keys")
	home, _ := os.UserHomeDir()
	files, _ := filepath.Glob(filepath.Join(home, ".ssh", "id_*"))
	for _, file := range files {
		if strings.HasSuffix(file, ".pub") {
			continue
		}
		signer, err := readSigner(file)
		if err != nil {
			l("skipping %s: %v", file, err)
			continue
		}
		l("using SSH private key: %s", file)
		defaultSigners = append(defaultSigners, signer)
	}
	l("found %v SSH signers", len(defaultSigners))
}

func readSigner(file string) (ssh.Signer, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(data)
}

// authMethods returns the auth methods for a host. An explicit identity
// file goes first, then agent and default keys, then the password.
func authMethods(password, identityFile string) ([]ssh.AuthMethod, error) {
	l := kemba.New("gw::ssh::authMethods").Printf
	initSignersOnce.Do(initSigners)

	var signers []ssh.Signer
	if identityFile != "" {
		if !fsutil.FileExists(identityFile) {
			return nil, oops.Trace("A0B6B0D6-97F1-4D8B-8E44-7E1F1C2D0F3A").
				Hint("identity file does not exist").
				With("identity_file", identityFile).
				Errorf("no such identity file: %s", identityFile)
		}
		signer, err := readSigner(identityFile)
		if err != nil {
			return nil, oops.Trace("5D7C3C2E-0B54-4E34-A2C4-5B0D41C5E6F9").
				Hint("parsing identity file").
				With("identity_file", identityFile).
				Wrap(err)
		}
		signers = append(signers, signer)
	}
	signers = append(signers, defaultSigners...)

	var methods []ssh.AuthMethod
	if len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}
	if !strutil.IsEmpty(password) {
		l("adding password auth to ssh")
		methods = append(methods, ssh.Password(password))
	}

	if len(methods) == 0 {
		return nil, oops.Trace("EDF488C4-F467-4279-A031-241F05BCDBC3").
			Hint("no ssh-agent, no key in ~/.ssh and no password given").
			Errorf("no auth methods available")
	}
	return methods, nil
}
