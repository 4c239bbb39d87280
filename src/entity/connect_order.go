package entity

import "golang.org/x/crypto/ssh"

// ConnectOrder is everything needed to (re)dial a host.
type ConnectOrder struct {
	Host         string // will contain ip:port
	ClientConfig *ssh.ClientConfig
}
