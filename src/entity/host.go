package entity

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/clok/kemba"
	"github.com/gookit/goutil/strutil"
)

// Host is one target of an invocation.
type Host struct {
	Addr         string // host:port
	User         string
	Password     string
	IdentityFile string
}

// Hostname returns Addr without the port.
func (h Host) Hostname() string {
	if name, _, err := net.SplitHostPort(h.Addr); err == nil {
		return name
	}
	return h.Addr
}

func (h Host) IsLocal() bool {
	name := h.Hostname()
	return name == "localhost" || name == "127.0.0.1"
}

func (h Host) String() string {
	if h.User == "" {
		return h.Addr
	}
	return h.User + "@" + h.Addr
}

// ParseHost parses and normalizes `[ssh://][user@]host[:port][ | password]`.
// defaultUser and defaultPort fill the blanks.
func ParseHost(raw, defaultUser string, defaultPort int) (Host, error) {
	l := kemba.New("entity::ParseHost").Printf
	var h Host

	raw = strings.TrimSpace(raw)
	l("host as string: %s", raw)
	if strutil.IsBlank(raw) {
		return h, ErrConfig{Reason: "empty host"}
	}

	if at := strings.Index(raw, PassSeparator); at != -1 {
		l("password found")
		h.Password = raw[at+len(PassSeparator):]
		raw = raw[:at]
	}

	// Remove extra "ssh://" schema
	raw = strings.TrimPrefix(raw, "ssh://")

	// Split by the last "@", since there may be an "@" in the username.
	if at := strings.LastIndex(raw, "@"); at != -1 {
		h.User = raw[:at]
		raw = raw[at+1:]
	}
	if h.User == "" {
		h.User = defaultUser
	}

	if strings.Contains(raw, "/") {
		return h, ErrConnect{User: h.User, Host: raw, Reason: "unexpected slash in the host URL"}
	}

	if defaultPort == 0 {
		defaultPort = DefaultSSHPort
	}

	// Add default port, if not set
	if _, port, err := net.SplitHostPort(raw); err == nil {
		if _, err := strconv.Atoi(port); err != nil {
			return h, ErrConfig{Reason: fmt.Sprintf("bad port in host %q", raw)}
		}
		h.Addr = raw
	} else {
		h.Addr = net.JoinHostPort(strings.Trim(raw, "[]"), strconv.Itoa(defaultPort))
	}

	if IsShell(h.Password) {
		pass, err := ResolveShell(h.Password)
		if err != nil {
			return h, err
		}
		h.Password = pass
	}

	l("parsed host: %s", h.String())
	return h, nil
}
