package appinit

import (
	"fmt"
	"net"
	"regexp"
	"strconv"

	"github.com/clok/kemba"
	"github.com/mikkeloscar/sshconfig"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/momo182/webeid-deploy/src/lobby"
	"github.com/pkg/errors"
)

// ApplySSHConfig rewrites hosts whose name matches a Host entry of the
// ssh_config file at path to that entry's HostName, Port, User and
// IdentityFile. Values set explicitly on the host win over the file.
func ApplySSHConfig(cfg *entity.Config, path string) error {
	l := kemba.New("appinit::ApplySSHConfig").Printf

	l("sshconfig: %s", path)
	confHosts, err := sshconfig.ParseSSHConfig(lobby.ResolvePath(path))
	if err != nil {
		return entity.ErrConfig{Reason: errors.Wrap(err, "reading ssh config").Error()}
	}

	l("forming conf map")
	confMap := map[string]*sshconfig.SSHHost{}
	for _, conf := range confHosts {
		for _, alias := range conf.Host {
			confMap[alias] = conf
		}
	}

	for i, host := range cfg.Hosts {
		conf, found := confMap[host.Hostname()]
		if !found {
			continue
		}
		l("found %s in ssh config", host.Hostname())

		name := conf.HostName
		if name == "" {
			name = host.Hostname()
		}
		port := conf.Port
		if port == 0 {
			port = entity.DefaultSSHPort
		}
		cfg.Hosts[i].Addr = net.JoinHostPort(name, strconv.Itoa(port))

		if conf.User != "" && host.User == cfg.User {
			cfg.Hosts[i].User = conf.User
		}
		if conf.IdentityFile != "" && host.IdentityFile == cfg.IdentityFile {
			cfg.Hosts[i].IdentityFile = lobby.ResolvePath(conf.IdentityFile)
		}
	}
	return nil
}

// FilterHosts keeps the hosts matching the only regexp and drops the ones
// matching except. Empty patterns are ignored. Filtering every host away is
// an error.
func FilterHosts(hosts []entity.Host, only, except string) ([]entity.Host, error) {
	l := kemba.New("appinit::FilterHosts").Printf
	if only == "" && except == "" {
		return hosts, nil
	}

	var onlyExpr, exceptExpr *regexp.Regexp
	var err error
	if only != "" {
		l("prep regexp for --only")
		if onlyExpr, err = regexp.CompilePOSIX(only); err != nil {
			return nil, entity.ErrConfig{Reason: fmt.Sprintf("bad --only regexp: %v", err)}
		}
	}
	if except != "" {
		l("prep regexp for --except")
		if exceptExpr, err = regexp.CompilePOSIX(except); err != nil {
			return nil, entity.ErrConfig{Reason: fmt.Sprintf("bad --except regexp: %v", err)}
		}
	}

	var result []entity.Host
	for _, host := range hosts {
		if onlyExpr != nil && !onlyExpr.MatchString(host.String()) {
			continue
		}
		if exceptExpr != nil && exceptExpr.MatchString(host.String()) {
			continue
		}
		result = append(result, host)
	}

	l("hosts left after filtering: %v", len(result))
	if len(result) == 0 && len(hosts) > 0 {
		return nil, entity.ErrConfig{Reason: fmt.Sprintf("no hosts left after --only %q --except %q", only, except)}
	}
	return result, nil
}
