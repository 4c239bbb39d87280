package lobby

import (
	"os/user"
	"path/filepath"
	"strings"

	"github.com/clok/kemba"
	"github.com/gookit/goutil/cliutil"
)

// ResolvePath expands a leading ~/ and turns "." into the working directory.
func ResolvePath(path string) string {
	l := kemba.New("lobby::ResolvePath").Printf
	l("resolving given path: %s", path)
	if path == "" {
		return ""
	}

	if path == "." {
		return cliutil.Workdir()
	}

	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err == nil {
			path = filepath.Join(usr.HomeDir, path[2:])
		}
	}
	l("final path: %s", path)
	return path
}
