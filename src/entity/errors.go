package entity

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrUsage = errors.New("Usage: webeid-deploy [OPTIONS] TASK [TASK...]")

// ErrConnect describes a connection error.
type ErrConnect struct {
	User   string
	Host   string
	Reason string
}

// Error returns a formatted string representation of the connection error.
func (e ErrConnect) Error() string {
	return fmt.Sprintf(`Connect("%v@%v"): %v`, e.User, e.Host, e.Reason)
}

// ErrTaskNotFound is returned for a task name missing from the registry.
type ErrTaskNotFound struct {
	Name string
}

func (e ErrTaskNotFound) Error() string {
	return fmt.Sprintf("task not found: %q", e.Name)
}

// ErrConfig covers bad flags, unreadable config files and failed pre-flight checks.
type ErrConfig struct {
	Reason string
}

func (e ErrConfig) Error() string {
	return "config: " + e.Reason
}

// ErrCommand is a remote command that exited non-zero.
type ErrCommand struct {
	Host   string
	Result *Result
}

func (e ErrCommand) Error() string {
	if e.Result == nil {
		return fmt.Sprintf("%v: command failed", e.Host)
	}
	return fmt.Sprintf("%v: %q exited with status %d", e.Host, e.Result.Command.String(), e.Result.ExitStatus)
}

// ExitCode maps an invocation error to a process exit code. A failing
// remote command hands its own status through.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cmdErr ErrCommand
	if errors.As(err, &cmdErr) {
		if cmdErr.Result != nil && cmdErr.Result.ExitStatus > 0 {
			return cmdErr.Result.ExitStatus
		}
		return ExitGeneric
	}

	var connErr ErrConnect
	if errors.As(err, &connErr) {
		return ExitConnect
	}

	var notFound ErrTaskNotFound
	var confErr ErrConfig
	if errors.As(err, &notFound) || errors.As(err, &confErr) || errors.Is(err, ErrUsage) {
		return ExitConfig
	}

	return ExitGeneric
}
