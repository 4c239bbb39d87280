package shellcheck

import (
	"strconv"
	"strings"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/samber/oops"
)

// RunShellcheck lints every command of tasks, collecting all findings and
// returning the last one.
func RunShellcheck(checker entity.ShellCheckFacade, tasks []entity.Task) error {
	l := kemba.New("gw::shellcheck::RunShellcheck").Printf
	if checker == nil {
		return oops.Trace("0FEB1489-CC42-43CC-8C6F-97ED76513004").
			Hint("no shellcheck provider").
			Errorf("checker is nil")
	}

	var errs []error
	for _, task := range tasks {
		for i, command := range task.Commands {
			command = strings.TrimSpace(command)
			if command == "" {
				continue
			}
			name := task.Name + "#" + strconv.Itoa(i+1)
			l("inspected command: %s", name)
			if e := checker.Check(command, name); e != nil {
				errs = append(errs, e)
			}
		}
	}

	if len(errs) > 0 {
		return oops.Trace("60030684-F634-461C-9657-98025D99B950").
			Hint("shellcheck found errors in the task commands").
			With("failed", len(errs)).
			Wrap(errs[len(errs)-1])
	}
	return nil
}
