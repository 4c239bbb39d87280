package usecase_test

import (
	"context"
	"fmt"

	"github.com/momo182/webeid-deploy/src/entity"
)

// recordingExecutor remembers every command and answers with the status
// configured for it.
type recordingExecutor struct {
	host      string
	statuses  map[string]int
	runErr    error
	statErr   error
	commands  []entity.Command
	statted   []string
	closed    int
	onCommand func(cmd entity.Command)
}

func (e *recordingExecutor) Run(ctx context.Context, cmd entity.Command) (*entity.Result, error) {
	e.commands = append(e.commands, cmd)
	if e.onCommand != nil {
		e.onCommand(cmd)
	}
	if e.runErr != nil {
		return nil, e.runErr
	}
	return &entity.Result{
		Command:    cmd,
		Host:       e.host,
		Stdout:     "out: " + cmd.Run,
		ExitStatus: e.statuses[cmd.Run],
	}, nil
}

func (e *recordingExecutor) GetHost() string { return e.host }

func (e *recordingExecutor) Close() error {
	e.closed++
	return nil
}

func (e *recordingExecutor) runs() []string {
	var runs []string
	for _, cmd := range e.commands {
		runs = append(runs, cmd.Run)
	}
	return runs
}

// statingExecutor adds StatDir to recordingExecutor.
type statingExecutor struct {
	*recordingExecutor
}

func (e statingExecutor) StatDir(path string) error {
	e.statted = append(e.statted, path)
	return e.statErr
}

type fakeConnector struct {
	executors  map[string]entity.RemoteExecutor
	connectErr error
	connected  []string
	closed     int
}

func (c *fakeConnector) Connect(host entity.Host) (entity.RemoteExecutor, error) {
	c.connected = append(c.connected, host.Addr)
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	exec, ok := c.executors[host.Addr]
	if !ok {
		return nil, fmt.Errorf("no executor for %s", host.Addr)
	}
	return exec, nil
}

func (c *fakeConnector) Close() error {
	c.closed++
	return nil
}

type fakeChecker struct {
	failOn  string
	checked []string
}

func (c *fakeChecker) Check(cmd, cmdName string) error {
	c.checked = append(c.checked, cmdName)
	if cmd == c.failOn {
		return fmt.Errorf("SC1000: %s", cmdName)
	}
	return nil
}

func (c *fakeChecker) AddNumbers(data []byte) []byte { return data }
