package usecase_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/momo182/webeid-deploy/src/usecase"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deploySequence = []string{
	entity.CmdGitPull,
	entity.CmdBuildImage,
	entity.CmdComposeDown,
	entity.CmdComposeUp,
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func singleHost(t *testing.T, dir string) (*entity.Config, *recordingExecutor, *fakeConnector) {
	t.Helper()
	host, err := entity.ParseHost("deploy@web.example.org", "", 22)
	require.NoError(t, err)

	exec := &recordingExecutor{host: host.Addr, statuses: map[string]int{}}
	connector := &fakeConnector{executors: map[string]entity.RemoteExecutor{host.Addr: exec}}
	cfg := &entity.Config{Hosts: []entity.Host{host}, DeployDir: dir}
	return cfg, exec, connector
}

func newRunner(connector entity.ConnectorFacade) *usecase.Runner {
	return usecase.NewRunner(usecase.DefaultRegistry(), connector).WithLogger(quietLogger())
}

func TestRunUname(t *testing.T) {
	cfg, exec, connector := singleHost(t, "/srv/app")

	results, err := newRunner(connector).Run(context.Background(), cfg, "uname")
	require.NoError(t, err)

	assert.Equal(t, []string{"uname -a"}, exec.runs())
	assert.False(t, exec.commands[0].Dir.Scoped)
	require.Len(t, results, 1)
	assert.Equal(t, "out: uname -a", results[0].Stdout)
	assert.Equal(t, 0, results[0].ExitStatus)
	assert.Equal(t, 1, exec.closed)
	assert.Equal(t, 1, connector.closed)
}

func TestRunDeploy(t *testing.T) {
	t.Run("Four Commands In Order, All Scoped", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")

		results, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		require.NoError(t, err)

		assert.Equal(t, deploySequence, exec.runs())
		for _, cmd := range exec.commands {
			assert.Equal(t, entity.In("/srv/app"), cmd.Dir)
		}
		assert.Len(t, results, 4)
		assert.Equal(t, []string{"web.example.org:22"}, connector.connected)
		assert.Equal(t, 1, exec.closed)
	})

	t.Run("Build Failure Stops The Rest", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		exec.statuses[entity.CmdBuildImage] = 1

		results, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		require.Error(t, err)

		assert.Equal(t, deploySequence[:2], exec.runs())
		require.Len(t, results, 2)
		assert.Equal(t, 1, results[1].ExitStatus)

		var cmdErr entity.ErrCommand
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, entity.CmdBuildImage, cmdErr.Result.Command.Run)
		assert.Equal(t, 1, entity.ExitCode(err))
		assert.Equal(t, 1, exec.closed)
	})

	t.Run("Exit Status Is Handed Through", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		exec.statuses[entity.CmdGitPull] = 128

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		assert.Equal(t, 128, entity.ExitCode(err))
		assert.Equal(t, deploySequence[:1], exec.runs())
	})

	t.Run("Empty Dir Is Still Attempted", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "")

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		require.NoError(t, err)

		assert.Equal(t, deploySequence, exec.runs())
		for _, cmd := range exec.commands {
			assert.True(t, cmd.Dir.Scoped)
			assert.Equal(t, "", cmd.Dir.Path)
		}
	})

	t.Run("Twice Repeats The Sequence", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		runner := newRunner(connector)

		_, err := runner.Run(context.Background(), cfg, "deploy")
		require.NoError(t, err)
		_, err = runner.Run(context.Background(), cfg, "deploy")
		require.NoError(t, err)

		assert.Equal(t, append(append([]string{}, deploySequence...), deploySequence...), exec.runs())
		assert.Equal(t, 2, exec.closed)
	})

	t.Run("Same Task Twice In One Invocation", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy", "deploy")
		require.NoError(t, err)

		assert.Len(t, exec.commands, 8)
		assert.Len(t, connector.connected, 1)
	})
}

func TestRunErrors(t *testing.T) {
	t.Run("Unknown Task Connects Nowhere", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")

		_, err := newRunner(connector).Run(context.Background(), cfg, "uname", "nope")

		var notFound entity.ErrTaskNotFound
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "nope", notFound.Name)
		assert.Empty(t, connector.connected)
		assert.Empty(t, exec.commands)
		assert.Equal(t, entity.ExitConfig, entity.ExitCode(err))
	})

	t.Run("No Task Names", func(t *testing.T) {
		cfg, _, connector := singleHost(t, "/srv/app")
		_, err := newRunner(connector).Run(context.Background(), cfg)
		assert.True(t, errors.Is(err, entity.ErrUsage))
		assert.Empty(t, connector.connected)
	})

	t.Run("No Hosts", func(t *testing.T) {
		_, _, connector := singleHost(t, "/srv/app")
		_, err := newRunner(connector).Run(context.Background(), &entity.Config{}, "uname")

		var confErr entity.ErrConfig
		assert.True(t, errors.As(err, &confErr))
		assert.Empty(t, connector.connected)
	})

	t.Run("Connection Failure Runs Nothing", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		connector.connectErr = entity.ErrConnect{User: "deploy", Host: "web.example.org:22", Reason: "connection refused"}

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy")

		var connErr entity.ErrConnect
		require.True(t, errors.As(err, &connErr))
		assert.Empty(t, exec.commands)
		assert.Equal(t, entity.ExitConnect, entity.ExitCode(err))
		assert.Equal(t, 1, connector.closed)
	})

	t.Run("Transport Failure Stops The Task", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		exec.runErr = fmt.Errorf("session closed")

		results, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		require.Error(t, err)
		assert.Empty(t, results)
		assert.Len(t, exec.commands, 1)
		assert.Equal(t, 1, exec.closed)
	})

	t.Run("Cancelled Context Stops Before Next Command", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		ctx, cancel := context.WithCancel(context.Background())
		exec.onCommand = func(cmd entity.Command) {
			if cmd.Run == entity.CmdGitPull {
				cancel()
			}
		}

		_, err := newRunner(connector).Run(ctx, cfg, "deploy")
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, deploySequence[:1], exec.runs())
		assert.Equal(t, 1, exec.closed)
	})

	t.Run("First Failing Host Stops The Rest", func(t *testing.T) {
		first, err := entity.ParseHost("web1", "deploy", 22)
		require.NoError(t, err)
		second, err := entity.ParseHost("web2", "deploy", 22)
		require.NoError(t, err)

		exec1 := &recordingExecutor{host: first.Addr, statuses: map[string]int{entity.CmdUname: 2}}
		exec2 := &recordingExecutor{host: second.Addr, statuses: map[string]int{}}
		connector := &fakeConnector{executors: map[string]entity.RemoteExecutor{
			first.Addr:  exec1,
			second.Addr: exec2,
		}}
		cfg := &entity.Config{Hosts: []entity.Host{first, second}}

		_, err = newRunner(connector).Run(context.Background(), cfg, "uname")
		assert.Equal(t, 2, entity.ExitCode(err))
		assert.Equal(t, []string{"web1:22"}, connector.connected)
		assert.Empty(t, exec2.commands)
	})
}

func TestRunMultipleHosts(t *testing.T) {
	first, err := entity.ParseHost("web1", "deploy", 22)
	require.NoError(t, err)
	second, err := entity.ParseHost("web2", "deploy", 22)
	require.NoError(t, err)

	exec1 := &recordingExecutor{host: first.Addr, statuses: map[string]int{}}
	exec2 := &recordingExecutor{host: second.Addr, statuses: map[string]int{}}
	connector := &fakeConnector{executors: map[string]entity.RemoteExecutor{
		first.Addr:  exec1,
		second.Addr: exec2,
	}}
	cfg := &entity.Config{Hosts: []entity.Host{first, second}, DeployDir: "/srv/app"}

	results, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
	require.NoError(t, err)

	assert.Equal(t, []string{"web1:22", "web2:22"}, connector.connected)
	assert.Equal(t, deploySequence, exec1.runs())
	assert.Equal(t, deploySequence, exec2.runs())
	assert.Len(t, results, 8)
	assert.Equal(t, 1, exec1.closed)
	assert.Equal(t, 1, exec2.closed)
}

func TestRunPreflight(t *testing.T) {
	probing := func(t *testing.T, dir string) (*entity.Config, statingExecutor, *fakeConnector) {
		cfg, exec, _ := singleHost(t, dir)
		cfg.Preflight = true
		checker := statingExecutor{exec}
		connector := &fakeConnector{executors: map[string]entity.RemoteExecutor{exec.host: checker}}
		return cfg, checker, connector
	}

	t.Run("Stat Before Deploy", func(t *testing.T) {
		cfg, exec, connector := probing(t, "/srv/app")

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		require.NoError(t, err)
		assert.Equal(t, []string{"/srv/app"}, exec.statted)
		assert.Equal(t, deploySequence, exec.runs())
	})

	t.Run("Missing Dir Runs Nothing", func(t *testing.T) {
		cfg, exec, connector := probing(t, "/srv/missing")
		exec.statErr = entity.ErrConfig{Reason: "remote dir /srv/missing: file does not exist"}

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy")

		var confErr entity.ErrConfig
		require.True(t, errors.As(err, &confErr))
		assert.Empty(t, exec.commands)
		assert.Equal(t, 1, exec.closed)
	})

	t.Run("Unscoped Task Is Not Checked", func(t *testing.T) {
		cfg, exec, connector := probing(t, "/srv/app")

		_, err := newRunner(connector).Run(context.Background(), cfg, "uname")
		require.NoError(t, err)
		assert.Empty(t, exec.statted)
	})

	t.Run("Executor Without StatDir", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		cfg.Preflight = true

		_, err := newRunner(connector).Run(context.Background(), cfg, "deploy")
		var confErr entity.ErrConfig
		assert.True(t, errors.As(err, &confErr))
		assert.Empty(t, exec.commands)
	})
}

func TestRunLint(t *testing.T) {
	t.Run("Every Command Is Checked", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		checker := &fakeChecker{}

		_, err := newRunner(connector).WithShellcheck(checker).Run(context.Background(), cfg, "deploy")
		require.NoError(t, err)
		assert.Equal(t, []string{"deploy#1", "deploy#2", "deploy#3", "deploy#4"}, checker.checked)
		assert.Len(t, exec.commands, 4)
	})

	t.Run("Lint Failure Connects Nowhere", func(t *testing.T) {
		cfg, exec, connector := singleHost(t, "/srv/app")
		checker := &fakeChecker{failOn: entity.CmdComposeDown}

		_, err := newRunner(connector).WithShellcheck(checker).Run(context.Background(), cfg, "deploy")

		var confErr entity.ErrConfig
		require.True(t, errors.As(err, &confErr))
		assert.Empty(t, connector.connected)
		assert.Empty(t, exec.commands)
	})
}
