package usecase

import (
	"context"

	"github.com/clok/kemba"
	"github.com/gookit/goutil/dump"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/pkg/errors"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

// Runner executes named tasks against the configured hosts.
type Runner struct {
	registry  *Registry
	connector entity.ConnectorFacade
	checker   entity.ShellCheckFacade
	log       logrus.FieldLogger
}

// NewRunner creates a new Runner instance.
func NewRunner(registry *Registry, connector entity.ConnectorFacade) *Runner {
	return &Runner{
		registry:  registry,
		connector: connector,
		log:       logrus.StandardLogger(),
	}
}

// WithLogger replaces the operator logger.
func (r *Runner) WithLogger(log logrus.FieldLogger) *Runner {
	r.log = log
	return r
}

// WithShellcheck lints the selected tasks before connecting.
func (r *Runner) WithShellcheck(checker entity.ShellCheckFacade) *Runner {
	r.checker = checker
	return r
}

// Run runs the tasks named in names on every host of cfg, one host after
// another. Every name is resolved before the first connection. The first
// failing command stops everything; its result is the last one returned.
func (r *Runner) Run(ctx context.Context, cfg *entity.Config, names ...string) ([]*entity.Result, error) {
	l := kemba.New("uc::Runner.Run").Printf

	if len(names) == 0 {
		return nil, entity.ErrUsage
	}
	if cfg == nil {
		return nil, entity.ErrConfig{Reason: "no configuration"}
	}

	tasks, err := r.registry.Resolve(names)
	if err != nil {
		return nil, err
	}
	l("resolved %d tasks", len(tasks))

	if len(cfg.Hosts) == 0 {
		return nil, entity.ErrConfig{Reason: "no hosts given, use --hosts or WEBEID_HOSTS"}
	}

	if r.checker != nil {
		if err := lint(r.checker, tasks); err != nil {
			return nil, err
		}
	}

	defer func() {
		if err := r.connector.Close(); err != nil {
			l("closing connector: %v", err)
		}
	}()

	var results []*entity.Result
	for _, host := range cfg.Hosts {
		hostResults, err := r.runOnHost(ctx, cfg, host, tasks)
		results = append(results, hostResults...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// runOnHost holds one connection for the duration of the tasks and always
// releases it.
func (r *Runner) runOnHost(ctx context.Context, cfg *entity.Config, host entity.Host, tasks []entity.Task) (results []*entity.Result, err error) {
	l := kemba.New("uc::Runner.runOnHost").Printf
	log := r.log.WithField("host", host.String())

	log.Debug("connecting")
	executor, err := r.connector.Connect(host)
	if err != nil {
		return nil, oops.Trace("B9E27F42-9351-4F36-9174-4B1F7B0B97D5").
			Hint("connecting to host failed").
			With("host", host.String()).
			Wrap(err)
	}
	defer func() {
		if cerr := executor.Close(); cerr != nil {
			l("closing %s: %v", host.String(), cerr)
		}
		log.Debug("connection closed")
	}()

	for _, task := range tasks {
		taskResults, err := r.runTask(ctx, cfg, executor, task, log)
		results = append(results, taskResults...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (r *Runner) runTask(ctx context.Context, cfg *entity.Config, executor entity.RemoteExecutor, task entity.Task, log logrus.FieldLogger) ([]*entity.Result, error) {
	l := kemba.New("uc::Runner.runTask").Printf
	log = log.WithField("task", task.Name)

	commands := task.Plan(cfg)
	l("planned commands:\n%s", dump.Format(commands))

	if cfg.Preflight && len(commands) > 0 && commands[0].Dir.Scoped {
		if err := preflight(executor, commands[0].Dir.Path); err != nil {
			return nil, err
		}
	}

	log.Info("running task")
	var results []*entity.Result
	for step, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, "interrupted")
		}

		stepLog := log.WithFields(logrus.Fields{"step": step + 1, "command": cmd.Run})
		if cmd.Dir.Scoped {
			stepLog = stepLog.WithField("dir", cmd.Dir.Path)
		}
		stepLog.Debug("running command")

		res, err := executor.Run(ctx, cmd)
		if err != nil {
			return results, oops.Trace("75F613AD-0E35-4FA0-A9D5-5A44B0C4EB08").
				Hint("running command failed").
				With("task", task.Name).
				With("command", cmd.Run).
				Wrap(err)
		}
		results = append(results, res)

		if !res.Success() {
			stepLog.WithField("status", res.ExitStatus).Error("command failed")
			return results, entity.ErrCommand{Host: executor.GetHost(), Result: res}
		}
	}

	log.Info("task done")
	return results, nil
}

func preflight(executor entity.RemoteExecutor, dir string) error {
	checker, ok := executor.(entity.DirChecker)
	if !ok {
		return entity.ErrConfig{Reason: "pre-flight check not supported for " + executor.GetHost()}
	}
	return checker.StatDir(dir)
}
