package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clok/kemba"
	"github.com/davecgh/go-spew/spew"
	"github.com/gookit/goutil/dump"
	"github.com/momo182/webeid-deploy/src/entity"
	shellcheckService "github.com/momo182/webeid-deploy/src/gateway/shellcheck"
	"github.com/momo182/webeid-deploy/src/usecase"
	"github.com/momo182/webeid-deploy/src/usecase/appinit"
	"github.com/no-src/nsgo/osutil"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	oopslogrus "github.com/samber/oops/loggers/logrus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var initialArgs *entity.InitialArgs = &entity.InitialArgs{}

var rootCmd = &cobra.Command{
	Use:               "webeid-deploy [flags] TASK [TASK...]",
	Short:             "Run the uname and deploy tasks on remote hosts over ssh",
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&initialArgs.ConfigFile, "file", "f", "", "Custom path to ./deploy.yml")
	flags.VarP(&initialArgs.EnvVars, "env", "e", "Set environment variables for remote commands")
	flags.StringVar(&initialArgs.SshConfig, "sshconfig", "", "Read SSH Config file, ie. ~/.ssh/config file")
	flags.StringVar(&initialArgs.OnlyHosts, "only", "", "Filter hosts using regexp")
	flags.StringVar(&initialArgs.ExceptHosts, "except", "", "Filter out hosts using regexp")
	flags.StringVar(&initialArgs.LogFormat, "log-format", "text", "Log format: text or json")

	// bound to config keys by appinit.LoadConfig
	flags.StringSliceP("hosts", "H", nil, "Target hosts, [user@]host[:port]")
	flags.StringP("user", "u", "", "Default ssh user")
	flags.StringP("identity", "i", "", "Private key file")
	flags.String("bastion", "", "Jump host, [user@]host[:port]")
	flags.Int("port", entity.DefaultSSHPort, "Default ssh port")
	flags.String("dir", "", "Remote deploy directory, overrides "+entity.DeployDirEnv)
	flags.String("connect-timeout", "10s", "SSH connect timeout")

	flags.BoolVarP(&initialArgs.Debug, "debug", "D", false, "Enable debug mode")
	flags.BoolVar(&initialArgs.DisablePrefix, "disable-prefix", false, "Disable hostname prefix")
	flags.BoolVar(&initialArgs.Preflight, "preflight", false, "Check the deploy directory exists before running")
	flags.BoolVar(&initialArgs.Lint, "lint", false, "Run shellcheck over the task commands first")

	flags.BoolVarP(&initialArgs.ShowVersion, "version", "v", false, "Print version")
	flags.BoolVarP(&initialArgs.ShowExample, "example", "x", false, "Print eXample deploy.yml and exit")
	flags.BoolVarP(&initialArgs.ListTasks, "list", "l", false, "List tasks and exit")
	flags.BoolVarP(&initialArgs.DisableColor, "no-color", "c", false, "Disable color")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return entity.ErrConfig{Reason: err.Error()}
	})

	spew.Config.MaxDepth = entity.SPEW_DEPTH
}

func setup(cmd *cobra.Command, args []string) error {
	if initialArgs.Debug {
		os.Setenv("DEBUG", "*")
		logrus.SetLevel(logrus.DebugLevel)
	}

	// dont trust windows on colors
	if osutil.IsWindows() {
		initialArgs.DisableColor = true
	}
	if initialArgs.DisableColor {
		pterm.DisableColor()
	}

	switch initialArgs.LogFormat {
	case "", "text":
		logrus.SetFormatter(oopslogrus.NewOopsFormatter(&logrus.TextFormatter{
			DisableColors: initialArgs.DisableColor,
			FullTimestamp: true,
		}))
	case "json":
		logrus.SetFormatter(oopslogrus.NewOopsFormatter(&logrus.JSONFormatter{}))
	default:
		return entity.ErrConfig{Reason: fmt.Sprintf("unknown log format %q", initialArgs.LogFormat)}
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	l := kemba.New("main").Printf
	registry := usecase.DefaultRegistry()
	helpMenu := &entity.HelpDisplayer{Color: !initialArgs.DisableColor, Out: os.Stderr}

	switch {
	case initialArgs.ShowVersion:
		fmt.Fprintln(os.Stderr, entity.VERSION)
		return nil
	case initialArgs.ShowExample:
		example, err := entity.ExampleConfig()
		if err != nil {
			return err
		}
		fmt.Print(example)
		return nil
	case initialArgs.ListTasks:
		helpMenu.Out = os.Stdout
		helpMenu.Show(registry.Tasks())
		return nil
	case len(args) == 0:
		helpMenu.Show(registry.Tasks())
		return entity.ErrUsage
	}

	l("resolving task names before reading config: %v", args)
	if _, err := registry.Resolve(args); err != nil {
		helpMenu.Show(registry.Tasks())
		return err
	}

	l("reading config")
	cfg, err := appinit.LoadConfig(initialArgs, cmd.Flags())
	if err != nil {
		return err
	}
	l("config:\n%s", spew.Sdump(cfg))

	runner := usecase.NewRunner(registry, usecase.NewConnector(cfg)).
		WithLogger(logrus.StandardLogger())

	if cfg.Lint {
		if shellcheckService.Installed() {
			runner.WithShellcheck(shellcheckService.New())
		} else {
			logrus.Warn("shellcheck is not installed, skipping lint")
		}
	}

	results, err := runner.Run(cmd.Context(), cfg, args...)
	l("results:\n%s", dump.Format(results))
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if errors.Is(err, entity.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			logrus.WithError(err).Error("webeid-deploy failed")
		}
		os.Exit(entity.ExitCode(err))
	}
}
