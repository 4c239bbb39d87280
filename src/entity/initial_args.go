package entity

import (
	"fmt"
	"strings"
)

// InitialArgs holds what came from the command line, before it is merged
// with the config file and the environment.
type InitialArgs struct {
	ConfigFile  string
	EnvVars     FlagStringSlice
	SshConfig   string
	LogFormat   string
	OnlyHosts   string
	ExceptHosts string

	Debug         bool
	DisablePrefix bool
	Preflight     bool
	Lint          bool

	ShowVersion  bool
	ShowExample  bool
	ListTasks    bool
	DisableColor bool
}

// FlagStringSlice collects a repeated flag, it satisfies pflag.Value.
type FlagStringSlice []string

func (f *FlagStringSlice) String() string {
	return fmt.Sprintf("[%s]", strings.Join(*f, ","))
}

func (f *FlagStringSlice) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func (f *FlagStringSlice) Type() string {
	return "KEY=VALUE"
}
