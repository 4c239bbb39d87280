package entity

import "time"

// Config is the resolved configuration of one invocation. It is built once at
// the CLI boundary and passed down; nothing below reads the process env.
type Config struct {
	Hosts          []Host
	User           string
	Password       string
	IdentityFile   string
	Bastion        string
	Port           int
	ConnectTimeout time.Duration

	// DeployDir comes from WEBEID_DIR, the config file or --dir.
	DeployDir string
	Env       EnvList

	SSHConfig     string
	Preflight     bool
	Lint          bool
	Debug         bool
	DisablePrefix bool
	DisableColor  bool
}

// FileConfig is the on-disk shape of deploy.yml.
type FileConfig struct {
	Hosts          []string `yaml:"hosts"`
	User           string   `yaml:"user,omitempty"`
	Password       string   `yaml:"password,omitempty"`
	IdentityFile   string   `yaml:"identity_file,omitempty"`
	Bastion        string   `yaml:"bastion,omitempty"`
	Port           int      `yaml:"port,omitempty"`
	Dir            string   `yaml:"dir,omitempty"`
	ConnectTimeout string   `yaml:"connect_timeout,omitempty"`
	Env            EnvList  `yaml:"env"`
}
