package appinit

import (
	"bytes"
	"os"
	"strings"

	"github.com/clok/kemba"
	"github.com/dsnet/try"
	"github.com/gookit/goutil/dump"
	"github.com/gookit/goutil/fsutil"
	"github.com/gookit/goutil/strutil"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/momo182/webeid-deploy/src/lobby"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// config keys, also the suffixes of the WEBEID_* env vars
const (
	keyHosts          = "hosts"
	keyUser           = "user"
	keyPassword       = "password"
	keyIdentityFile   = "identity_file"
	keyBastion        = "bastion"
	keyPort           = "port"
	keyDir            = "dir"
	keyConnectTimeout = "connect_timeout"
)

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"hosts":           keyHosts,
	"user":            keyUser,
	"identity":        keyIdentityFile,
	"bastion":         keyBastion,
	"port":            keyPort,
	"dir":             keyDir,
	"connect-timeout": keyConnectTimeout,
}

// envSection keeps the order and case of the env: block, viper folds both.
type envSection struct {
	Env entity.EnvList `yaml:"env"`
}

// LoadConfig layers defaults, the config file, WEBEID_* environment
// variables and the changed flags of flags, in that order, into a Config.
// flags may be nil.
func LoadConfig(args *entity.InitialArgs, flags *pflag.FlagSet) (cfg *entity.Config, err error) {
	l := kemba.New("appinit::LoadConfig").Printf
	defer try.Handle(&err)

	v := viper.New()
	v.SetDefault(keyHosts, []string{})
	v.SetDefault(keyUser, currentUser())
	v.SetDefault(keyPassword, "")
	v.SetDefault(keyIdentityFile, "")
	v.SetDefault(keyBastion, "")
	v.SetDefault(keyPort, entity.DefaultSSHPort)
	v.SetDefault(keyDir, "")
	v.SetDefault(keyConnectTimeout, "10s")

	var env envSection
	data := try.E1(readConfigFile(args.ConfigFile))
	if data != nil {
		l("config file found, %d bytes", len(data))
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, entity.ErrConfig{Reason: "parsing config file: " + err.Error()}
		}
		if err := yaml.Unmarshal(data, &env); err != nil {
			return nil, entity.ErrConfig{Reason: "parsing env section: " + err.Error()}
		}
	}

	v.SetEnvPrefix(entity.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				try.E(v.BindPFlag(key, f))
			}
		}
	}

	cfg = &entity.Config{
		User:          v.GetString(keyUser),
		Password:      v.GetString(keyPassword),
		IdentityFile:  lobby.ResolvePath(v.GetString(keyIdentityFile)),
		Bastion:       v.GetString(keyBastion),
		Port:          v.GetInt(keyPort),
		DeployDir:     v.GetString(keyDir),
		Env:           env.Env,
		SSHConfig:     args.SshConfig,
		Preflight:     args.Preflight,
		Lint:          args.Lint,
		Debug:         args.Debug,
		DisablePrefix: args.DisablePrefix,
		DisableColor:  args.DisableColor,
	}

	timeout := v.GetString(keyConnectTimeout)
	cfg.ConnectTimeout, err = parseTimeout(timeout)
	if err != nil {
		return nil, entity.ErrConfig{Reason: "bad connect_timeout: " + timeout}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, entity.ErrConfig{Reason: "port out of range"}
	}

	l("resolving password and env values")
	if entity.IsShell(cfg.Password) {
		cfg.Password = try.E1(entity.ResolveShell(cfg.Password))
	}
	if err := lobby.OverrideEnvFromArgs(args.EnvVars, &cfg.Env); err != nil {
		return nil, err
	}
	try.E(ResolveValues(&cfg.Env))

	rawHosts := hostList(v.Get(keyHosts))
	l("raw hosts: %v", rawHosts)
	for _, raw := range rawHosts {
		host, err := entity.ParseHost(raw, cfg.User, cfg.Port)
		if err != nil {
			return nil, oops.Trace("1D3C8B9E-8E35-4E5A-8E7B-1C0F2D9A6B44").
				Hint("parsing host").
				With("host", raw).
				Wrap(err)
		}
		if host.Password == "" {
			host.Password = cfg.Password
		}
		if host.IdentityFile == "" {
			host.IdentityFile = cfg.IdentityFile
		}
		cfg.Hosts = append(cfg.Hosts, host)
	}

	if args.SshConfig != "" {
		try.E(ApplySSHConfig(cfg, args.SshConfig))
	}
	cfg.Hosts = try.E1(FilterHosts(cfg.Hosts, args.OnlyHosts, args.ExceptHosts))

	l("final config:\n%s", dump.Format(cfg))
	return cfg, nil
}

// readConfigFile returns nil data when no file was asked for and none of the
// default names exist.
func readConfigFile(path string) ([]byte, error) {
	l := kemba.New("appinit::readConfigFile").Printf
	if path != "" {
		path = lobby.ResolvePath(path)
		l("reading %s", path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, entity.ErrConfig{Reason: err.Error()}
		}
		return data, nil
	}

	for _, candidate := range []string{entity.DefaultConfigFile, entity.DefaultConfigFileAlt} {
		if !fsutil.IsFile(candidate) {
			l("no %s, skipping", candidate)
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return nil, entity.ErrConfig{Reason: err.Error()}
		}
		return data, nil
	}
	return nil, nil
}

// hostList accepts a YAML list, a pflag string slice or a comma separated
// string as found in WEBEID_HOSTS.
func hostList(value interface{}) []string {
	var raw []string
	switch hosts := value.(type) {
	case string:
		raw = strutil.Split(hosts, ",")
	case []string:
		for _, h := range hosts {
			raw = append(raw, strutil.Split(h, ",")...)
		}
	case []interface{}:
		for _, h := range hosts {
			if s, ok := h.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var result []string
	for _, h := range raw {
		if !strutil.IsBlank(h) {
			result = append(result, strings.TrimSpace(h))
		}
	}
	return result
}
