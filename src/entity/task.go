package entity

// Task is a named, ordered list of shell commands.
type Task struct {
	Name     string
	Desc     string
	Commands []string

	// WorkDir picks the remote directory from the invocation config.
	// nil leaves the commands unscoped.
	WorkDir func(cfg *Config) WorkDir
}

// Plan expands the task into the commands of a single invocation.
// Nothing is cached, every call reads cfg again.
func (t Task) Plan(cfg *Config) []Command {
	dir := WorkDir{}
	if t.WorkDir != nil && cfg != nil {
		dir = t.WorkDir(cfg)
	}

	var env EnvList
	if cfg != nil {
		env = cfg.Env.Clone()
	}

	cmds := make([]Command, 0, len(t.Commands))
	for _, run := range t.Commands {
		cmds = append(cmds, Command{
			Run: run,
			Dir: dir,
			Env: env,
		})
	}
	return cmds
}
