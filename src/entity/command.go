package entity

// WorkDir is the remote directory a command is scoped to. Scoped with an
// empty Path is legal: it is handed to the remote `cd` untouched.
type WorkDir struct {
	Path   string
	Scoped bool
}

// In scopes commands to path.
func In(path string) WorkDir {
	return WorkDir{Path: path, Scoped: true}
}

// Command is a single shell line sent to a RemoteExecutor.
type Command struct {
	Run string
	Dir WorkDir
	Env EnvList
}

func (c Command) String() string {
	if c.Dir.Scoped {
		return "[" + c.Dir.Path + "] " + c.Run
	}
	return c.Run
}

// Result is what came back from one command.
type Result struct {
	Command    Command
	Host       string
	Stdout     string
	Stderr     string
	ExitStatus int
}

func (r *Result) Success() bool {
	return r != nil && r.ExitStatus == 0
}
