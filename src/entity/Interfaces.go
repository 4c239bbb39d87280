package entity

import "context"

// RemoteExecutor runs commands on one connected host.
//
// Run blocks until the command exits. A non-zero exit is reported through
// Result.ExitStatus, the error is reserved for transport failures.
type RemoteExecutor interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
	GetHost() string
	Close() error
}

// DirChecker is implemented by executors able to check a remote directory
// without running a command.
type DirChecker interface {
	StatDir(path string) error
}

// ConnectorFacade opens executors for hosts.
type ConnectorFacade interface {
	Connect(host Host) (RemoteExecutor, error)
	Close() error
}
