package usecase

import "github.com/momo182/webeid-deploy/src/entity"

// UnameTask prints the remote kernel and host info.
func UnameTask() entity.Task {
	return entity.Task{
		Name:     "uname",
		Desc:     "Show remote system information",
		Commands: []string{entity.CmdUname},
	}
}

// DeployTask pulls, builds the container image with jib and restarts the
// compose stack, all inside the deploy directory.
func DeployTask() entity.Task {
	return entity.Task{
		Name: "deploy",
		Desc: "Pull, build the image and restart the compose stack in " + entity.DeployDirEnv,
		Commands: []string{
			entity.CmdGitPull,
			entity.CmdBuildImage,
			entity.CmdComposeDown,
			entity.CmdComposeUp,
		},
		WorkDir: func(cfg *entity.Config) entity.WorkDir {
			return entity.In(cfg.DeployDir)
		},
	}
}
