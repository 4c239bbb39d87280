package usecase

import (
	"github.com/momo182/webeid-deploy/src/entity"
	shellcheckService "github.com/momo182/webeid-deploy/src/gateway/shellcheck"
)

func lint(checker entity.ShellCheckFacade, tasks []entity.Task) error {
	if err := shellcheckService.RunShellcheck(checker, tasks); err != nil {
		return entity.ErrConfig{Reason: err.Error()}
	}
	return nil
}
