package appinit

import (
	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
	"github.com/samber/oops"
)

// ResolveValues replaces every `$(command)` value of e with the output of
// the command run locally. Other values are left for the remote shell.
func ResolveValues(e *entity.EnvList) error {
	l := kemba.New("appinit::ResolveValues").Printf
	if e.Len() == 0 {
		return nil
	}

	for _, key := range e.Keys() {
		value := e.Get(key)
		if !entity.IsShell(value) {
			continue
		}

		l("resolving env: %v, via: %v", key, value)
		resolved, err := entity.ResolveShell(value)
		if err != nil {
			return oops.Trace("BC75A6AE-F1D8-4F15-A63D-D3A757E54481").
				Hint("resolving value via shell").
				With("key", key).
				With("value", value).
				Wrap(err)
		}
		e.Set(key, resolved)
	}
	return nil
}
