package lobby

import (
	"strings"

	"github.com/clok/kemba"
	"github.com/momo182/webeid-deploy/src/entity"
)

// OverrideEnvFromArgs applies `-e KEY=VALUE` flags on top of env. A bare
// KEY sets an empty value. A bad key fails with entity.ErrConfig and leaves
// env untouched.
func OverrideEnvFromArgs(envFromArgs entity.FlagStringSlice, env *entity.EnvList) error {
	l := kemba.New("lobby::OverrideEnvFromArgs").Printf
	overrides := make([]entity.EnvVar, 0, len(envFromArgs))
	for _, pair := range envFromArgs {
		if len(pair) == 0 {
			continue
		}
		override := entity.EnvVar{Key: pair}
		if i := strings.Index(pair, "="); i >= 0 {
			override = entity.EnvVar{Key: pair[:i], Value: pair[i+1:]}
		} else {
			l("bare key: %s", pair)
		}
		if err := entity.CheckEnvKey(override.Key); err != nil {
			return err
		}
		overrides = append(overrides, override)
	}

	for _, override := range overrides {
		env.Set(override.Key, override.Value)
	}
	return nil
}
