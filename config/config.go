package config

import (
	"errors"
	"strings"

	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps config keys to environment variable suffixes.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup registers defaults and env bindings, then reads playtrack.toml from where.Config() if present.
func Setup() error {
	viper.SetConfigName(constant.Playtrack)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Playtrack)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	err := viper.ReadInConfig()
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		return nil
	}

	return err
}
