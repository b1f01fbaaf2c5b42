package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/config"
	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func configFilePath() string {
	return filepath.Join(where.Config(), constant.Playtrack+".toml")
}

func errUnknownKey(key string) error {
	closest := lo.MinBy(lo.Keys(config.Default), func(a string, b string) bool {
		return levenshtein.Distance(key, a) < levenshtein.Distance(key, b)
	})

	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(key),
		style.Fg(color.Yellow)(closest),
	)
}

func mustField(key string) config.Field {
	field, ok := config.Default[key]
	if !ok {
		handleErr(errUnknownKey(key))
	}
	return field
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}

// writeConfig persists viper's state, creating the file on first use.
func writeConfig() {
	err := viper.WriteConfig()
	if errors.As(err, new(viper.ConfigFileNotFoundError)) {
		err = viper.SafeWriteConfig()
	}
	handleErr(err)
}

func parseValue(field config.Field, raw []string) (any, error) {
	switch field.Value.(type) {
	case string:
		return raw[0], nil
	case int:
		return strconv.Atoi(raw[0])
	case bool:
		return strconv.ParseBool(raw[0])
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported type of %s", field.Key)
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Only show these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configInfoCmd.SetOut(os.Stdout)
}

var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields",
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)

		if keys := lo.Must(cmd.Flags().GetStringSlice("key")); len(keys) > 0 {
			fields = lo.Map(keys, func(key string, _ int) config.Field {
				return mustField(key)
			})
		}

		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		for i, field := range fields {
			cmd.Print(field.Pretty())

			if i < len(fields)-1 {
				cmd.Print("\n\n")
			}
		}
		cmd.Println()
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>...",
	Short:             "Set a configuration value",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := mustField(args[0])

		value, err := parseValue(field, args[1:])
		if err != nil {
			handleErr(fmt.Errorf("invalid value for %s: %w", field.Key, err))
		}
		handleErr(field.Validate(value))

		viper.Set(field.Key, value)
		writeConfig()

		success("set %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(value)))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
}

var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print a configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		field := mustField(args[0])
		fmt.Println(viper.Get(field.Key))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFilePath()

		if lo.Must(cmd.Flags().GetBool("force")) {
			if exists := lo.Must(filesystem.API().Exists(path)); exists {
				handleErr(filesystem.API().Remove(path))
			}
		}

		handleErr(viper.SafeWriteConfig())
		success("wrote config to %s", path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Delete the config file",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFilePath()))
		success("deleted config")
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
}

var configResetCmd = &cobra.Command{
	Use:               "reset [key]",
	Short:             "Reset a key to its default value",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))

		switch {
		case all:
			for key, field := range config.Default {
				viper.Set(key, field.Value)
			}
		case len(args) == 1:
			field := mustField(args[0])
			viper.Set(field.Key, field.Value)
		default:
			handleErr(errors.New("either a key or --all is required"))
		}

		writeConfig()

		if all {
			success("reset all config values")
			return
		}

		field := config.Default[args[0]]
		success("reset %s to %s", style.Fg(color.Purple)(field.Key), style.Fg(color.Yellow)(fmt.Sprint(field.Value)))
	},
}
