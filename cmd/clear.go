package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/anisan-cli/playtrack/icon"
	"github.com/anisan-cli/playtrack/util"
	"github.com/anisan-cli/playtrack/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"history file", "history", mo.Some("s"), where.History},
	{"telemetry journal", "journal", mo.Some("j"), where.Journal},
	{"gateway queue", "queue", mo.Some("q"), where.Queue},
	{"logs", "logs", mo.Some("l"), where.Logs},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached and recorded files",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(target clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(target.argLong))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		for _, target := range selected {
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := util.Delete(target.location())
			erase()

			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				handleErr(err)
			}

			success("%s cleared", util.Capitalize(target.name))
		}
	},
}
