package cmd

import (
	"os"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"Journal", where.Journal, "journal", mo.Some("j"), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
	{"Queue", where.Queue, "queue", mo.None[string](), true},
	{"History", where.History, "history", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if short, ok := n.argShort.Get(); ok {
			whereCmd.Flags().BoolP(n.argLong, short, false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show the paths of config, logs and telemetry files",
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(n.argLong)) {
				cmd.Println(n.where())
				return
			}
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(wherePaths, func(t *whereTarget, _ int) bool {
			return t.hidden
		})

		for i, n := range visible {
			cmd.Printf("%s %s\n", header(n.name+"?"), style.Fg(color.Yellow)("--"+n.argLong))
			cmd.Println(n.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
