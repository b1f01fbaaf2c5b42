package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/history"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/util"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringP("filter", "f", "", "Only show assets fuzzy matching the filter")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show per-asset summaries of watched sessions",
	Run: func(cmd *cobra.Command, args []string) {
		saved, err := history.Get()
		handleErr(err)

		summaries := lo.Values(saved)

		if filter := lo.Must(cmd.Flags().GetString("filter")); filter != "" {
			summaries = lo.Filter(summaries, func(s *history.Summary, _ int) bool {
				return fuzzy.MatchFold(filter, s.AssetName)
			})
		}

		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].LastWatched.After(summaries[j].LastWatched)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(summaries))
			return
		}

		if len(summaries) == 0 {
			cmd.Println(style.Faint("no sessions yet"))
			return
		}

		for _, s := range summaries {
			cmd.Printf(
				"%s %s\n  %s, %s, watched %s %s\n",
				style.Fg(color.Purple)(s.AssetName),
				style.Faint(s.StreamType),
				util.Quantify(s.Sessions, "session", "sessions"),
				util.Quantify(s.Stalls, "stall", "stalls"),
				style.Fg(color.Yellow)(fmt.Sprintf("%.0f%%", s.WatchedPercentage)),
				style.Fg(color.Gray)(s.LastWatched.Format(time.DateTime)),
			)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <asset>",
	Short: "Remove the summary of an asset",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		saved, err := history.Get()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return fuzzy.FindFold(toComplete, lo.Keys(saved)), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(history.Remove(args[0]))
		success("removed %s", style.Fg(color.Purple)(args[0]))
	},
}
