package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/anisan-cli/playtrack/analytics/journal"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringP("date", "d", "", "Day to show, as YYYY-MM-DD (default today)")
	journalCmd.Flags().StringP("session", "s", "", "Only show records of the session")
	journalCmd.Flags().BoolP("json", "j", false, "Print raw JSON lines")
	journalCmd.SetOut(os.Stdout)
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show the telemetry recorded by the journal sink",
	Run: func(cmd *cobra.Command, args []string) {
		day := time.Now()
		if date := lo.Must(cmd.Flags().GetString("date")); date != "" {
			parsed, err := time.ParseInLocation(time.DateOnly, date, time.Local)
			handleErr(err)
			day = parsed
		}

		records, err := journal.Read(journal.Path(where.Journal(), day))
		if errors.Is(err, fs.ErrNotExist) {
			cmd.Println(style.Faint("nothing recorded on " + day.Format(time.DateOnly)))
			return
		}
		handleErr(err)

		if session := lo.Must(cmd.Flags().GetString("session")); session != "" {
			records = lo.Filter(records, func(r record.Record, _ int) bool {
				return strings.HasPrefix(r.SessionID, session)
			})
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range records {
				handleErr(encoder.Encode(r))
			}
			return
		}

		for _, r := range records {
			cmd.Println(formatRecord(r))
		}
	},
}

func formatRecord(r record.Record) string {
	var b strings.Builder

	b.WriteString(style.Fg(color.Gray)(r.Time.Format(time.TimeOnly)))
	b.WriteString(" ")

	if len(r.SessionID) >= 8 {
		b.WriteString(style.Faint(r.SessionID[:8]))
		b.WriteString(" ")
	}

	b.WriteString(style.Fg(color.Purple)(string(r.Scope) + "/" + string(r.Kind)))

	if r.Name != "" {
		b.WriteString(" ")
		b.WriteString(style.Fg(color.Yellow)(r.Name))
	}

	if len(r.Values) > 0 {
		b.WriteString(" ")
		b.WriteString(fmt.Sprint(r.Values...))
	}

	if len(r.Attrs) > 0 {
		b.WriteString(" ")
		b.WriteString(style.Faint(fmt.Sprint(r.Attrs)))
	}

	if len(r.Info) > 0 {
		b.WriteString(" ")
		b.WriteString(style.Faint(fmt.Sprint(map[string]any(r.Info))))
	}

	return b.String()
}
