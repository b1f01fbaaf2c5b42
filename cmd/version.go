package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
	versionCmd.Flags().BoolP("json", "j", false, "Print build information as JSON")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := buildInfo(installedMPV())

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(info))
			return
		}

		cmd.Print(renderBuildInfo(info))
	},
}

func buildInfo(mpv string) *orderedmap.OrderedMap[string, string] {
	info := orderedmap.New[string, string]()
	info.Set("Version", constant.Version)
	info.Set("Git Commit", constant.Revision)
	info.Set("Build Date", strings.TrimSpace(constant.BuiltAt))
	info.Set("Built By", constant.BuiltBy)
	info.Set("Platform", runtime.GOOS+"/"+runtime.GOARCH)
	info.Set("Requires", "mpv >= "+version.MinMPV)

	if mpv != "" {
		info.Set("Player", mpv)
	}

	return info
}

func renderBuildInfo(info *orderedmap.OrderedMap[string, string]) string {
	label := lipgloss.NewStyle().Width(14).Faint(true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", style.Fg(color.Purple)("▇▇▇"), style.Fg(color.Purple)(constant.Playtrack))
	for pair := info.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "  %s %s\n", label.Render(pair.Key), style.Bold(pair.Value))
	}

	return b.String()
}

// installedMPV returns the parsed version of the mpv on PATH, or an empty string.
func installedMPV() string {
	out, err := exec.Command("mpv", "--version").Output()
	if err != nil {
		return ""
	}

	first, _, _ := strings.Cut(string(out), "\n")
	parsed, err := version.ParseMPV(first)
	if err != nil {
		return ""
	}

	if version.CheckMPV(parsed) != nil {
		return parsed + " " + style.Fg(color.Red)("(unsupported)")
	}

	return parsed
}
