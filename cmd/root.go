// Package cmd implements the playtrack command-line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/icon"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/util"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icons variant (emoji, nerd, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().Bool("debug", false, "Log every analytics call (requires logs.write)")
	lo.Must0(viper.BindPFlag(key.TrackerDebug, rootCmd.PersistentFlags().Lookup("debug")))
}

var rootCmd = &cobra.Command{
	Use:   constant.Playtrack,
	Short: "Playback analytics for media players",
	Long: style.New().Bold(true).Foreground(color.HiPurple).Render(constant.Playtrack) + "\n" +
		style.Italic("  Track playback sessions, stalls and ad breaks of a media player and forward them as analytics"),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("version")) {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) && util.IsTerminal() {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}
