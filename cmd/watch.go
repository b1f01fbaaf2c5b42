package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/icon"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/util"
	"github.com/anisan-cli/playtrack/watch"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("title", "t", "", "Title of the stream, used as asset name unless --asset is set")
	watchCmd.Flags().StringP("asset", "a", "", "Asset name reported to analytics")
	watchCmd.Flags().String("viewer", "", "Viewer id reported to analytics")
	watchCmd.Flags().Bool("live", false, "Report the stream as live")
	watchCmd.Flags().Bool("vod", false, "Report the stream as video on demand")
	watchCmd.MarkFlagsMutuallyExclusive("live", "vod")
	watchCmd.Flags().Int("duration", 0, "Content length in seconds")
	watchCmd.Flags().String("resource", "", "Default resource (CDN) reported to analytics")
	watchCmd.Flags().StringToStringP("header", "H", nil, "HTTP header passed to the player, as name=value")
	watchCmd.Flags().StringToString("tag", nil, "Custom tag reported with the content, as name=value")
	watchCmd.Flags().StringP("overrides", "o", "", "JSON file with content metadata overrides (see \"playtrack schema\")")

	watchCmd.Flags().String("sink", "", "Where telemetry is forwarded ("+strings.Join(watch.AvailableSinks(), ", ")+")")
	lo.Must0(watchCmd.RegisterFlagCompletionFunc("sink", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return watch.AvailableSinks(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.AnalyticsSink, watchCmd.Flags().Lookup("sink")))

	watchCmd.Flags().String("metrics", "", "Listen address of the /metrics endpoint, e.g. :9090")
	lo.Must0(viper.BindPFlag(key.MetricsAddress, watchCmd.Flags().Lookup("metrics")))

	watchCmd.Flags().String("script", "", "Lua metadata script")
	lo.Must0(viper.BindPFlag(key.MetadataScript, watchCmd.Flags().Lookup("script")))

	watchCmd.Flags().Bool("no-history", false, "Do not save a session summary")
	watchCmd.Flags().BoolP("status", "s", false, "Show a live status view")
}

var watchCmd = &cobra.Command{
	Use:     "watch <url>",
	Short:   "Play a stream and track the playback session",
	Args:    cobra.ExactArgs(1),
	Example: "  playtrack watch https://cdn.example.com/live/index.m3u8 --title News --live",
	Run: func(cmd *cobra.Command, args []string) {
		checkDependency(viper.GetString(key.Player))

		if lo.Must(cmd.Flags().GetBool("no-history")) {
			viper.Set(key.HistorySave, false)
		}

		options, err := watchOptions(cmd, args[0])
		handleErr(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if !options.Status {
			fmt.Printf("%s %s\n", icon.Get(icon.Play), style.Bold(options.Title))
		}
		handleErr(watch.Run(ctx, options))
	},
}

func watchOptions(cmd *cobra.Command, url string) (watch.Options, error) {
	flags := cmd.Flags()

	options := watch.Options{
		URL:     url,
		Title:   lo.Must(flags.GetString("title")),
		Headers: lo.Must(flags.GetStringToString("header")),
		Custom:  lo.Must(flags.GetStringToString("tag")),
		Status:  lo.Must(flags.GetBool("status")) && util.IsTerminal(),
	}

	if options.Title == "" {
		options.Title = filepath.Base(url)
	}

	if path := lo.Must(flags.GetString("overrides")); path != "" {
		overrides, err := readOverrides(path)
		if err != nil {
			return watch.Options{}, err
		}
		options.Overrides = overrides
	}

	o := &options.Overrides

	if asset := lo.Must(flags.GetString("asset")); asset != "" {
		o.AssetName = lo.ToPtr(asset)
	}

	if viewer := lo.Must(flags.GetString("viewer")); viewer != "" {
		o.ViewerID = lo.ToPtr(viewer)
	}

	switch {
	case lo.Must(flags.GetBool("live")):
		o.StreamType = lo.ToPtr(metadata.StreamLive)
	case lo.Must(flags.GetBool("vod")):
		o.StreamType = lo.ToPtr(metadata.StreamVOD)
	}

	if duration := lo.Must(flags.GetInt("duration")); duration > 0 {
		o.Duration = lo.ToPtr(duration)
	}

	if resource := lo.Must(flags.GetString("resource")); resource != "" {
		o.DefaultResource = lo.ToPtr(resource)
	}

	return options, nil
}

func readOverrides(path string) (metadata.Overrides, error) {
	var overrides metadata.Overrides

	file, err := filesystem.API().Open(path)
	if err != nil {
		return overrides, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&overrides); err != nil {
		return overrides, fmt.Errorf("%s: %w", path, err)
	}

	return overrides, nil
}
