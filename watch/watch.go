// Package watch plays a stream in an external player and tracks it end to end.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/hooks"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/media"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/anisan-cli/playtrack/metrics"
	"github.com/anisan-cli/playtrack/player"
	"github.com/anisan-cli/playtrack/status"
	"github.com/anisan-cli/playtrack/tracker"
	"github.com/anisan-cli/playtrack/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// PollInterval is how often the playhead is reported while a session is open.
const PollInterval = time.Second

// drainTimeout bounds how long queued player events are processed after the player exits.
const drainTimeout = 2 * time.Second

// Options describe what to play.
type Options struct {
	URL     string
	Title   string
	Headers map[string]string

	// Custom tags attached to the source.
	Custom map[string]string

	// Overrides win over the metadata script.
	Overrides metadata.Overrides

	// Status renders a live view of the session.
	Status bool
}

// Config holds the settings read from viper.
type Config struct {
	Player          string
	StallGrace      time.Duration
	Debug           bool
	MetricsAddress  string
	Script          string
	ApplicationName string
	ViewerID        string
}

// ConfigFromViper reads the current configuration.
func ConfigFromViper() Config {
	return Config{
		Player:          viper.GetString(key.Player),
		StallGrace:      time.Duration(viper.GetInt(key.TrackerStallGraceMs)) * time.Millisecond,
		Debug:           viper.GetBool(key.TrackerDebug),
		MetricsAddress:  viper.GetString(key.MetricsAddress),
		Script:          viper.GetString(key.MetadataScript),
		ApplicationName: viper.GetString(key.AnalyticsApplicationName),
		ViewerID:        viper.GetString(key.AnalyticsViewerID),
	}
}

// Run plays options.URL with the configured player until it exits or ctx is done.
func Run(ctx context.Context, options Options) error {
	config := ConfigFromViper()

	backend, ok := player.New(config.Player)
	if !ok {
		return fmt.Errorf("unknown player %q", config.Player)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink, err := NewSink(ctx)
	if err != nil {
		return err
	}

	if !options.Status {
		return run(ctx, backend, sink, config, options)
	}

	view := status.New(options.Title)
	go func() {
		if err := view.Run(); err != nil {
			log.Component("watch").Warnf("status view: %v", err)
		}
		cancel()
	}()

	err = run(ctx, backend, record.Tee(sink, view), config, options)
	<-view.Exited()
	return err
}

func run(ctx context.Context, backend player.Backend, sink record.Sink, config Config, options Options) error {
	logger := log.Component("watch")

	var client analytics.Client = record.New(sink, record.Options{PollInterval: PollInterval})

	if config.MetricsAddress != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		client = metrics.New(registry).Instrument(client)

		go func() {
			if err := metrics.Serve(ctx, config.MetricsAddress, registry); err != nil {
				logger.Warnf("metrics server: %v", err)
			}
		}()
	}

	t := tracker.New(client, tracker.Options{
		StallGrace: config.StallGrace,
		Debug:      config.Debug,
	})
	defer t.Release()

	if err := backend.Start(options.Title, options.Headers); err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warnf("close player: %v", err)
		}
	}()

	playerVersion, err := backend.Version()
	if err != nil {
		logger.Warnf("player version: %v", err)
	} else if err := version.CheckMPV(playerVersion); err != nil {
		return err
	}

	source := media.Source{
		Title:      options.Title,
		URL:        options.URL,
		ViewerID:   config.ViewerID,
		CustomData: options.Custom,
	}

	if err := applyOverrides(t, config, source, options.Overrides); err != nil {
		return err
	}

	observer := player.NewObserver(source, playerVersion)
	if err := t.AttachPlayer(observer); err != nil {
		return err
	}

	listener := player.NewEventListener(backend.Socket(), observer.Handle)
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Stop()

	if err := backend.Load(options.URL); err != nil {
		return err
	}

	select {
	case <-backend.Wait():
		select {
		case <-listener.Done():
		case <-time.After(drainTimeout):
		}
	case <-ctx.Done():
	}

	return nil
}

// applyOverrides layers the application settings, the metadata script and the caller's overrides.
func applyOverrides(t *tracker.Tracker, config Config, source media.Source, overrides metadata.Overrides) error {
	if config.ApplicationName != "" {
		t.UpdateContentMetadata(metadata.Overrides{ApplicationName: lo.ToPtr(config.ApplicationName)})
	}

	if config.Script != "" {
		hook, err := hooks.Load(config.Script)
		if err != nil {
			return fmt.Errorf("metadata script: %w", err)
		}
		defer hook.Close()

		scripted, err := hook.Overrides(source)
		if err != nil {
			return fmt.Errorf("metadata script: %w", err)
		}

		t.UpdateContentMetadata(scripted)
	}

	t.UpdateContentMetadata(overrides)
	return nil
}
