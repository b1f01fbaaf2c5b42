package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/anisan-cli/playtrack/analytics/gateway"
	"github.com/anisan-cli/playtrack/analytics/journal"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/auth"
	"github.com/anisan-cli/playtrack/config"
	"github.com/anisan-cli/playtrack/history"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/network"
	"github.com/anisan-cli/playtrack/where"
	"github.com/spf13/viper"
)

// Sink names accepted by analytics.sink.
const (
	SinkJournal = "journal"
	SinkGateway = "gateway"
	SinkLog     = "log"
)

// AvailableSinks lists the values of analytics.sink.
func AvailableSinks() []string {
	return config.Default[key.AnalyticsSink].Options
}

// NewSink builds the configured sink, plus the history collector when history.save is set
// and a log sink when tracker.debug is set.
func NewSink(ctx context.Context) (record.Sink, error) {
	name := viper.GetString(key.AnalyticsSink)

	primary, err := primarySink(ctx, name)
	if err != nil {
		return nil, err
	}

	var collector, debug record.Sink
	if viper.GetBool(key.HistorySave) {
		collector = history.NewCollector()
	}

	if viper.GetBool(key.TrackerDebug) && name != SinkLog {
		debug = record.LogSink{Entry: log.Component("analytics")}
	}

	return record.Tee(primary, collector, debug), nil
}

func primarySink(ctx context.Context, name string) (record.Sink, error) {
	switch name {
	case SinkJournal:
		return journal.New(where.Journal()), nil
	case SinkLog:
		return record.LogSink{Entry: log.Component("analytics")}, nil
	case SinkGateway:
		return gatewaySink(ctx)
	default:
		return nil, fmt.Errorf("unknown analytics sink %q", name)
	}
}

func gatewaySink(ctx context.Context) (record.Sink, error) {
	url := viper.GetString(key.AnalyticsGatewayURL)

	customerKey, err := auth.ResolveCustomerKey(viper.GetString(key.AnalyticsCustomerKey))
	if err != nil {
		return nil, err
	}

	queue := gateway.NewQueue(where.Queue())
	go func() {
		delivered, err := queue.Replay(ctx, network.Client, url, customerKey)
		if err != nil {
			log.Warnf("replay failed batches: %v", err)
		}
		if delivered > 0 {
			log.Infof("replayed %d failed batches", delivered)
		}
	}()

	return gateway.New(gateway.Options{
		URL:           url,
		CustomerKey:   customerKey,
		FlushInterval: time.Duration(viper.GetInt(key.AnalyticsFlushInterval)) * time.Second,
		Queue:         queue,
	})
}
