package main

import (
	"time"

	"github.com/anisan-cli/playtrack/analytics/journal"
	"github.com/anisan-cli/playtrack/cmd"
	"github.com/anisan-cli/playtrack/config"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go func() {
		retention := time.Duration(viper.GetInt(key.AnalyticsJournalDays)) * 24 * time.Hour
		if removed, err := journal.Prune(where.Journal(), retention, time.Now()); err != nil {
			log.Warnf("prune journal: %v", err)
		} else if removed > 0 {
			log.Infof("pruned %d journal files", removed)
		}
	}()

	cmd.Execute()
}
