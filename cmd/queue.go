package cmd

import (
	"context"
	"os"

	"github.com/anisan-cli/playtrack/analytics/gateway"
	"github.com/anisan-cli/playtrack/auth"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/network"
	"github.com/anisan-cli/playtrack/util"
	"github.com/anisan-cli/playtrack/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.SetOut(os.Stdout)
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show gateway batches waiting to be delivered",
	Run: func(cmd *cobra.Command, args []string) {
		pending, err := gateway.NewQueue(where.Queue()).Pending()
		handleErr(err)

		cmd.Println(util.Quantify(len(pending), "batch", "batches") + " pending")
	},
}

func init() {
	queueCmd.AddCommand(queueReplayCmd)
}

var queueReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Deliver the queued batches to the gateway now",
	Run: func(cmd *cobra.Command, args []string) {
		customerKey, err := auth.ResolveCustomerKey(viper.GetString(key.AnalyticsCustomerKey))
		handleErr(err)

		delivered, err := gateway.NewQueue(where.Queue()).Replay(
			context.Background(),
			network.Client,
			viper.GetString(key.AnalyticsGatewayURL),
			customerKey,
		)
		handleErr(err)

		success("delivered %s", util.Quantify(delivered, "batch", "batches"))
	},
}
