package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/anisan-cli/playtrack/auth"
	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/style"
	"github.com/anisan-cli/playtrack/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the analytics gateway customer key",
}

var errNoTTY = errors.New("no terminal to prompt on, pass --key")

func init() {
	authCmd.AddCommand(authSetCmd)
	authSetCmd.Flags().StringP("key", "k", "", "Customer key. Prompted for when omitted")
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the customer key in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		customerKey := lo.Must(cmd.Flags().GetString("key"))

		if customerKey == "" {
			if !util.IsInteractive() {
				handleErr(errNoTTY)
			}

			prompt := &survey.Password{
				Message: "Customer key:",
				Help:    "The key is sent as " + style.Bold("X-Customer-Key") + " to the analytics gateway",
			}
			handleErr(survey.AskOne(prompt, &customerKey, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetCustomerKey(strings.TrimSpace(customerKey)))
		success("customer key saved to the system keyring")
	},
}

func init() {
	authCmd.AddCommand(authShowCmd)
	authShowCmd.SetOut(os.Stdout)
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show where the customer key comes from",
	Run: func(cmd *cobra.Command, args []string) {
		configured := viper.GetString(key.AnalyticsCustomerKey)

		customerKey, err := auth.ResolveCustomerKey(configured)
		if errors.Is(err, auth.ErrNoKey) {
			cmd.Println(style.Fg(color.Red)("unset"))
			return
		}
		handleErr(err)

		origin := "keyring"
		if configured != "" {
			origin = key.AnalyticsCustomerKey
		}

		cmd.Printf("%s %s\n", mask(customerKey), style.Faint("("+origin+")"))
	},
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Remove the customer key from the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteCustomerKey())
		success("customer key removed")
	},
}
