package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolP("record", "r", false, "Generate the schema of journal and gateway records instead")
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the metadata overrides file",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return filepath.Base(t.PkgPath()) + "." + t.Name()
		}

		var schema *jsonschema.Schema
		if lo.Must(cmd.Flags().GetBool("record")) {
			schema = reflector.Reflect(&record.Record{})
		} else {
			schema = reflector.Reflect(&metadata.Overrides{})
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(schema))
	},
}
