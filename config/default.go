// Package config registers every setting with its default and loads them through viper.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/anisan-cli/playtrack/color"
	"github.com/anisan-cli/playtrack/constant"
	"github.com/anisan-cli/playtrack/key"
	"github.com/anisan-cli/playtrack/style"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const descriptionWidth = 72

// Field is one registered setting.
type Field struct {
	Key         string
	Value       any
	Description string

	// Options, when set, are the only accepted string values.
	Options []string
}

// Pretty renders the field for "config info".
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env is the environment variable overriding the field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Playtrack + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Type names the Go type of the default value.
func (f *Field) Type() string {
	return reflect.TypeOf(f.Value).String()
}

// Validate rejects values outside Options and negative numbers.
func (f *Field) Validate(value any) error {
	if len(f.Options) > 0 && !lo.Contains(f.Options, fmt.Sprint(value)) {
		return fmt.Errorf("%s must be one of %s", f.Key, strings.Join(f.Options, ", "))
	}

	if n, ok := value.(int); ok && n < 0 {
		return fmt.Errorf("%s must not be negative", f.Key)
	}

	return nil
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string   `json:"key"`
		Value       any      `json:"value"`
		Default     any      `json:"default"`
		Description string   `json:"description"`
		Type        string   `json:"type"`
		Options     []string `json:"options,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.Type(),
		Options:     f.Options,
	})
}

// Default maps keys to their fields.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

var fields = []Field{
	{Key: key.TrackerStallGraceMs, Value: 100, Description: "Grace window in milliseconds before an unresolved seek, time shift or play is reported as buffering"},
	{Key: key.TrackerDebug, Value: false, Description: "Log every analytics call the tracker makes (requires logs.write)"},

	{Key: key.AnalyticsSink, Value: "journal", Description: "Where telemetry is forwarded", Options: []string{"journal", "gateway", "log"}},
	{Key: key.AnalyticsGatewayURL, Value: "", Description: "Base URL of the analytics gateway used by the gateway sink"},
	{Key: key.AnalyticsCustomerKey, Value: "", Description: "Customer key sent to the gateway.\nThe key stored with \"playtrack auth set\" takes precedence"},
	{Key: key.AnalyticsFlushInterval, Value: 20, Description: "Seconds between gateway batch flushes"},
	{Key: key.AnalyticsApplicationName, Value: constant.Playtrack, Description: "Application name reported with every session"},
	{Key: key.AnalyticsViewerID, Value: "", Description: "Viewer id reported with every session"},
	{Key: key.AnalyticsJournalDays, Value: 30, Description: "Days of journal files kept by the journal sink.\nZero keeps everything"},

	{Key: key.MetricsAddress, Value: "", Description: "Listen address for the prometheus /metrics endpoint while watching.\nEmpty disables it"},
	{Key: key.HistorySave, Value: true, Description: "Save a per-asset session summary after watching"},
	{Key: key.MetadataScript, Value: "", Description: "Path to a Lua script whose metadata(source) function returns content metadata overrides"},
	{Key: key.Player, Value: "mpv", Description: "Media player to use", Options: []string{"mpv"}},

	{Key: key.IconsVariant, Value: "plain", Description: "Icons variant", Options: []string{"emoji", "nerd", "plain"}},
	{Key: key.LogsWrite, Value: false, Description: "Write logs"},
	{Key: key.LogsLevel, Value: "info", Description: "Log level, from least to most verbose", Options: []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}},
	{Key: key.LogsJson, Value: false, Description: "Use json format for logs"},
	{Key: key.CliColored, Value: true, Description: "Enable colored CLI output"},
}

func init() {
	for _, field := range fields {
		if _, exists := Default[field.Key]; exists {
			panic("duplicate config key: " + field.Key)
		}

		Default[field.Key] = field
		EnvExposed = append(EnvExposed, field.Key)
	}
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"blue":   style.Fg(color.Blue),
	"purple": style.Fg(color.Purple),
	"wrap":   func(s string) string { return wordwrap.String(s, descriptionWidth) },
	"value":  func(k string) any { return viper.Get(k) },
	"join":   strings.Join,
	"hl":     highlight,
}).Parse(`{{ faint (wrap .Description) }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl .Value }}
{{ blue "Type:" }}    {{ .Type }}{{ if .Options }}
{{ blue "Options:" }} {{ join .Options ", " }}{{ end }}`))

func highlight(v any) string {
	switch value := v.(type) {
	case bool:
		if value {
			return style.Fg(color.Green)(strconv.FormatBool(value))
		}
		return style.Fg(color.Red)(strconv.FormatBool(value))
	case string:
		return style.Fg(color.Yellow)(value)
	default:
		return fmt.Sprint(value)
	}
}
