// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Tracker Behaviour - these keys tune the session lifecycle tracker.
const (
	TrackerStallGraceMs = "tracker.stall_grace_ms"
	TrackerDebug        = "tracker.debug"
)

// Analytics Delivery - these keys select and configure where telemetry is forwarded.
const (
	AnalyticsSink            = "analytics.sink"
	AnalyticsGatewayURL      = "analytics.gateway_url"
	AnalyticsCustomerKey     = "analytics.customer_key"
	AnalyticsFlushInterval   = "analytics.flush_interval"
	AnalyticsApplicationName = "analytics.application_name"
	AnalyticsViewerID        = "analytics.viewer_id"
	AnalyticsJournalDays     = "analytics.journal_days"
)

// Metrics Exposition.
const (
	MetricsAddress = "metrics.address"
)

// History Tracking - these keys configure the persistence of per-asset session summaries.
const (
	HistorySave = "history.save"
)

// Metadata Hooks.
const (
	MetadataScript = "metadata.script"
)

// Media Playback.
const (
	Player = "player.default"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored = "cli.colored"
)
