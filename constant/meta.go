// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Playtrack is the canonical application identifier used for filesystem paths and CLI branding.
	Playtrack = "playtrack"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// IntegrationVersion is reported to the analytics backend as the tracker integration revision.
	IntegrationVersion = "playtrack-go-" + Version

	// UserAgent is the HTTP User-Agent string used for requests to the analytics gateway.
	UserAgent = Playtrack + "/" + Version
)

// Build metadata, overridden at link time via -ldflags "-X".
var (
	BuiltAt  = ""
	BuiltBy  = ""
	Revision = ""
)
