// Package analytics describes the vendor-style analytics SDK the tracker reports through.
//
// The SDK is consumed through three capability sets: a Client that builds sessions and
// accepts application-level events, a VideoAnalytics handle per content session, and an
// AdAnalytics companion bound to a content session. Implementations are free to batch or
// drop; every call may fail independently and callers are expected to carry on.
package analytics

// ContentInfo is a flat metadata map keyed by the Key* constants plus free-form custom tags.
type ContentInfo map[string]any

// Clone returns a shallow copy that can be mutated independently.
func (c ContentInfo) Clone() ContentInfo {
	out := make(ContentInfo, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// PlayerInfo identifies the playback framework to the backend.
type PlayerInfo struct {
	FrameworkName    string
	FrameworkVersion string
}

// Client is the entry point of the SDK.
type Client interface {
	// NewVideoAnalytics opens a handle for one content session.
	NewVideoAnalytics() (VideoAnalytics, error)

	// NewAdAnalytics opens the ad companion of a content session.
	NewAdAnalytics(video VideoAnalytics) (AdAnalytics, error)

	// ReportAppEvent sends an event that is not bound to any playback session.
	ReportAppEvent(name string, attrs map[string]string) error

	// Release flushes and closes the client.
	Release() error
}

// VideoAnalytics reports on one content session.
type VideoAnalytics interface {
	SetPlayerInfo(info PlayerInfo) error

	// SetCallback registers a function the SDK invokes periodically to pull playhead data.
	SetCallback(poll func()) error

	ReportPlaybackRequested(info ContentInfo) error
	SetContentInfo(info ContentInfo) error
	ReportPlaybackMetric(name MetricName, values ...any) error
	ReportPlaybackEvent(name string, attrs map[string]string) error
	ReportPlaybackError(message string, severity Severity) error
	ReportAdBreakStarted(adType AdType, adPlayer AdPlayer, attrs map[string]string) error
	ReportAdBreakEnded() error
	ReportPlaybackEnded() error
	Release() error
}

// AdAnalytics reports on the ads played inside a content session.
type AdAnalytics interface {
	ReportAdStarted(info ContentInfo) error
	SetAdInfo(info ContentInfo) error
	ReportAdMetric(name MetricName, values ...any) error
	ReportAdEnded() error
	ReportAdSkipped() error
	ReportAdFailed(message string, info ContentInfo) error
	Release() error
}
