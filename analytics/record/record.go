// Package record implements the analytics SDK interfaces by turning every call into a Record
// and handing it to a Sink.
package record

import (
	"time"

	"github.com/anisan-cli/playtrack/analytics"
)

// Scope tells which handle produced a record.
type Scope string

const (
	ScopeApp   Scope = "app"
	ScopeVideo Scope = "video"
	ScopeAd    Scope = "ad"
)

// Kind of call a record stands for.
type Kind string

const (
	KindAppEvent          Kind = "app_event"
	KindPlayerInfo        Kind = "player_info"
	KindPlaybackRequested Kind = "playback_requested"
	KindContentInfo       Kind = "content_info"
	KindMetric            Kind = "metric"
	KindEvent             Kind = "event"
	KindError             Kind = "error"
	KindAdBreakStarted    Kind = "ad_break_started"
	KindAdBreakEnded      Kind = "ad_break_ended"
	KindPlaybackEnded     Kind = "playback_ended"
	KindAdStarted         Kind = "ad_started"
	KindAdInfo            Kind = "ad_info"
	KindAdEnded           Kind = "ad_ended"
	KindAdSkipped         Kind = "ad_skipped"
	KindAdFailed          Kind = "ad_failed"
	KindRelease           Kind = "release"
)

// Record is one analytics call.
type Record struct {
	ID        string                `json:"id"`
	SessionID string                `json:"session_id,omitempty"`
	Time      time.Time             `json:"time"`
	Scope     Scope                 `json:"scope"`
	Kind      Kind                  `json:"kind"`
	Name      string                `json:"name,omitempty"`
	Values    []any                 `json:"values,omitempty"`
	Attrs     map[string]string     `json:"attrs,omitempty"`
	Info      analytics.ContentInfo `json:"info,omitempty"`
}

// Value returns the first metric value, if any.
func (r Record) Value() (any, bool) {
	if len(r.Values) == 0 {
		return nil, false
	}

	return r.Values[0], true
}

// Sink consumes records. Implementations must be safe for concurrent use.
type Sink interface {
	Write(r Record) error
	Close() error
}
