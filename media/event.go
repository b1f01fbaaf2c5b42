// Package media defines the player-facing vocabulary shared by player adapters and the playback tracker:
// a closed set of event kinds, the typed event payloads that accompany them, and the sources and tracks
// a player can be asked about.
package media

import (
	"fmt"
	"time"
)

// EventKind is a closed enumeration of the player events a tracker can subscribe to.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSourceLoaded
	EventSourceUnloaded
	EventPlay
	EventPlaying
	EventPaused
	EventSeek
	EventSeeked
	EventTimeShift
	EventTimeShifted
	EventStallStarted
	EventStallEnded
	EventPlaybackFinished
	EventVideoQualityChanged
	EventAudioChanged
	EventSubtitleEnabled
	EventSubtitleDisabled
	EventMuted
	EventUnmuted
	EventError
	EventDestroy
	EventAdBreakStarted
	EventAdBreakFinished
	EventAdStarted
	EventAdFinished
	EventAdSkipped
	EventAdError
)

var eventNames = map[EventKind]string{
	EventUnknown:             "unknown",
	EventSourceLoaded:        "sourceloaded",
	EventSourceUnloaded:      "sourceunloaded",
	EventPlay:                "play",
	EventPlaying:             "playing",
	EventPaused:              "paused",
	EventSeek:                "seek",
	EventSeeked:              "seeked",
	EventTimeShift:           "timeshift",
	EventTimeShifted:         "timeshifted",
	EventStallStarted:        "stallstarted",
	EventStallEnded:          "stallended",
	EventPlaybackFinished:    "playbackfinished",
	EventVideoQualityChanged: "videoqualitychanged",
	EventAudioChanged:        "audiochanged",
	EventSubtitleEnabled:     "subtitleenabled",
	EventSubtitleDisabled:    "subtitledisabled",
	EventMuted:               "muted",
	EventUnmuted:             "unmuted",
	EventError:               "error",
	EventDestroy:             "destroy",
	EventAdBreakStarted:      "adbreakstarted",
	EventAdBreakFinished:     "adbreakfinished",
	EventAdStarted:           "adstarted",
	EventAdFinished:          "adfinished",
	EventAdSkipped:           "adskipped",
	EventAdError:             "aderror",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Kinds returns every subscribable event kind in declaration order.
func Kinds() []EventKind {
	kinds := make([]EventKind, 0, len(eventNames)-1)
	for k := EventSourceLoaded; k <= EventAdError; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Event is a tagged union: Kind selects which of the optional payloads is populated.
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	// SeekTarget is the requested position in seconds for EventSeek.
	SeekTarget float64

	Error    *PlayerError
	Quality  *VideoQuality
	Audio    *AudioTrack
	Subtitle *SubtitleTrack
	Ad       *AdInfo
}

// NewEvent stamps an event of the given kind with the current time.
func NewEvent(kind EventKind) Event {
	return Event{Kind: kind, Timestamp: time.Now()}
}

// PlayerError describes a failure reported by the player.
type PlayerError struct {
	Code    int
	Name    string
	Message string
}

func (e *PlayerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Code, e.Name)
	}
	return fmt.Sprintf("%d %s: %s", e.Code, e.Name, e.Message)
}
