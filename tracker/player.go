package tracker

import "github.com/anisan-cli/playtrack/media"

// Player is the host player a Tracker observes. The tracker never drives playback.
type Player interface {
	// Subscribe registers h for kind and returns a function removing it again.
	Subscribe(kind media.EventKind, h media.Handler) (unsubscribe func())

	// CurrentTime is the playhead in seconds.
	CurrentTime() float64

	// Duration in seconds. Zero or infinite when unknown.
	Duration() float64

	IsLive() bool
	IsPlaying() bool
	IsPaused() bool
	IsStalled() bool

	// Source is the source being played, including one that failed to load.
	Source() (media.Source, bool)
	AudioTrack() (media.AudioTrack, bool)
	SubtitleTracks() []media.SubtitleTrack
	VideoQuality() (media.VideoQuality, bool)

	PlayerType() string
	Version() string
}
