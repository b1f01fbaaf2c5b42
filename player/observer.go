package player

import (
	"fmt"
	"math"
	"sync"

	"github.com/anisan-cli/playtrack/media"
)

// Observer turns mpv events into media events and answers the state queries of a tracker.
// Feed it through an EventListener callback.
type Observer struct {
	media.Dispatcher

	mu        sync.RWMutex
	version   string
	source    media.Source
	loaded    bool
	started   bool
	paused    bool
	seeking   bool
	seekArmed bool
	buffering bool
	ended     bool
	position  float64
	duration  float64
	audio     *media.AudioTrack
	subtitle  *media.SubtitleTrack
	quality   media.VideoQuality
}

// NewObserver observes playback of source by the given player version.
func NewObserver(source media.Source, version string) *Observer {
	return &Observer{source: source, version: version}
}

// Handle is an EventCallback.
func (o *Observer) Handle(name string, data interface{}) {
	for _, ev := range o.apply(name, data) {
		o.Emit(ev)
	}
}

// apply updates the cached state and returns the events to emit once the lock is released.
func (o *Observer) apply(name string, data interface{}) []media.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	var events []media.Event
	emit := func(kind media.EventKind) *media.Event {
		events = append(events, media.NewEvent(kind))
		return &events[len(events)-1]
	}

	switch name {
	case "file-loaded":
		o.loaded = true
		o.ended = false
		o.started = false
		emit(media.EventSourceLoaded)

	case "playback-restart":
		if o.loaded && !o.started {
			o.started = true
			emit(media.EventPlay)
			if !o.paused {
				emit(media.EventPlaying)
			}
		}

	case "pause":
		paused, _ := data.(bool)
		if paused == o.paused {
			break
		}
		o.paused = paused
		if !o.started {
			break
		}
		if paused {
			emit(media.EventPaused)
		} else {
			emit(media.EventPlay)
			if !o.buffering && !o.seeking {
				emit(media.EventPlaying)
			}
		}

	case "seeking":
		seeking, _ := data.(bool)
		if seeking == o.seeking || !o.started {
			o.seeking = seeking
			break
		}
		o.seeking = seeking
		if seeking {
			// mpv has no seek target property; the next time-pos carries it.
			o.seekArmed = true
			break
		}
		if o.seekArmed {
			o.seekArmed = false
			emit(media.EventSeek).SeekTarget = o.position
		}
		emit(media.EventSeeked)

	case "paused-for-cache":
		buffering, _ := data.(bool)
		if buffering == o.buffering {
			break
		}
		o.buffering = buffering
		if !o.started {
			break
		}
		if buffering {
			emit(media.EventStallStarted)
		} else {
			emit(media.EventStallEnded)
		}

	case "eof-reached":
		if eof, _ := data.(bool); eof && !o.ended {
			o.ended = true
			emit(media.EventPlaybackFinished)
		}

	case "mute":
		if muted, _ := data.(bool); muted {
			emit(media.EventMuted)
		} else {
			emit(media.EventUnmuted)
		}

	case "time-pos":
		if pos, ok := data.(float64); ok {
			o.position = pos
			if o.seekArmed {
				o.seekArmed = false
				emit(media.EventSeek).SeekTarget = pos
			}
		}

	case "duration":
		if d, ok := data.(float64); ok {
			o.duration = d
		}

	case "current-tracks/audio":
		track, ok := data.(map[string]interface{})
		if !ok {
			o.audio = nil
			break
		}
		o.audio = &media.AudioTrack{
			ID:       fmt.Sprint(track["id"]),
			Language: stringField(track, "lang"),
			Label:    stringField(track, "title"),
		}
		if o.started {
			emit(media.EventAudioChanged).Audio = o.audio
		}

	case "current-tracks/sub":
		track, ok := data.(map[string]interface{})
		if !ok {
			previous := o.subtitle
			o.subtitle = nil
			if previous != nil && o.started {
				emit(media.EventSubtitleDisabled).Subtitle = previous
			}
			break
		}
		o.subtitle = subtitleTrack(track)
		if o.started {
			emit(media.EventSubtitleEnabled).Subtitle = o.subtitle
		}

	case "video-params":
		params, ok := data.(map[string]interface{})
		if !ok {
			break
		}
		o.quality.Width = intField(params, "w")
		o.quality.Height = intField(params, "h")
		emit(media.EventVideoQualityChanged).Quality = o.qualityCopy()

	case "video-bitrate":
		if bitrate, ok := data.(float64); ok && int(bitrate) != o.quality.Bitrate {
			o.quality.Bitrate = int(bitrate)
			emit(media.EventVideoQualityChanged).Quality = o.qualityCopy()
		}

	case "estimated-vf-fps":
		if fps, ok := data.(float64); ok {
			o.quality.FrameRate = fps
		}

	case "end-file":
		payload, _ := data.(map[string]interface{})
		switch stringField(payload, "reason") {
		case "eof":
			if !o.ended {
				o.ended = true
				emit(media.EventPlaybackFinished)
			}
		case "error":
			emit(media.EventError).Error = &media.PlayerError{
				Code:    -1,
				Name:    "LOADING_FAILED",
				Message: stringField(payload, "file_error"),
			}
		default:
			emit(media.EventSourceUnloaded)
		}
		o.loaded = false
		o.started = false
		o.seeking = false
		o.seekArmed = false

	case "shutdown":
		emit(media.EventDestroy)
	}

	return events
}

func (o *Observer) qualityCopy() *media.VideoQuality {
	q := o.quality
	return &q
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]interface{}, key string) int {
	f, _ := m[key].(float64)
	return int(f)
}

func subtitleTrack(track map[string]interface{}) *media.SubtitleTrack {
	kind := media.KindSubtitles
	if hi, _ := track["hearing-impaired"].(bool); hi {
		kind = media.KindCaptions
	}

	return &media.SubtitleTrack{
		ID:       fmt.Sprint(track["id"]),
		Language: stringField(track, "lang"),
		Label:    stringField(track, "title"),
		Kind:     kind,
		Enabled:  true,
	}
}

func (o *Observer) CurrentTime() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.position
}

func (o *Observer) Duration() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.duration
}

// IsLive treats a loaded source without a finite duration as live.
func (o *Observer) IsLive() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.loaded && (o.duration <= 0 || math.IsInf(o.duration, 0))
}

func (o *Observer) IsPlaying() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.started && !o.paused && !o.seeking && !o.buffering && !o.ended
}

func (o *Observer) IsPaused() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.started && o.paused
}

func (o *Observer) IsStalled() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.started && (o.buffering || o.seeking)
}

// Source is the source the observer was created for, whether or not mpv managed to load it.
func (o *Observer) Source() (media.Source, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.source, o.loaded || o.source.Title != "" || o.source.URL != ""
}

// Loaded reports whether mpv has the source open.
func (o *Observer) Loaded() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.loaded
}

func (o *Observer) AudioTrack() (media.AudioTrack, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.audio == nil {
		return media.AudioTrack{}, false
	}
	return *o.audio, true
}

func (o *Observer) SubtitleTracks() []media.SubtitleTrack {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.subtitle == nil {
		return nil
	}
	return []media.SubtitleTrack{*o.subtitle}
}

func (o *Observer) VideoQuality() (media.VideoQuality, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.quality, o.quality.Width > 0 || o.quality.Bitrate > 0
}

func (o *Observer) PlayerType() string {
	return "mpv"
}

func (o *Observer) Version() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}
