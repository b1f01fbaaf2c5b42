package tracker

import (
	"math"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// handle is subscribed to every player event kind.
func (t *Tracker) handle(ev media.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}

	t.debugf("event %s", ev.Kind)

	switch ev.Kind {
	case media.EventSourceLoaded:
		t.onSourceLoaded()
	case media.EventSourceUnloaded:
		t.onSourceUnloaded()
	case media.EventPlay:
		t.onPlay(ev)
	case media.EventPlaying:
		if t.video != nil && !t.adBreak.active {
			t.builder.FirstFrameRendered()
		}
		t.trackPlaybackStateChanged(ev)
	case media.EventPaused, media.EventSeeked, media.EventTimeShifted,
		media.EventStallStarted, media.EventStallEnded:
		t.trackPlaybackStateChanged(ev)
	case media.EventSeek, media.EventTimeShift:
		t.onSeek(ev)
	case media.EventPlaybackFinished:
		t.trackPlaybackStateChanged(ev)
		t.endSession()
	case media.EventVideoQualityChanged:
		t.onVideoQualityChanged(ev)
	case media.EventAudioChanged:
		if t.video != nil && ev.Audio != nil {
			t.metric(analytics.MetricAudioLanguage, lo.CoalesceOrEmpty(ev.Audio.Language, ev.Audio.Label))
		}
	case media.EventSubtitleEnabled:
		if t.video != nil && ev.Subtitle != nil {
			t.reportSubtitle(*ev.Subtitle)
		}
	case media.EventSubtitleDisabled:
		t.onSubtitleDisabled(ev)
	case media.EventMuted:
		if t.video != nil {
			t.playbackEvent("Mute", nil)
		}
	case media.EventUnmuted:
		if t.video != nil {
			t.playbackEvent("Unmute", nil)
		}
	case media.EventError:
		t.trackError(ev)
	case media.EventDestroy:
		t.endSession()
		t.detach()
	case media.EventAdBreakStarted:
		t.onAdBreakStarted()
	case media.EventAdBreakFinished:
		t.onAdBreakFinished()
	case media.EventAdStarted:
		t.onAdStarted(ev)
	case media.EventAdFinished:
		t.onAdFinished()
	case media.EventAdSkipped:
		t.onAdSkipped()
	case media.EventAdError:
		t.onAdError(ev)
	}
}

func (t *Tracker) onSourceLoaded() {
	t.derive()
	if t.video != nil && !t.adBreak.active {
		t.pushContentInfo()
	}
}

// onSourceUnloaded ends the session. During an ad break the content source is swapped
// for the ad, which is not the end of the session.
func (t *Tracker) onSourceUnloaded() {
	if t.adBreak.active {
		return
	}

	t.endSession()
}

func (t *Tracker) onPlay(ev media.Event) {
	if t.video == nil && !t.adBreak.active {
		if t.sessionEndedExternally {
			t.debugf("session was ended by the application, not restarting on play")
		} else if err := t.initializeSession(); err != nil {
			t.logger.Warnf("could not start session on play: %v", err)
		}
	}

	if t.video != nil && !t.hasPlayed && !t.adBreak.active {
		t.hasPlayed = true
		t.reportTracks()
	}

	t.trackPlaybackStateChanged(ev)
}

func (t *Tracker) onSeek(ev media.Event) {
	if t.video == nil {
		return
	}

	target := -1
	if ev.Kind == media.EventSeek {
		target = int(math.Round(ev.SeekTarget * 1000))
	}

	t.metric(analytics.MetricSeekStarted, target)
	t.trackPlaybackStateChanged(ev)
}

// trackPlaybackStateChanged maps an event to a player state and drives the stall timer.
func (t *Tracker) trackPlaybackStateChanged(ev media.Event) {
	if t.video == nil {
		return
	}

	state := mo.None[analytics.PlayerState]()

	switch ev.Kind {
	case media.EventPlay, media.EventSeek, media.EventTimeShift:
		t.stall.start()
		return
	case media.EventStallStarted:
		t.stall.clear()
		state = mo.Some(analytics.StateBuffering)
	case media.EventPlaying:
		t.stall.clear()
		state = mo.Some(analytics.StatePlaying)
	case media.EventPaused:
		t.stall.clear()
		if t.player != nil && t.player.IsPaused() {
			state = mo.Some(analytics.StatePaused)
		}
	case media.EventSeeked, media.EventTimeShifted:
		t.stall.clear()
		t.metric(analytics.MetricSeekEnded)
		state = t.currentState()
	case media.EventStallEnded:
		t.stall.clear()
		state = t.currentState()
	case media.EventPlaybackFinished:
		t.stall.clear()
		state = mo.Some(analytics.StateStopped)
	}

	if s, ok := state.Get(); ok {
		t.reportState(s)
	}
}

func (t *Tracker) onStallExpired(generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.stall.expire(generation) || t.video == nil {
		return
	}

	t.debugf("no resolution within %s, reporting buffering", t.options.StallGrace)
	t.reportState(analytics.StateBuffering)
}

func (t *Tracker) onVideoQualityChanged(ev media.Event) {
	if t.video == nil || ev.Quality == nil {
		return
	}

	q := *ev.Quality
	if q.Bitrate > 0 {
		t.metric(analytics.MetricBitrate, q.Kbps())
	}

	if q.Width > 0 && q.Height > 0 {
		t.metric(analytics.MetricResolution, q.Width, q.Height)
	}

	if q.FrameRate > 0 {
		t.metric(analytics.MetricRenderedFrameRate, int(math.Round(q.FrameRate)))

		if !t.adBreak.active {
			t.derive()
			t.pushContentInfo()
		}
	}
}

// reportSubtitle reports track on its channel and switches the other channel off.
func (t *Tracker) reportSubtitle(track media.SubtitleTrack) {
	language := track.Language
	if language == "" {
		language = track.Label
	}

	if track.Kind == media.KindCaptions {
		t.metric(analytics.MetricSubtitlesLanguage, analytics.LanguageOff)
		t.metric(analytics.MetricClosedCaptionsLanguage, language)
		return
	}

	t.metric(analytics.MetricClosedCaptionsLanguage, analytics.LanguageOff)
	t.metric(analytics.MetricSubtitlesLanguage, language)
}

func (t *Tracker) onSubtitleDisabled(ev media.Event) {
	if t.video == nil {
		return
	}

	if ev.Subtitle == nil || ev.Subtitle.Kind == media.KindSubtitles {
		t.metric(analytics.MetricSubtitlesLanguage, analytics.LanguageOff)
	}

	if ev.Subtitle == nil || ev.Subtitle.Kind == media.KindCaptions {
		t.metric(analytics.MetricClosedCaptionsLanguage, analytics.LanguageOff)
	}
}

// trackError opens a session when needed so failed starts are visible, reports the
// failure as fatal and ends the session.
func (t *Tracker) trackError(ev media.Event) {
	if t.video == nil && !t.sessionEndedExternally {
		if err := t.initializeSession(); err != nil {
			t.logger.Warnf("could not start session for error: %v", err)
		}
	}

	if t.video == nil {
		return
	}

	message := "unknown player error"
	if ev.Error != nil {
		message = ev.Error.Error()
	}

	t.call("report playback error", func() error {
		return t.video.ReportPlaybackError(message, analytics.SeverityFatal)
	})

	t.endSession()
}
