package tracker

import (
	"fmt"
	"math"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/log"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// initializeSession opens the content session and its ad companion. The lock must be held.
func (t *Tracker) initializeSession() error {
	if err := t.resolveAssetName(); err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}

	t.derive()
	m := t.builder.Build()
	if m.AssetName == "" {
		return fmt.Errorf("initialize session: %w", ErrMissingAssetName)
	}

	video, err := t.client.NewVideoAnalytics()
	if err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}

	t.video = video
	t.hasPlayed = false
	t.pendingUpdate = false
	t.lastContentState = ""
	t.builder.SessionStarted()

	t.call("set player info", func() error {
		return video.SetPlayerInfo(t.playerInfo())
	})
	t.call("set playhead callback", func() error {
		return video.SetCallback(t.pollPlayhead)
	})
	t.call("report playback requested", func() error {
		return video.ReportPlaybackRequested(m.ContentInfo(metadata.AllFields))
	})

	ad, err := t.client.NewAdAnalytics(video)
	if err != nil {
		t.logger.Warnf("ad analytics unavailable: %v", err)
	} else {
		t.ad = ad
	}

	t.reportState(analytics.StateStopped)

	t.logger.WithField(log.FieldAsset, m.AssetName).Info("session started")
	return nil
}

func (t *Tracker) resolveAssetName() error {
	if name := t.builder.Overrides().AssetName; name != nil && *name != "" {
		return nil
	}

	if t.player == nil {
		return ErrPlayerNotAttached
	}

	source, ok := t.player.Source()
	if !ok {
		return ErrNoSourceLoaded
	}

	if source.Title == "" {
		return ErrMissingAssetName
	}

	return nil
}

// endSession closes both handles. An open ad break is reported skipped first.
func (t *Tracker) endSession() {
	if t.video == nil {
		return
	}

	if t.adBreak.active {
		if t.ad != nil {
			t.call("report ad skipped", t.ad.ReportAdSkipped)
		}
		t.call("report ad break ended", t.video.ReportAdBreakEnded)
		t.adBreak = adBreakState{}
	}

	t.stall.clear()
	t.call("report playback ended", t.video.ReportPlaybackEnded)

	if t.ad != nil {
		t.call("release ad analytics", t.ad.Release)
		t.ad = nil
	}

	t.call("release video analytics", t.video.Release)
	t.video = nil

	t.hasPlayed = false
	t.pendingUpdate = false
	t.lastContentState = ""
	t.builder.SessionEnded()

	t.logger.Info("session ended")
}

// derive refreshes the player-derived metadata layer.
func (t *Tracker) derive() {
	if t.player == nil {
		return
	}

	d := metadata.Derived{PlayerName: t.player.PlayerType()}

	source, ok := t.player.Source()
	if ok {
		d.AssetName = source.Title
		d.ViewerID = source.ViewerID
		d.StreamURL = source.URL
		d.Custom = source.CustomData

		if t.player.IsLive() {
			d.StreamType = metadata.StreamLive
		} else {
			d.StreamType = metadata.StreamVOD
		}

		if duration := t.player.Duration(); duration > 0 && !math.IsInf(duration, 0) {
			d.Duration = mo.Some(int(duration))
		}

		if q, ok := t.player.VideoQuality(); ok && q.FrameRate > 0 {
			d.EncodedFrameRate = mo.Some(q.FrameRate)
		}
	}

	t.builder.Derive(d)
}

func (t *Tracker) pushContentInfo() {
	info := t.builder.Build().ContentInfo(t.builder.Updatable())
	if len(info) == 0 {
		return
	}

	t.call("set content info", func() error {
		return t.video.SetContentInfo(info)
	})
}

func (t *Tracker) playerInfo() analytics.PlayerInfo {
	if t.player == nil {
		return analytics.PlayerInfo{FrameworkName: "unknown"}
	}

	return analytics.PlayerInfo{
		FrameworkName:    t.player.PlayerType(),
		FrameworkVersion: t.player.Version(),
	}
}

// pollPlayhead is invoked by the SDK.
func (t *Tracker) pollPlayhead() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.video == nil || t.player == nil || t.adBreak.active {
		return
	}

	ms := int(math.Round(t.player.CurrentTime() * 1000))
	t.call("report playhead", func() error {
		return t.video.ReportPlaybackMetric(analytics.MetricPlayHeadTime, ms)
	})
}

// currentState asks the player instead of trusting the last event.
func (t *Tracker) currentState() mo.Option[analytics.PlayerState] {
	if t.player == nil {
		return mo.None[analytics.PlayerState]()
	}

	switch {
	case t.player.IsPlaying():
		return mo.Some(analytics.StatePlaying)
	case t.player.IsPaused():
		return mo.Some(analytics.StatePaused)
	case t.player.IsStalled():
		return mo.Some(analytics.StateBuffering)
	default:
		return mo.None[analytics.PlayerState]()
	}
}

func (t *Tracker) reportTracks() {
	if t.player == nil {
		return
	}

	if audio, ok := t.player.AudioTrack(); ok {
		t.metric(analytics.MetricAudioLanguage, lo.CoalesceOrEmpty(audio.Language, audio.Label))
	}

	enabled := 0
	for _, track := range t.player.SubtitleTracks() {
		if track.Enabled {
			enabled++
		}
	}

	if enabled != 1 {
		t.metric(analytics.MetricSubtitlesLanguage, analytics.LanguageOff)
		t.metric(analytics.MetricClosedCaptionsLanguage, analytics.LanguageOff)
		return
	}

	for _, track := range t.player.SubtitleTracks() {
		if track.Enabled {
			t.reportSubtitle(track)
			return
		}
	}
}
