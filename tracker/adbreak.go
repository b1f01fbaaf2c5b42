package tracker

import (
	"math"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/media"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Technology is how ads are inserted into the stream.
type Technology int

const (
	// ClientSide ads are played by the player between content segments.
	ClientSide Technology = iota
	// ServerSide ads are stitched into the content stream.
	ServerSide
)

func (t Technology) String() string {
	if t == ServerSide {
		return analytics.TechnologyServerSide
	}
	return analytics.TechnologyClientSide
}

func (t Technology) adType() analytics.AdType {
	if t == ServerSide {
		return analytics.AdServerSide
	}
	return analytics.AdClientSide
}

func (t Technology) adPlayer() analytics.AdPlayer {
	if t == ServerSide {
		return analytics.AdPlayerContent
	}
	return analytics.AdPlayerSeparate
}

// adBreakState is shared by player ad events, SSAI calls and paused tracking.
type adBreakState struct {
	active         bool
	technology     Technology
	pausedTracking bool
	savedState     analytics.PlayerState
}

// adContentKeys are copied from the content metadata into every ad descriptor.
var adContentKeys = []string{
	analytics.KeyAssetName,
	analytics.KeyViewerID,
	analytics.KeyStreamType,
	analytics.KeyPlayerName,
	analytics.KeyDefaultResource,
	analytics.KeyEncodedFrameRate,
	analytics.TagIntegrationVersion,
	analytics.TagPlayerType,
}

// startAdBreak opens an ad break. The lock must be held and the caller must have checked
// that a session exists and no break is active.
func (t *Tracker) startAdBreak(technology Technology, attrs map[string]string) {
	t.stall.clear()

	t.adBreak = adBreakState{
		active:     true,
		technology: technology,
		savedState: t.lastContentState,
	}
	t.builder.Suspend(metadata.AdBreakRestricted)

	t.call("report ad break started", func() error {
		return t.video.ReportAdBreakStarted(technology.adType(), technology.adPlayer(), attrs)
	})
}

// finishAdBreak closes the break and restores the content state saved when it started.
func (t *Tracker) finishAdBreak() {
	if t.video == nil || !t.adBreak.active {
		return
	}

	saved := t.adBreak.savedState
	t.adBreak = adBreakState{}
	t.stall.clear()
	t.builder.Resume()

	t.call("report ad break ended", t.video.ReportAdBreakEnded)

	if saved != "" {
		t.reportState(saved)
	}

	if t.pendingUpdate {
		t.pendingUpdate = false
		t.derive()
		t.pushContentInfo()
	}
}

// trackAdStarted reports the ad descriptor followed by the current player state into the
// ad stream. Stitched ads also get resolution and frame rate since they have no events of
// their own.
func (t *Tracker) trackAdStarted(info analytics.ContentInfo, technology Technology, bitrateKbps mo.Option[int]) {
	if t.ad == nil {
		return
	}

	t.call("report ad started", func() error {
		return t.ad.ReportAdStarted(info)
	})

	if state, ok := t.currentState().Get(); ok {
		t.metric(analytics.MetricPlayerState, state)
	}

	if technology == ServerSide && t.player != nil {
		if q, ok := t.player.VideoQuality(); ok {
			if q.Width > 0 && q.Height > 0 {
				t.metric(analytics.MetricResolution, q.Width, q.Height)
			}
			if q.FrameRate > 0 {
				t.metric(analytics.MetricRenderedFrameRate, int(math.Round(q.FrameRate)))
			}
		}
	}

	if kbps, ok := bitrateKbps.Get(); ok {
		t.metric(analytics.MetricBitrate, kbps)
	}
}

// adInfo layers ad fields over the allow-listed content keys. Extra wins over both.
func (t *Tracker) adInfo(ad map[string]any, extra map[string]string) analytics.ContentInfo {
	content := t.builder.Build().ContentInfo(metadata.AllFields)

	info := analytics.ContentInfo(lo.PickByKeys(content, adContentKeys))
	for k, v := range ad {
		if v != nil && v != "" {
			info[k] = v
		}
	}

	for k, v := range extra {
		info[k] = v
	}

	return info
}

func (t *Tracker) clientSideAdInfo(ad *media.AdInfo) analytics.ContentInfo {
	fields := map[string]any{analytics.KeyAdTechnology: ClientSide.String()}
	if ad != nil {
		fields[analytics.KeyAssetName] = ad.Title
		fields[analytics.KeyAdID] = ad.ID
		fields[analytics.KeyAdSystem] = ad.System
		fields[analytics.KeyAdPosition] = string(ad.Position)
		fields[analytics.KeyAdMediaURL] = ad.MediaURL
		fields[analytics.KeyStreamURL] = ad.MediaURL
		if ad.Duration > 0 {
			fields[analytics.KeyDuration] = int(ad.Duration)
		}
	}

	return t.adInfo(fields, nil)
}

func (t *Tracker) csaiActive() bool {
	return t.adBreak.active && t.adBreak.technology == ClientSide && !t.adBreak.pausedTracking
}

func (t *Tracker) onAdBreakStarted() {
	if t.video == nil {
		t.debugf("ad break started without a session")
		return
	}

	if t.adBreak.active {
		t.logger.Warnf("%s ad break is already active, ignoring player ad break", t.adBreak.technology)
		return
	}

	t.startAdBreak(ClientSide, nil)
}

func (t *Tracker) onAdBreakFinished() {
	if !t.csaiActive() {
		return
	}

	t.finishAdBreak()
}

func (t *Tracker) onAdStarted(ev media.Event) {
	if !t.csaiActive() {
		return
	}

	t.trackAdStarted(t.clientSideAdInfo(ev.Ad), ClientSide, mo.None[int]())
}

func (t *Tracker) onAdFinished() {
	if !t.csaiActive() || t.ad == nil {
		return
	}

	t.call("report ad ended", t.ad.ReportAdEnded)
}

func (t *Tracker) onAdSkipped() {
	if !t.csaiActive() || t.ad == nil {
		return
	}

	t.call("report ad skipped", t.ad.ReportAdSkipped)
}

func (t *Tracker) onAdError(ev media.Event) {
	if t.video == nil || t.ad == nil {
		return
	}

	message := "ad error"
	if ev.Ad != nil && ev.Ad.Message != "" {
		message = ev.Ad.Message
	} else if ev.Error != nil {
		message = ev.Error.Error()
	}

	info := t.clientSideAdInfo(ev.Ad)
	t.call("report ad failed", func() error {
		return t.ad.ReportAdFailed(message, info)
	})
}
