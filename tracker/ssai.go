package tracker

import (
	"strconv"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/media"
	"github.com/samber/mo"
)

// SSAIAdInfo describes a server-side stitched ad.
type SSAIAdInfo struct {
	ID          string
	Title       string
	AdSystem    string
	Position    media.AdPosition
	Duration    float64
	IsSlate     bool
	Stitcher    string
	BitrateKbps mo.Option[int]

	// Additional is free-form metadata; it wins over every other field.
	Additional map[string]string
}

func (i SSAIAdInfo) fields() map[string]any {
	fields := map[string]any{
		analytics.KeyAssetName:    i.Title,
		analytics.KeyAdID:         i.ID,
		analytics.KeyAdSystem:     i.AdSystem,
		analytics.KeyAdPosition:   string(i.Position),
		analytics.KeyAdIsSlate:    strconv.FormatBool(i.IsSlate),
		analytics.KeyAdStitcher:   i.Stitcher,
		analytics.KeyAdTechnology: ServerSide.String(),
	}

	if i.Duration > 0 {
		fields[analytics.KeyDuration] = int(i.Duration)
	}

	return fields
}

// SSAI reports server-side ad insertion driven by the application.
// It shares the ad break state with player ad events; each refuses to start while the other is active.
type SSAI struct {
	t *Tracker
}

func (s *SSAI) active() bool {
	return s.t.adBreak.active && s.t.adBreak.technology == ServerSide
}

// IsAdBreakActive reports whether a server-side ad break is in progress.
func (s *SSAI) IsAdBreakActive() bool {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	return s.active()
}

// ReportAdBreakStarted opens a server-side ad break.
func (s *SSAI) ReportAdBreakStarted(attrs map[string]string) {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.video == nil {
		t.logger.Warn("no active session, ignoring server-side ad break")
		return
	}

	if t.adBreak.active {
		t.logger.Warnf("%s ad break is already active, ignoring server-side ad break", t.adBreak.technology)
		return
	}

	t.startAdBreak(ServerSide, attrs)
}

// ReportAdStarted reports an ad of the current server-side break.
func (s *SSAI) ReportAdStarted(info SSAIAdInfo) {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.active() {
		t.logger.Warn("no server-side ad break is active, ignoring ad start")
		return
	}

	t.trackAdStarted(t.adInfo(info.fields(), info.Additional), ServerSide, info.BitrateKbps)
}

// UpdateAdInfo replaces the descriptor of the running ad.
func (s *SSAI) UpdateAdInfo(info SSAIAdInfo) {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.active() || t.ad == nil {
		return
	}

	content := t.adInfo(info.fields(), info.Additional)
	t.call("set ad info", func() error {
		return t.ad.SetAdInfo(content)
	})
}

// ReportAdFinished ends the running ad.
func (s *SSAI) ReportAdFinished() {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.active() || t.ad == nil {
		return
	}

	t.call("report ad ended", t.ad.ReportAdEnded)
}

// ReportAdSkipped marks the running ad as skipped.
func (s *SSAI) ReportAdSkipped() {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.active() || t.ad == nil {
		return
	}

	t.call("report ad skipped", t.ad.ReportAdSkipped)
}

// ReportAdBreakFinished closes the server-side break and restores the content state.
func (s *SSAI) ReportAdBreakFinished() {
	t := s.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if !s.active() {
		t.logger.Warn("no server-side ad break is active")
		return
	}

	t.finishAdBreak()
}
