package tracker

import (
	"fmt"

	"github.com/anisan-cli/playtrack/analytics"
)

// call runs one analytics call. Failures and panics are logged and never change tracker state.
func (t *Tracker) call(what string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorf("%s panicked: %v", what, r)
		}
	}()

	if err := fn(); err != nil {
		t.debugf("%s failed: %v", what, err)
	}
}

func (t *Tracker) debugf(format string, args ...any) {
	if t.options.Debug {
		t.logger.Debugf(format, args...)
	}
}

// metric reports to the ad stream while an ad break is active, to the content stream otherwise.
func (t *Tracker) metric(name analytics.MetricName, values ...any) {
	if t.adBreak.active {
		if t.ad == nil {
			return
		}
		t.call(fmt.Sprintf("ad metric %s", name), func() error {
			return t.ad.ReportAdMetric(name, values...)
		})
		return
	}

	if t.video == nil {
		return
	}

	t.call(fmt.Sprintf("playback metric %s", name), func() error {
		return t.video.ReportPlaybackMetric(name, values...)
	})
}

func (t *Tracker) reportState(state analytics.PlayerState) {
	if !t.adBreak.active && t.video != nil {
		t.lastContentState = state
	}

	t.metric(analytics.MetricPlayerState, state)
}
