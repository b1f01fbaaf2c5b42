package metrics

import (
	"github.com/anisan-cli/playtrack/analytics"
)

// Instrument wraps c so every call is counted.
func (m *Metrics) Instrument(c analytics.Client) analytics.Client {
	return &client{inner: c, m: m}
}

type client struct {
	inner analytics.Client
	m     *Metrics
}

func (c *client) NewVideoAnalytics() (analytics.VideoAnalytics, error) {
	v, err := c.inner.NewVideoAnalytics()
	if c.m.observe("client", "NewVideoAnalytics", err) != nil {
		return nil, err
	}

	c.m.ActiveSessions.Inc()
	return &video{inner: v, m: c.m}, nil
}

func (c *client) NewAdAnalytics(v analytics.VideoAnalytics) (analytics.AdAnalytics, error) {
	if wrapped, ok := v.(*video); ok {
		v = wrapped.inner
	}

	a, err := c.inner.NewAdAnalytics(v)
	if c.m.observe("client", "NewAdAnalytics", err) != nil {
		return nil, err
	}

	return &ad{inner: a, m: c.m}, nil
}

func (c *client) ReportAppEvent(name string, attrs map[string]string) error {
	return c.m.observe("client", "ReportAppEvent", c.inner.ReportAppEvent(name, attrs))
}

func (c *client) Release() error {
	return c.m.observe("client", "Release", c.inner.Release())
}

type video struct {
	inner    analytics.VideoAnalytics
	m        *Metrics
	released bool
}

func (v *video) observe(method string, err error) error {
	return v.m.observe("video", method, err)
}

func (v *video) SetPlayerInfo(info analytics.PlayerInfo) error {
	return v.observe("SetPlayerInfo", v.inner.SetPlayerInfo(info))
}

func (v *video) SetCallback(poll func()) error {
	return v.observe("SetCallback", v.inner.SetCallback(poll))
}

func (v *video) ReportPlaybackRequested(info analytics.ContentInfo) error {
	return v.observe("ReportPlaybackRequested", v.inner.ReportPlaybackRequested(info))
}

func (v *video) SetContentInfo(info analytics.ContentInfo) error {
	return v.observe("SetContentInfo", v.inner.SetContentInfo(info))
}

func (v *video) ReportPlaybackMetric(name analytics.MetricName, values ...any) error {
	countState(v.m, "content", name, values)
	return v.observe("ReportPlaybackMetric", v.inner.ReportPlaybackMetric(name, values...))
}

func (v *video) ReportPlaybackEvent(name string, attrs map[string]string) error {
	return v.observe("ReportPlaybackEvent", v.inner.ReportPlaybackEvent(name, attrs))
}

func (v *video) ReportPlaybackError(message string, severity analytics.Severity) error {
	return v.observe("ReportPlaybackError", v.inner.ReportPlaybackError(message, severity))
}

func (v *video) ReportAdBreakStarted(adType analytics.AdType, adPlayer analytics.AdPlayer, attrs map[string]string) error {
	v.m.AdBreaks.WithLabelValues(string(adType)).Inc()
	return v.observe("ReportAdBreakStarted", v.inner.ReportAdBreakStarted(adType, adPlayer, attrs))
}

func (v *video) ReportAdBreakEnded() error {
	return v.observe("ReportAdBreakEnded", v.inner.ReportAdBreakEnded())
}

func (v *video) ReportPlaybackEnded() error {
	return v.observe("ReportPlaybackEnded", v.inner.ReportPlaybackEnded())
}

func (v *video) Release() error {
	if !v.released {
		v.released = true
		v.m.ActiveSessions.Dec()
	}
	return v.observe("Release", v.inner.Release())
}

type ad struct {
	inner analytics.AdAnalytics
	m     *Metrics
}

func (a *ad) observe(method string, err error) error {
	return a.m.observe("ad", method, err)
}

func (a *ad) ReportAdStarted(info analytics.ContentInfo) error {
	return a.observe("ReportAdStarted", a.inner.ReportAdStarted(info))
}

func (a *ad) SetAdInfo(info analytics.ContentInfo) error {
	return a.observe("SetAdInfo", a.inner.SetAdInfo(info))
}

func (a *ad) ReportAdMetric(name analytics.MetricName, values ...any) error {
	countState(a.m, "ad", name, values)
	return a.observe("ReportAdMetric", a.inner.ReportAdMetric(name, values...))
}

func (a *ad) ReportAdEnded() error {
	return a.observe("ReportAdEnded", a.inner.ReportAdEnded())
}

func (a *ad) ReportAdSkipped() error {
	return a.observe("ReportAdSkipped", a.inner.ReportAdSkipped())
}

func (a *ad) ReportAdFailed(message string, info analytics.ContentInfo) error {
	return a.observe("ReportAdFailed", a.inner.ReportAdFailed(message, info))
}

func (a *ad) Release() error {
	return a.observe("Release", a.inner.Release())
}

func countState(m *Metrics, stream string, name analytics.MetricName, values []any) {
	if name != analytics.MetricPlayerState || len(values) == 0 {
		return
	}

	if state, ok := values[0].(analytics.PlayerState); ok {
		m.States.WithLabelValues(stream, string(state)).Inc()
	}
}
