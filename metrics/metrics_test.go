package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

type failingSink struct{}

func (failingSink) Write(record.Record) error { return errors.New("sink down") }
func (failingSink) Close() error              { return nil }

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented recorder", t, func() {
		m := New(prometheus.NewRegistry())
		client := m.Instrument(record.New(record.Discard, record.Options{}))

		Convey("When a session is opened", func() {
			video, err := client.NewVideoAnalytics()
			So(err, ShouldBeNil)

			Convey("Then it is counted as active", func() {
				So(testutil.ToFloat64(m.ActiveSessions), ShouldEqual, 1)
				So(testutil.ToFloat64(m.Calls.WithLabelValues("client", "NewVideoAnalytics")), ShouldEqual, 1)
			})

			Convey("And player states are counted per stream", func() {
				So(video.ReportPlaybackMetric(analytics.MetricPlayerState, analytics.StatePlaying), ShouldBeNil)
				So(video.ReportPlaybackMetric(analytics.MetricPlayerState, analytics.StatePlaying), ShouldBeNil)
				So(video.ReportPlaybackMetric(analytics.MetricBitrate, 1200), ShouldBeNil)

				So(testutil.ToFloat64(m.States.WithLabelValues("content", "PLAYING")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.Calls.WithLabelValues("video", "ReportPlaybackMetric")), ShouldEqual, 3)
			})

			Convey("And ad handles unwrap the instrumented session", func() {
				ad, err := client.NewAdAnalytics(video)
				So(err, ShouldBeNil)
				So(ad.ReportAdMetric(analytics.MetricPlayerState, analytics.StateBuffering), ShouldBeNil)
				So(testutil.ToFloat64(m.States.WithLabelValues("ad", "BUFFERING")), ShouldEqual, 1)
			})

			Convey("And ad breaks are counted by type", func() {
				So(video.ReportAdBreakStarted(analytics.AdServerSide, analytics.AdPlayerContent, nil), ShouldBeNil)
				So(testutil.ToFloat64(m.AdBreaks.WithLabelValues(string(analytics.AdServerSide))), ShouldEqual, 1)
			})

			Convey("And releasing twice decrements once", func() {
				So(video.Release(), ShouldBeNil)
				_ = video.Release()
				So(testutil.ToFloat64(m.ActiveSessions), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a recorder whose sink fails", t, func() {
		m := New(prometheus.NewRegistry())
		client := m.Instrument(record.New(failingSink{}, record.Options{}))

		Convey("When an app event is reported", func() {
			err := client.ReportAppEvent("launch", nil)

			Convey("Then the failure is counted and returned", func() {
				So(err, ShouldNotBeNil)
				So(testutil.ToFloat64(m.Failures.WithLabelValues("client", "ReportAppEvent")), ShouldEqual, 1)
			})
		})
	})
}

func TestServe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a metrics server", t, func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		addr := listener.Addr().String()
		So(listener.Close(), ShouldBeNil)

		registry := prometheus.NewRegistry()
		m := New(registry)
		m.ActiveSessions.Set(3)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Serve(ctx, addr, registry)
		}()

		Convey("Then /metrics exposes the collectors", func() {
			var body string
			for i := 0; i < 50; i++ {
				resp, err := http.Get("http://" + addr + "/metrics")
				if err == nil {
					b, _ := io.ReadAll(resp.Body)
					_ = resp.Body.Close()
					body = string(b)
					break
				}
				time.Sleep(20 * time.Millisecond)
			}

			So(strings.Contains(body, "playtrack_active_sessions 3"), ShouldBeTrue)
		})

		Reset(func() {
			cancel()
			So(<-done, ShouldBeNil)
			http.DefaultClient.CloseIdleConnections()
		})
	})
}
