package history

import (
	"testing"
	"time"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/analytics/record"
	"github.com/anisan-cli/playtrack/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given an empty history", t, func() {
		So(Clear(), ShouldBeNil)

		Convey("When a session is saved", func() {
			err := Save(Session{
				AssetName:  "Big Buck Bunny",
				StreamType: analytics.StreamVOD,
				Duration:   100,
				Playhead:   40_000,
				Stalls:     2,
				Ended:      time.Unix(100, 0),
			})
			So(err, ShouldBeNil)

			Convey("Then the summary is stored under the asset name", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldContainKey, "Big Buck Bunny")

				summary := saved["Big Buck Bunny"]
				So(summary.Sessions, ShouldEqual, 1)
				So(summary.Stalls, ShouldEqual, 2)
				So(summary.WatchedPercentage, ShouldAlmostEqual, 40)
			})

			Convey("And a shorter rewatch keeps the furthest progress", func() {
				So(Save(Session{AssetName: "Big Buck Bunny", Duration: 100, Playhead: 10_000, Stalls: 1}), ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				summary := saved["Big Buck Bunny"]
				So(summary.Sessions, ShouldEqual, 2)
				So(summary.Stalls, ShouldEqual, 3)
				So(summary.WatchedPercentage, ShouldAlmostEqual, 40)
				So(summary.LastWatched, ShouldEqual, time.Unix(100, 0))
			})

			Convey("And it can be removed", func() {
				So(Remove("Big Buck Bunny"), ShouldBeNil)
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldBeEmpty)
			})
		})

		Convey("When a session has no asset name", func() {
			So(Save(Session{Playhead: 1000}), ShouldBeNil)

			Convey("Then nothing is stored", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved, ShouldBeEmpty)
			})
		})
	})
}

func TestWatchedPercentage(t *testing.T) {
	Convey("Watched percentage", t, func() {
		So(Session{Playhead: 5000}.WatchedPercentage(), ShouldEqual, 0)
		So(Session{Duration: 10, Playhead: 5000}.WatchedPercentage(), ShouldAlmostEqual, 50)
		So(Session{Duration: 10, Playhead: 50_000}.WatchedPercentage(), ShouldEqual, 100)
	})
}

func TestCollector(t *testing.T) {
	Convey("Given a collector", t, func() {
		var saved []Session
		c := NewCollector()
		c.now = func() time.Time { return time.Unix(42, 0) }
		c.save = func(s Session) error {
			saved = append(saved, s)
			return nil
		}

		write := func(r record.Record) {
			r.Scope = record.ScopeVideo
			r.SessionID = "s1"
			So(c.Write(r), ShouldBeNil)
		}

		write(record.Record{Kind: record.KindPlaybackRequested, Info: analytics.ContentInfo{
			analytics.KeyAssetName:  "clip",
			analytics.KeyStreamType: analytics.StreamVOD,
			analytics.KeyDuration:   60,
		}})
		write(record.Record{Kind: record.KindMetric, Name: string(analytics.MetricPlayerState), Values: []any{analytics.StateBuffering}})
		write(record.Record{Kind: record.KindMetric, Name: string(analytics.MetricPlayerState), Values: []any{analytics.StatePlaying}})
		write(record.Record{Kind: record.KindMetric, Name: string(analytics.MetricPlayHeadTime), Values: []any{30_000}})
		write(record.Record{Kind: record.KindMetric, Name: string(analytics.MetricPlayHeadTime), Values: []any{12_000}})

		Convey("When an ad record arrives", func() {
			So(c.Write(record.Record{Scope: record.ScopeAd, SessionID: "s1", Kind: record.KindAdEnded}), ShouldBeNil)

			Convey("Then it is ignored", func() {
				So(saved, ShouldBeEmpty)
			})
		})

		Convey("When playback ends", func() {
			write(record.Record{Kind: record.KindPlaybackEnded, Time: time.Unix(7, 0)})

			Convey("Then the session is saved once", func() {
				So(saved, ShouldHaveLength, 1)
				So(saved[0].AssetName, ShouldEqual, "clip")
				So(saved[0].Stalls, ShouldEqual, 1)
				So(saved[0].Playhead, ShouldEqual, 30_000)
				So(saved[0].WatchedPercentage(), ShouldAlmostEqual, 50)
				So(saved[0].Ended, ShouldEqual, time.Unix(7, 0))

				write(record.Record{Kind: record.KindRelease})
				So(saved, ShouldHaveLength, 1)
			})
		})

		Convey("When the collector closes with the session open", func() {
			So(c.Close(), ShouldBeNil)

			Convey("Then the session is saved with the close time", func() {
				So(saved, ShouldHaveLength, 1)
				So(saved[0].Ended, ShouldEqual, time.Unix(42, 0))
			})
		})
	})
}
