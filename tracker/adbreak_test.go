package tracker

import (
	"testing"

	"github.com/anisan-cli/playtrack/analytics"
	"github.com/anisan-cli/playtrack/media"
	"github.com/anisan-cli/playtrack/metadata"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSSAI(t *testing.T) {
	Convey("Given a playing session", t, func() {
		f := newFixture().attach()
		f.startPlaying()
		ssai := f.tracker.SSAI()

		Convey("When a server-side ad break starts and finishes", func() {
			So(ssai.IsAdBreakActive(), ShouldBeFalse)
			ssai.ReportAdBreakStarted(map[string]string{"podIndex": "1"})
			active := ssai.IsAdBreakActive()
			ssai.ReportAdBreakStarted(nil)
			ssai.ReportAdBreakFinished()

			Convey("Then the break is active only in between and starts once", func() {
				So(active, ShouldBeTrue)
				So(ssai.IsAdBreakActive(), ShouldBeFalse)
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 1)
				So(f.sdk.count("ReportAdBreakEnded"), ShouldEqual, 1)

				started, _ := f.sdk.last("ReportAdBreakStarted")
				So(started.args, ShouldResemble, []any{analytics.AdServerSide, analytics.AdPlayerContent})
			})
		})

		Convey("When the player state changes during the break", func() {
			ssai.ReportAdBreakStarted(nil)
			f.player.set(func(p *fakePlayer) { p.playing, p.paused = false, true })
			f.player.emit(media.EventPaused)
			f.player.emit(media.EventStallStarted)
			ssai.ReportAdBreakFinished()

			Convey("Then those states go to the ad stream", func() {
				So(f.sdk.states("ad"), ShouldResemble, []any{analytics.StatePaused, analytics.StateBuffering})
			})

			Convey("Then the state from before the break is restored verbatim", func() {
				states := f.sdk.states("video")
				So(states[len(states)-1], ShouldEqual, analytics.StatePlaying)
				So(f.sdk.index("ReportAdBreakEnded"), ShouldBeLessThan, len(f.sdk.snapshot())-1)
			})
		})

		Convey("When the content was paused before the break", func() {
			f.player.set(func(p *fakePlayer) { p.playing, p.paused = false, true })
			f.player.emit(media.EventPaused)
			ssai.ReportAdBreakStarted(nil)
			f.player.set(func(p *fakePlayer) { p.playing, p.paused = true, false })
			f.player.emit(media.EventPlaying)
			ssai.ReportAdBreakFinished()

			Convey("Then PAUSED is restored", func() {
				states := f.sdk.states("video")
				So(states[len(states)-1], ShouldEqual, analytics.StatePaused)
			})
		})

		Convey("When a stitched ad starts on a fractional frame rate", func() {
			f.player.set(func(p *fakePlayer) {
				p.quality = &media.VideoQuality{Width: 1280, Height: 720, FrameRate: 29.97}
			})
			ssai.ReportAdBreakStarted(nil)
			ssai.ReportAdStarted(SSAIAdInfo{ID: "ad-8", Title: "Promo"})
			f.player.Emit(media.Event{Kind: media.EventVideoQualityChanged, Quality: &media.VideoQuality{FrameRate: 29.97}})

			Convey("Then it is rounded the same way as a quality change", func() {
				So(f.sdk.metrics("ad", analytics.MetricRenderedFrameRate), ShouldResemble, []any{30, 30})
			})
		})

		Convey("When a stitched ad starts", func() {
			f.player.set(func(p *fakePlayer) {
				p.quality = &media.VideoQuality{Width: 1920, Height: 1080, FrameRate: 25}
			})
			f.tracker.UpdateContentMetadata(metadata.Overrides{
				ViewerID: lo.ToPtr("viewer-1"),
				Custom:   map[string]string{"genre": "drama"},
			})
			ssai.ReportAdBreakStarted(nil)
			ssai.ReportAdStarted(SSAIAdInfo{
				ID:          "ad-7",
				Title:       "Spring Sale",
				AdSystem:    "gam",
				Position:    media.AdMidroll,
				Stitcher:    "yospace",
				BitrateKbps: mo.Some(1800),
				Additional:  map[string]string{analytics.KeyAdSystem: "override"},
			})

			Convey("Then the descriptor merges allowed content keys, ad fields and extras", func() {
				started, ok := f.sdk.last("ReportAdStarted")
				So(ok, ShouldBeTrue)

				info := started.args[0].(analytics.ContentInfo)
				So(info[analytics.KeyAssetName], ShouldEqual, "Spring Sale")
				So(info[analytics.KeyViewerID], ShouldEqual, "viewer-1")
				So(info[analytics.KeyAdID], ShouldEqual, "ad-7")
				So(info[analytics.KeyAdSystem], ShouldEqual, "override")
				So(info[analytics.KeyAdPosition], ShouldEqual, "MIDROLL")
				So(info[analytics.KeyAdIsSlate], ShouldEqual, "false")
				So(info[analytics.KeyAdTechnology], ShouldEqual, analytics.TechnologyServerSide)
				So(info[analytics.TagPlayerType], ShouldEqual, "fake")
				So(info, ShouldNotContainKey, "genre")
				So(info, ShouldNotContainKey, analytics.KeyStreamURL)
			})

			Convey("Then state, resolution, frame rate and bitrate follow in the ad stream", func() {
				So(f.sdk.states("ad"), ShouldResemble, []any{analytics.StatePlaying})
				So(f.sdk.metrics("ad", analytics.MetricResolution), ShouldResemble, []any{1920, 1080})
				So(f.sdk.metrics("ad", analytics.MetricRenderedFrameRate), ShouldResemble, []any{25})
				So(f.sdk.metrics("ad", analytics.MetricBitrate), ShouldResemble, []any{1800})
			})

			Convey("Then ad updates, ends and skips reach the ad handle", func() {
				ssai.UpdateAdInfo(SSAIAdInfo{ID: "ad-7", Title: "Spring Sale"})
				ssai.ReportAdFinished()
				ssai.ReportAdSkipped()

				So(f.sdk.count("SetAdInfo"), ShouldEqual, 1)
				So(f.sdk.count("ReportAdEnded"), ShouldEqual, 1)
				So(f.sdk.count("ReportAdSkipped"), ShouldEqual, 1)
			})
		})

		Convey("When an ad starts outside a server-side break", func() {
			ssai.ReportAdStarted(SSAIAdInfo{ID: "ad-1"})

			Convey("Then it is ignored", func() {
				So(f.sdk.count("ReportAdStarted"), ShouldEqual, 0)
			})
		})
	})

	Convey("Given no session", t, func() {
		f := newFixture().attach()

		Convey("When a server-side break is started", func() {
			f.tracker.SSAI().ReportAdBreakStarted(nil)

			Convey("Then nothing happens", func() {
				So(f.tracker.IsAdBreakActive(), ShouldBeFalse)
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 0)
			})
		})
	})
}

func TestClientSideAds(t *testing.T) {
	Convey("Given a playing session", t, func() {
		f := newFixture().attach()
		f.startPlaying()

		Convey("When the player runs an ad break", func() {
			f.player.emit(media.EventAdBreakStarted)
			f.player.Emit(media.Event{Kind: media.EventAdStarted, Ad: &media.AdInfo{ID: "pre-1", Title: "Trailer", Position: media.AdPreroll, Duration: 15}})
			f.player.emit(media.EventAdFinished)

			Convey("Then the break is client side in a separate player", func() {
				started, _ := f.sdk.last("ReportAdBreakStarted")
				So(started.args, ShouldResemble, []any{analytics.AdClientSide, analytics.AdPlayerSeparate})

				ad, _ := f.sdk.last("ReportAdStarted")
				info := ad.args[0].(analytics.ContentInfo)
				So(info[analytics.KeyAdTechnology], ShouldEqual, analytics.TechnologyClientSide)
				So(info[analytics.KeyDuration], ShouldEqual, 15)
				So(f.sdk.metrics("ad", analytics.MetricResolution), ShouldBeEmpty)
				So(f.sdk.count("ReportAdEnded"), ShouldEqual, 1)
			})

			Convey("Then a server-side break cannot start", func() {
				f.tracker.SSAI().ReportAdBreakStarted(nil)
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 1)
				So(f.tracker.SSAI().IsAdBreakActive(), ShouldBeFalse)
			})

			Convey("Then tracking cannot be paused", func() {
				f.tracker.PauseTracking()
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 1)
			})

			Convey("Then the player ends it", func() {
				f.player.emit(media.EventAdBreakFinished)
				So(f.tracker.IsAdBreakActive(), ShouldBeFalse)
			})
		})

		Convey("When a server-side break is active", func() {
			f.tracker.SSAI().ReportAdBreakStarted(nil)
			f.player.emit(media.EventAdBreakStarted)
			f.player.emit(media.EventAdBreakFinished)

			Convey("Then player ad events do not touch it", func() {
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 1)
				So(f.tracker.SSAI().IsAdBreakActive(), ShouldBeTrue)
			})
		})

		Convey("When an ad fails", func() {
			f.player.Emit(media.Event{Kind: media.EventAdError, Ad: &media.AdInfo{ID: "x", Message: "VAST timeout"}})

			Convey("Then the failure is reported to the ad handle", func() {
				failed, ok := f.sdk.last("ReportAdFailed")
				So(ok, ShouldBeTrue)
				So(failed.args[0], ShouldEqual, "VAST timeout")
			})
		})
	})
}

func TestPauseTracking(t *testing.T) {
	Convey("Given a playing session", t, func() {
		f := newFixture().attach()
		f.startPlaying()

		Convey("When tracking is paused and resumed", func() {
			f.tracker.PauseTracking()
			paused := f.tracker.IsAdBreakActive()
			f.player.emit(media.EventAdBreakFinished)
			stillPaused := f.tracker.IsAdBreakActive()
			f.tracker.ResumeTracking()

			Convey("Then a synthetic client-side break spans the pause", func() {
				So(paused, ShouldBeTrue)
				So(stillPaused, ShouldBeTrue)
				So(f.tracker.IsAdBreakActive(), ShouldBeFalse)
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 1)
				So(f.sdk.count("ReportAdBreakEnded"), ShouldEqual, 1)
			})
		})

		Convey("When tracking is resumed without a pause", func() {
			f.tracker.ResumeTracking()

			Convey("Then nothing is reported", func() {
				So(f.sdk.count("ReportAdBreakEnded"), ShouldEqual, 0)
			})
		})

		Convey("When a server-side break is active", func() {
			f.tracker.SSAI().ReportAdBreakStarted(nil)
			f.tracker.PauseTracking()
			f.tracker.ResumeTracking()

			Convey("Then pause and resume are refused", func() {
				So(f.sdk.count("ReportAdBreakStarted"), ShouldEqual, 1)
				So(f.tracker.SSAI().IsAdBreakActive(), ShouldBeTrue)
			})
		})
	})
}
