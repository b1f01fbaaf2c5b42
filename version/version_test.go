package version

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"1.2.3", "1.2.3", 0},
			{"v1.2.4", "1.2.3", 1},
			{"0.9.9", "1.0.0", -1},
			{"0.35.0", "0.33.0", 1},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}

		_, err := Compare("one", "1.0.0")
		So(err, ShouldNotBeNil)
	})
}

func TestCheckMPV(t *testing.T) {
	Convey("Given mpv version strings", t, func() {
		Convey("Then release numbers are extracted", func() {
			parsed, err := ParseMPV("mpv v0.36.0-dirty Copyright © 2000-2023 mpv/MPlayer/mplayer2 projects")
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, "0.36.0")
		})

		Convey("Then new builds pass", func() {
			So(CheckMPV("mpv 0.37.0"), ShouldBeNil)
			So(CheckMPV("mpv 0.33.0"), ShouldBeNil)
		})

		Convey("Then old builds are refused", func() {
			err := CheckMPV("mpv 0.32.0")
			So(errors.Is(err, ErrUnsupportedPlayer), ShouldBeTrue)
		})

		Convey("Then git builds without a release pass", func() {
			So(CheckMPV("mpv git-2023-11-01"), ShouldBeNil)
		})
	})
}
