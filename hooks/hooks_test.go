package hooks

import (
	"errors"
	"testing"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/anisan-cli/playtrack/media"
	"github.com/anisan-cli/playtrack/metadata"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func init() {
	filesystem.SetMemMapFs()
}

func write(path, script string) {
	So(afero.WriteFile(filesystem.API(), path, []byte(script), 0o644), ShouldBeNil)
	forget(path)
}

func TestHook(t *testing.T) {
	Convey("Given a script deriving metadata from the source", t, func() {
		write("/hooks/meta.lua", `
function metadata(source)
  local live = string.find(source.url, "/live/", 1, true) ~= nil
  return {
    asset_name = "[" .. source.custom.channel .. "] " .. source.title,
    stream_type = live and "live" or "vod",
    duration = 120,
    custom = { channel = source.custom.channel, viewerGroup = "beta" },
  }
end
`)

		hook, err := Load("/hooks/meta.lua")
		So(err, ShouldBeNil)
		Reset(hook.Close)

		Convey("When it is called for a live source", func() {
			overrides, err := hook.Overrides(media.Source{
				Title:      "News",
				URL:        "https://cdn.example.com/live/news.m3u8",
				CustomData: map[string]string{"channel": "one"},
			})

			Convey("Then the returned table becomes overrides", func() {
				So(err, ShouldBeNil)
				So(*overrides.AssetName, ShouldEqual, "[one] News")
				So(*overrides.StreamType, ShouldEqual, metadata.StreamLive)
				So(*overrides.Duration, ShouldEqual, 120)
				So(overrides.ViewerID, ShouldBeNil)
				So(overrides.Custom, ShouldResemble, map[string]string{"channel": "one", "viewerGroup": "beta"})
			})
		})
	})

	Convey("Given a script returning nil", t, func() {
		write("/hooks/nil.lua", `function metadata(source) return nil end`)

		hook, err := Load("/hooks/nil.lua")
		So(err, ShouldBeNil)
		Reset(hook.Close)

		Convey("Then no overrides are produced", func() {
			overrides, err := hook.Overrides(media.Source{})
			So(err, ShouldBeNil)
			So(overrides, ShouldResemble, metadata.Overrides{})
		})
	})

	Convey("Given a script with an unknown stream type", t, func() {
		write("/hooks/bad.lua", `function metadata(source) return { stream_type = "dvr" } end`)

		hook, err := Load("/hooks/bad.lua")
		So(err, ShouldBeNil)
		Reset(hook.Close)

		Convey("Then calling it fails", func() {
			_, err := hook.Overrides(media.Source{})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a script without the metadata function", t, func() {
		write("/hooks/empty.lua", `local x = 1`)

		Convey("Then loading fails", func() {
			_, err := Load("/hooks/empty.lua")
			So(errors.Is(err, ErrNoMetadataFn), ShouldBeTrue)
		})
	})

	Convey("Given a script with a syntax error", t, func() {
		write("/hooks/broken.lua", `function metadata(`)

		Convey("Then loading fails", func() {
			_, err := Load("/hooks/broken.lua")
			So(err, ShouldNotBeNil)
		})
	})
}
