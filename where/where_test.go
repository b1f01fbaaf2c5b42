package where

import (
	"path/filepath"
	"testing"

	"github.com/anisan-cli/playtrack/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Journal()", func() {
			path := Journal()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			So(filepath.Dir(path), ShouldEqual, Cache())
		})

		Convey("Queue() and History() are files inside their roots", func() {
			So(filepath.Dir(Queue()), ShouldEqual, Cache())
			So(filepath.Dir(History()), ShouldEqual, Config())
		})
	})
}
