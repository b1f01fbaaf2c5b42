package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("Use should install an arbitrary backend", func() {
			Use(afero.NewReadOnlyFs(afero.NewMemMapFs()))
			So(API().WriteFile("/x", []byte("x"), 0o644), ShouldNotBeNil)
			SetMemMapFs()
		})
	})
}

func TestGacheFs(t *testing.T) {
	Convey("GacheFs writes through the active backend", t, func() {
		SetMemMapFs()
		var fs GacheFs
		So(fs.MkdirAll("/state", 0o755), ShouldBeNil)

		f, err := fs.OpenFile("/state/a.json", os.O_RDWR|os.O_CREATE, 0o644)
		So(err, ShouldBeNil)
		_, err = f.Write([]byte("{}"))
		So(err, ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		data, err := API().ReadFile("/state/a.json")
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "{}")
	})
}
