package network

import (
	"net/http"
	"testing"

	"github.com/anisan-cli/playtrack/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewRequest(t *testing.T) {
	Convey("When a request is built", t, func() {
		req, err := NewRequest(http.MethodPost, "http://localhost/v1/batch", []byte(`{}`))
		So(err, ShouldBeNil)

		Convey("Then it carries the user agent and the body length", func() {
			So(req.Header.Get("User-Agent"), ShouldEqual, constant.UserAgent)
			So(req.ContentLength, ShouldEqual, 2)
		})
	})
}
