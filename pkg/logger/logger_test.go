package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)
			So(Get(), ShouldNotBeNil)
			So(Sync(), ShouldBeNil)
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing into a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When a named logger writes structured fields", func() {
			Named("ranking").Info(ctx, "view computed",
				String("view", "overall"),
				Int("count", 3),
				Float64("score", 1.5),
				Bool("degenerate", false),
				Duration("took", 2*time.Millisecond))

			Convey("Then the record carries every field", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "view computed")
				So(rec["component"], ShouldEqual, "ranking")
				So(rec["view"], ShouldEqual, "overall")
				So(rec["count"], ShouldEqual, 3.0)
				So(rec["took"], ShouldEqual, "2ms")
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level is raised above info", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "dropped")
			So(buf.Len(), ShouldEqual, 0)
			So(SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)
		for _, l := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(l), ShouldBeNil)
		}
		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "verbose"), ShouldBeTrue)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()
		Convey("Then logging is a no-op", func() {
			So(func() { l.Named("x").Error(context.Background(), "ignored", Error(nil)) }, ShouldNotPanic)
		})
	})
}
