package model_test

import (
	"testing"
	"time"

	model "github.com/okian/hourlyprobe/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRow(t *testing.T) {
	convey.Convey("Given a row decoded from JSON", t, func() {
		row := model.Row{
			"timestamp": "2025-01-01T01:00:00+00:00",
			"latitude":  40.0,
			"longitude": -74.0,
			"wind":      3.2,
		}

		convey.Convey("Then the structural fields are readable", func() {
			ts, ok := row.Timestamp()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ts.Equal(time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)

			lat, ok := row.Latitude()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(lat, convey.ShouldEqual, 40.0)

			lon, ok := row.Longitude()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(lon, convey.ShouldEqual, -74.0)
		})
	})

	convey.Convey("Given a row without coordinates", t, func() {
		row := model.Row{"timestamp": time.Unix(0, 0).UTC()}

		convey.Convey("Then the accessors report absence instead of failing", func() {
			_, ok := row.Latitude()
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = row.Longitude()
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = row.Timestamp()
			convey.So(ok, convey.ShouldBeTrue)
		})
	})
}

func TestRowFilter(t *testing.T) {
	convey.Convey("Given a filter without a limit", t, func() {
		f := model.RowFilter{}

		convey.Convey("Then the default cap applies", func() {
			convey.So(f.EffectiveLimit(), convey.ShouldEqual, 1000)
		})
	})

	convey.Convey("Given coordinates to format", t, func() {
		convey.So(model.FormatCoordinate(40.0), convey.ShouldEqual, "40")
		convey.So(model.FormatCoordinate(-74.0125), convey.ShouldEqual, "-74.0125")
	})
}
