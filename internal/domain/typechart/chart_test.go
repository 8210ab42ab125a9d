package typechart_test

import (
	"errors"
	"testing"

	"github.com/okian/raidtier/internal/domain/typechart"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEffectiveness(t *testing.T) {
	Convey("Given the default chart", t, func() {
		c := typechart.Default()

		Convey("Then every pair is defined and non-negative", func() {
			for _, a := range typechart.All() {
				for _, d := range typechart.All() {
					So(c.Multiplier(a, d), ShouldBeGreaterThanOrEqualTo, 0.0)
				}
			}
		})

		Convey("Then self pairs match the documented constants", func() {
			So(c.Effectiveness(typechart.Water, typechart.Water), ShouldEqual, 0.625)
			So(c.Effectiveness(typechart.Dragon, typechart.Dragon), ShouldEqual, 1.6)
			So(c.Effectiveness(typechart.Normal, typechart.Normal), ShouldEqual, 1.0)
			So(c.Effectiveness(typechart.Ghost, typechart.Ghost), ShouldEqual, 1.6)
		})

		Convey("Then effectiveness is directional", func() {
			So(c.Effectiveness(typechart.Fire, typechart.Grass), ShouldEqual, 1.6)
			So(c.Effectiveness(typechart.Grass, typechart.Fire), ShouldEqual, 0.625)
			So(c.Effectiveness(typechart.Normal, typechart.Ghost), ShouldEqual, 0.390625)
			So(c.Effectiveness(typechart.Ghost, typechart.Normal), ShouldEqual, 0.390625)
			So(c.Effectiveness(typechart.Fighting, typechart.Normal), ShouldEqual, 1.6)
			So(c.Effectiveness(typechart.Normal, typechart.Fighting), ShouldEqual, 1.0)
		})

		Convey("When the defender has two types", func() {
			Convey("Then multipliers compose by product", func() {
				So(c.Effectiveness(typechart.Ice, typechart.Dragon, typechart.Flying), ShouldAlmostEqual, 2.56, 1e-9)
				So(c.Effectiveness(typechart.Fire, typechart.Water, typechart.Grass), ShouldAlmostEqual, 1.0, 1e-9)
				So(c.Effectiveness(typechart.Electric, typechart.Water, typechart.Ground), ShouldAlmostEqual, 0.625, 1e-9)
			})
		})

		Convey("When the defender set is empty", func() {
			So(c.Effectiveness(typechart.Fire), ShouldEqual, 1.0)
		})

		Convey("When a type is out of range", func() {
			So(c.Multiplier(typechart.Type(200), typechart.Fire), ShouldEqual, 1.0)
		})
	})

	Convey("Given the main-series chart", t, func() {
		c := typechart.NewChart(typechart.MainSeriesScale)

		Convey("Then water against water is halved and immunities are zero", func() {
			So(c.Effectiveness(typechart.Water, typechart.Water), ShouldEqual, 0.5)
			So(c.Effectiveness(typechart.Ground, typechart.Flying), ShouldEqual, 0.0)
			So(c.Effectiveness(typechart.Ground, typechart.Flying, typechart.Fire), ShouldEqual, 0.0)
			So(c.Effectiveness(typechart.Rock, typechart.Fire, typechart.Flying), ShouldEqual, 4.0)
		})
	})
}

func TestWeakTo(t *testing.T) {
	Convey("Given the default chart", t, func() {
		c := typechart.Default()

		Convey("Then fire hits grass, ice, bug and steel", func() {
			So(c.WeakTo(typechart.Fire), ShouldResemble,
				[]typechart.Type{typechart.Grass, typechart.Ice, typechart.Bug, typechart.Steel})
		})

		Convey("Then normal falls back to the normal type", func() {
			So(c.WeakTo(typechart.Normal), ShouldResemble, []typechart.Type{typechart.Normal})
		})

		Convey("Then counters to dragon/flying include ice, rock, dragon and fairy", func() {
			got := c.SuperEffectiveAgainst(typechart.Dragon, typechart.Flying)
			So(got, ShouldResemble, []typechart.Type{
				typechart.Ice, typechart.Rock, typechart.Dragon, typechart.Fairy,
			})
		})

		Convey("Then fire is resisted by four types", func() {
			So(len(c.Resists(typechart.Fire)), ShouldEqual, 4)
		})
	})

	Convey("Given the fire matchup", t, func() {
		m := typechart.Default().Matchup(typechart.Fire)

		Convey("Then the attacking side matches WeakTo and Resists", func() {
			So(m.StrongAgainst, ShouldResemble,
				[]typechart.Type{typechart.Grass, typechart.Ice, typechart.Bug, typechart.Steel})
			So(m.ResistedBy, ShouldResemble,
				[]typechart.Type{typechart.Fire, typechart.Water, typechart.Rock, typechart.Dragon})
		})

		Convey("Then the defending side lists its weaknesses and resistances", func() {
			So(m.WeakTo, ShouldResemble,
				[]typechart.Type{typechart.Water, typechart.Ground, typechart.Rock})
			So(m.Resists, ShouldResemble, []typechart.Type{
				typechart.Fire, typechart.Grass, typechart.Ice, typechart.Bug, typechart.Steel, typechart.Fairy,
			})
		})
	})

	Convey("Given the normal matchup", t, func() {
		m := typechart.Default().Matchup(typechart.Normal)

		Convey("Then nothing is listed as hit super effectively", func() {
			So(m.StrongAgainst, ShouldBeEmpty)
			So(m.WeakTo, ShouldResemble, []typechart.Type{typechart.Fighting})
		})
	})
}

func TestParseType(t *testing.T) {
	Convey("Given type names", t, func() {
		Convey("When parsing a known name in any case", func() {
			tp, err := typechart.ParseType(" Fire ")
			So(err, ShouldBeNil)
			So(tp, ShouldEqual, typechart.Fire)
			So(tp.String(), ShouldEqual, "fire")
		})

		Convey("When parsing an unknown name", func() {
			_, err := typechart.ParseType("cosmic")
			So(errors.Is(err, typechart.ErrUnknownType), ShouldBeTrue)
		})

		Convey("When parsing a list", func() {
			ts, err := typechart.ParseTypes([]string{"dragon", "FLYING"})
			So(err, ShouldBeNil)
			So(ts, ShouldResemble, []typechart.Type{typechart.Dragon, typechart.Flying})
		})

		Convey("When round-tripping through text", func() {
			b, err := typechart.Steel.MarshalText()
			So(err, ShouldBeNil)
			var tp typechart.Type
			So(tp.UnmarshalText(b), ShouldBeNil)
			So(tp, ShouldEqual, typechart.Steel)
		})

		Convey("When resolving scales by name", func() {
			s, err := typechart.ScaleByName("main")
			So(err, ShouldBeNil)
			So(s.SuperEffective, ShouldEqual, 2.0)
			_, err = typechart.ScaleByName("gen1")
			So(errors.Is(err, typechart.ErrUnknownScale), ShouldBeTrue)
		})
	})
}
