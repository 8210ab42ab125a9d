package config_test

import (
	"errors"
	"testing"

	"github.com/okian/raidtier/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.NumClasses, convey.ShouldEqual, 6)
			convey.So(cfg.TierLabels, convey.ShouldResemble, []string{"S+", "S", "A", "B", "C", "D"})
			convey.So(cfg.RelobbySeconds, convey.ShouldEqual, 20)
			convey.So(cfg.EnemyDPS, convey.ShouldEqual, 15)
			convey.So(cfg.ReferenceDefense, convey.ShouldEqual, 180)
			convey.So(cfg.ChartScale, convey.ShouldEqual, config.ChartScaleGo)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with broken values", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = "" },
			"zero classes":     func(c *config.Config) { c.NumClasses = 0 },
			"label mismatch":   func(c *config.Config) { c.TierLabels = []string{"S", "A"} },
			"negative relobby": func(c *config.Config) { c.RelobbySeconds = -1 },
			"zero enemy dps":   func(c *config.Config) { c.EnemyDPS = 0 },
			"zero defense":     func(c *config.Config) { c.ReferenceDefense = 0 },
			"unknown scale":    func(c *config.Config) { c.ChartScale = "gen9" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+name+" is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
