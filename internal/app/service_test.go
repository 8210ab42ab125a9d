package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/raidtier/internal/adapters/http/api"
	"github.com/okian/raidtier/internal/adapters/repository"
	service "github.com/okian/raidtier/internal/app"
	"github.com/okian/raidtier/internal/config"
	"github.com/okian/raidtier/internal/domain/family"
	"github.com/okian/raidtier/internal/domain/model"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/pkg/logger"
	"github.com/okian/raidtier/pkg/metrics"
)

const datasetPath = "testdata/dataset.yaml"

func newService(mutate func(*config.Config)) *service.Service {
	cfg := config.New()
	cfg.WorkerCount = 2
	cfg.DatasetPath = datasetPath
	if mutate != nil {
		mutate(cfg)
	}
	return service.New(
		service.WithConfig(cfg),
		service.WithLogger(logger.Nop()),
		service.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))),
	)
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := newService(nil)

		Convey("When queried before Start", func() {
			_, err := svc.RankOverall(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			_, err = svc.Entity(ctx, "charizard")
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			_, err = svc.Matchup(ctx, typechart.Fire)
			So(errors.Is(err, api.ErrUnavailable), ShouldBeTrue)
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
		})

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop(ctx)

			Convey("Then the dataset is loaded", func() {
				stats := svc.GetStats(ctx)
				So(stats["started"], ShouldEqual, true)
				So(stats["entities"], ShouldEqual, 5)
				So(stats["moves"], ShouldEqual, 9)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["storedEntities"], ShouldEqual, 5)
				So(stats["queueCapacity"], ShouldEqual, 256)
				So(stats["datasetVersion"], ShouldHaveLength, 16)
				So(stats["families"].(family.Summary).Largest, ShouldEqual, 2)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop(ctx)
			So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			_, err := svc.RankPVP(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given an invalid configuration", t, func() {
		svc := newService(func(c *config.Config) { c.ChartScale = "sideways" })
		err := svc.Start(context.Background())
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})

	Convey("Given an unknown weather", t, func() {
		svc := newService(func(c *config.Config) { c.Weather = "hail" })
		err := svc.Start(context.Background())
		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})

	Convey("Given a missing dataset file", t, func() {
		svc := newService(func(c *config.Config) { c.DatasetPath = "testdata/missing.yaml" })
		So(svc.Start(context.Background()), ShouldNotBeNil)
	})
}

func TestService_Rankings(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := newService(nil)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When ranking overall", func() {
			v, err := svc.RankOverall(ctx)
			So(err, ShouldBeNil)
			So(v.Count, ShouldEqual, 5)
			So(v.Summary.Total, ShouldEqual, 5)
			for i := 1; i < len(v.Entries); i++ {
				So(v.Entries[i-1].Score, ShouldBeGreaterThanOrEqualTo, v.Entries[i].Score)
			}

			Convey("Then a repeat is served from the view cache", func() {
				again, err := svc.RankOverall(ctx)
				So(err, ShouldBeNil)
				So(again.Cached, ShouldBeTrue)
				So(again.Entries, ShouldResemble, v.Entries)
			})
		})

		Convey("When ranking counters to grass", func() {
			v, err := svc.RankCounters(ctx, typechart.Grass)
			So(err, ShouldBeNil)
			So(v.Entries[0].SpeciesID, ShouldEqual, "charizard")
			So(v.Entries[0].BestAttackType, ShouldEqual, "fire")
		})

		Convey("When ranking water attackers", func() {
			v, err := svc.RankByType(ctx, typechart.Water)
			So(err, ShouldBeNil)
			So(v.Entries[0].SpeciesID, ShouldEqual, "blastoise")
		})

		Convey("When ranking PVP", func() {
			v, err := svc.RankPVP(ctx)
			So(err, ShouldBeNil)
			So(v.Count, ShouldEqual, 2)
			So(v.Entries[0].SpeciesID, ShouldEqual, "venusaur")
		})

		Convey("When asking for one entity's performance", func() {
			p, err := svc.Performance(ctx, "Charizard", []typechart.Type{typechart.Grass})
			So(err, ShouldBeNil)
			So(p.EDPS, ShouldBeGreaterThan, 0)

			_, err = svc.Performance(ctx, "mew", nil)
			So(err, ShouldNotBeNil)
		})

		Convey("When asking for a stored entity", func() {
			e, err := svc.Entity(ctx, "Blastoise")
			So(err, ShouldBeNil)
			So(e.Dex, ShouldEqual, 9)
			So(e.Types, ShouldResemble, []typechart.Type{typechart.Water})

			_, err = svc.Entity(ctx, "mew")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing families", func() {
			fs, err := svc.Families(ctx)
			So(err, ShouldBeNil)
			ids := []string{}
			for _, f := range fs {
				ids = append(ids, f.FamilyID)
			}
			So(ids, ShouldResemble, []string{"venusaur", "family_charmander", "blastoise", "snorlax"})
			So(fs[1].Members, ShouldEqual, 2)
			So(fs[1].HighestDex, ShouldEqual, 6)
		})

		Convey("When asking for a type matchup", func() {
			m, err := svc.Matchup(ctx, typechart.Fire)
			So(err, ShouldBeNil)
			So(m.WeakTo, ShouldResemble, []typechart.Type{typechart.Water, typechart.Ground, typechart.Rock})

			_, err = svc.Matchup(ctx, typechart.Type(40))
			So(errors.Is(err, typechart.ErrUnknownType), ShouldBeTrue)
		})

		Convey("When asking for a family", func() {
			f, err := svc.Family(ctx, "charizard")
			So(err, ShouldBeNil)
			So(f.Info.FamilyID, ShouldEqual, "family_charmander")
			So(f.Family.Members, ShouldResemble, []string{"charmander", "charizard"})
			So(f.Info.Stage, ShouldEqual, family.Stage2)
			So(f.Stats.Members, ShouldEqual, 2)

			_, err = svc.Family(ctx, "mew")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Stores(t *testing.T) {
	Convey("Given a service without a dataset", t, func() {
		ctx := context.Background()
		svc := newService(func(c *config.Config) { c.DatasetPath = "" })
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("Then rankings report the missing dataset", func() {
			_, err := svc.RankOverall(ctx)
			So(errors.Is(err, repository.ErrNoDataset), ShouldBeTrue)
		})

		Convey("Then a dataset can be loaded later", func() {
			rep, err := svc.LoadDataset(ctx, datasetPath)
			So(err, ShouldBeNil)
			So(rep.Entities, ShouldEqual, 5)
			_, err = svc.RankOverall(ctx)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a SQLite backed service", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "raidtier.db")
		svc := newService(func(c *config.Config) { c.SQLitePath = path })
		So(svc.Start(ctx), ShouldBeNil)
		svc.Stop(ctx)

		Convey("Then a restart without a dataset file reuses the stored snapshot", func() {
			again := newService(func(c *config.Config) {
				c.SQLitePath = path
				c.DatasetPath = ""
			})
			So(again.Start(ctx), ShouldBeNil)
			defer again.Stop(ctx)

			v, err := again.RankOverall(ctx)
			So(err, ShouldBeNil)
			So(v.Count, ShouldEqual, 5)
		})
	})

	Convey("Given an unreachable redis", t, func() {
		ctx := context.Background()
		svc := newService(func(c *config.Config) { c.RedisAddr = "127.0.0.1:1" })

		Convey("Then the service falls back to the memory cache", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop(ctx)
			_, err := svc.RankPVP(ctx)
			So(err, ShouldBeNil)
		})
	})
}

func gaugeValue(reg *prometheus.Registry, name string) float64 {
	mfs, err := reg.Gather()
	if err != nil {
		return -1
	}
	for _, mf := range mfs {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return -1
}

func TestService_GaugeRefresh(t *testing.T) {
	Convey("Given a service sampling gauges every few milliseconds", t, func() {
		ctx := context.Background()
		reg := prometheus.NewRegistry()
		store := repository.NewMemoryStore()
		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.DatasetPath = datasetPath
		svc := service.New(
			service.WithConfig(cfg),
			service.WithStore(store),
			service.WithMetrics(metrics.NewManager(
				metrics.WithPrometheusRegistry(reg),
				metrics.WithRefreshInterval(5*time.Millisecond),
			)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)
		So(gaugeValue(reg, "raidtier_ranking_dataset_entities"), ShouldEqual, 5.0)

		Convey("When the store changes without going through the service", func() {
			So(store.Replace(ctx, &model.Dataset{Entities: []model.Entity{{SpeciesID: "mew", Dex: 151}}}), ShouldBeNil)

			Convey("Then the sampled gauges catch up", func() {
				deadline := time.Now().Add(2 * time.Second)
				for gaugeValue(reg, "raidtier_ranking_dataset_entities") != 1 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(gaugeValue(reg, "raidtier_ranking_dataset_entities"), ShouldEqual, 1.0)
				So(gaugeValue(reg, "raidtier_ranking_worker_count"), ShouldEqual, 2.0)
				So(gaugeValue(reg, "raidtier_ranking_worker_queue_depth"), ShouldEqual, 0.0)
			})
		})
	})
}
