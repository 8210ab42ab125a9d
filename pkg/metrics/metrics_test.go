package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given a manager built with custom options", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithMetricPrefix("x"),
			WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
			WithRefreshInterval(5*time.Second),
			WithCustomLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(registry),
		)

		Convey("Then the options are applied", func() {
			So(m.namespace, ShouldEqual, "test")
			So(m.subsystem, ShouldEqual, "unit")
			So(m.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			So(m.RefreshInterval(), ShouldEqual, 5*time.Second)
			So(m.Enabled(), ShouldBeTrue)
		})

		Convey("When a view is recorded", func() {
			m.RecordView("overall", 20*time.Millisecond)
			m.RecordView("overall", 10*time.Millisecond)

			Convey("Then the prefixed counter is registered", func() {
				So(testutil.ToFloat64(m.viewsComputed.WithLabelValues("overall")), ShouldEqual, 2.0)
				n, err := testutil.GatherAndCount(registry, "test_unit_x_views_computed_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})
	})

	Convey("Given empty option values", t, func() {
		m := NewManager(
			WithNamespace(""),
			WithHistogramBuckets(nil),
			WithCustomLabels(nil),
			WithRefreshInterval(-time.Second),
			WithPrometheusRegistry(prometheus.NewRegistry()),
		)

		Convey("Then defaults are kept", func() {
			So(m.namespace, ShouldEqual, "raidtier")
			So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			So(m.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a dedicated manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When engine events are recorded", func() {
			m.RecordSkipped("validation")
			m.RecordSkipped("validation")
			m.RecordSkipped("insufficient_data")
			m.RecordCache(CacheHit)
			m.RecordCache(CacheMiss)
			m.RecordCache(CacheMiss)
			m.RecordDegenerate("by_type")
			m.RecordJenks(time.Millisecond)
			m.UpdateDataset(120, 300)
			m.UpdateWorkerCount(4)
			m.UpdateQueueDepth(7)
			m.RecordWorkerTask(TaskOK, time.Millisecond)
			m.RecordHTTPRequest("/rankings/overall", "GET", "200", time.Millisecond)

			Convey("Then the counters reflect them", func() {
				So(testutil.ToFloat64(m.entitiesSkipped.WithLabelValues("validation")), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.cacheRequests.WithLabelValues(CacheMiss)), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.degenerateViews.WithLabelValues("by_type")), ShouldEqual, 1.0)
				So(testutil.ToFloat64(m.datasetEntities), ShouldEqual, 120.0)
				So(testutil.ToFloat64(m.datasetMoves), ShouldEqual, 300.0)
				So(testutil.ToFloat64(m.workerCount), ShouldEqual, 4.0)
				So(testutil.ToFloat64(m.queueDepth), ShouldEqual, 7.0)
				So(testutil.ToFloat64(m.workerTasks.WithLabelValues(TaskOK)), ShouldEqual, 1.0)
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/rankings/overall", "GET", "200")), ShouldEqual, 1.0)
			})
		})

		Convey("When only the entity count is sampled", func() {
			m.UpdateDataset(120, 300)
			m.UpdateEntities(80)

			Convey("Then the move gauge is left alone", func() {
				So(testutil.ToFloat64(m.datasetEntities), ShouldEqual, 80.0)
				So(testutil.ToFloat64(m.datasetMoves), ShouldEqual, 300.0)
			})
		})

		Convey("When the manager is disabled", func() {
			m.enabled = false
			m.RecordSkipped("validation")

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(m.entitiesSkipped.WithLabelValues("validation")), ShouldEqual, 0.0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers record without panicking", func() {
			So(func() {
				RecordView("counters", time.Millisecond)
				RecordSkipped("validation")
				RecordJenks(time.Microsecond)
				RecordDegenerate("overall")
				RecordCache(CacheHit)
				UpdateDataset(1, 2)
				UpdateWorkerCount(2)
				RecordWorkerTask(TaskFailed, time.Millisecond)
				RecordHTTPRequest("/healthz", "GET", "200", time.Millisecond)
			}, ShouldNotPanic)
			So(Default(), ShouldNotBeNil)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics recorded concurrently", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					m.RecordView("overall", time.Microsecond)
				}
				done <- true
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		So(testutil.ToFloat64(m.viewsComputed.WithLabelValues("overall")), ShouldEqual, 1000.0)
	})
}
