package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithPrometheusRegistry(registry),
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("px"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
			)

			Convey("Then the options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.metricPrefix, ShouldEqual, "px")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
				So(manager.customLabels["env"], ShouldEqual, "test")
			})

			Convey("And the metrics are registered on the given registry", func() {
				manager.rowsLoaded.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_px_rows_loaded_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "salespulse")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ingestion metrics", func() {
			before := testutil.ToFloat64(globalManager.rowsLoaded)
			droppedBefore := testutil.ToFloat64(globalManager.rowsDropped)
			missingBefore := testutil.ToFloat64(globalManager.missingCells.WithLabelValues("price"))

			RecordRowsLoaded(10)
			RecordRowsLoaded(0)
			RecordRowsDropped(2)
			RecordMissingCells("price", 2)
			RecordMissingCells("price", -1)

			Convey("Then counters move by the recorded amounts", func() {
				So(testutil.ToFloat64(globalManager.rowsLoaded)-before, ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.rowsDropped)-droppedBefore, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.missingCells.WithLabelValues("price"))-missingBefore, ShouldEqual, 2)
			})
		})

		Convey("When updating the report gauges", func() {
			published := testutil.ToFloat64(globalManager.reportsPublished)
			at := time.Unix(1_700_000_000, 0)
			UpdateReport(31, 10, 1234.5, at)

			Convey("Then gauges reflect the latest report", func() {
				So(testutil.ToFloat64(globalManager.reportDays), ShouldEqual, 31)
				So(testutil.ToFloat64(globalManager.reportProducts), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.reportRevenue), ShouldEqual, 1234.5)
				So(testutil.ToFloat64(globalManager.reportLastUnix), ShouldEqual, 1_700_000_000)
				So(testutil.ToFloat64(globalManager.reportsPublished)-published, ShouldEqual, 1)
			})
		})

		Convey("When recording latencies and HTTP metrics", func() {
			So(func() {
				RecordLoadLatency(12)
				RecordAggregateLatency("daily", 1.5)
				RecordAggregateLatency("top_products", 0.7)
				RecordChartRenderLatency("daily_revenue", 30)
				RecordHTTPRequest("dashboard", "GET", "200")
				RecordHTTPRequestDuration("dashboard", "GET", "200", 3)
				RecordErrorByComponent("ingest", "missing_column")
				RecordErrorByEndpoint("top_products", "GET", "client_error")
			}, ShouldNotPanic)

			Convey("Then the HTTP counter is labelled by endpoint", func() {
				So(testutil.ToFloat64(globalManager.httpRequests.WithLabelValues("dashboard", "GET", "200")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording system metrics", func() {
			UpdateSystemMemoryUsage(4096)
			UpdateSystemGoroutineCount(7)
			RecordSystemGCPauseTime(0.2)

			Convey("Then the gauges hold the last values", func() {
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 4096)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 7)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then it exposes the pipeline metrics", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
