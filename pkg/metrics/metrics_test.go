package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithMetricPrefix("x_"),
			WithLatencyBuckets([]float64{1, 10}),
			WithRefreshInterval(3*time.Second),
			WithConstLabels(map[string]string{"env": "test"}),
			WithRegisterer(registry),
		)

		Convey("Then options are applied", func() {
			So(m.RefreshInterval(), ShouldEqual, 3*time.Second)
			So(m.histogramBuckets, ShouldResemble, []float64{1, 10})
		})

		Convey("When a counter is incremented", func() {
			m.eventsIngested.Inc()

			Convey("Then it is exported with the namespace, prefix and labels", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_x_events_ingested_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithRegisterer(registry), WithEnabled(false))
		m.eventsIngested.Inc()

		Convey("Then nothing is registered on the given registry", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldBeEmpty)
		})
	})

	Convey("Given invalid option values", t, func() {
		m := NewManager(
			WithRegisterer(prometheus.NewRegistry()),
			WithNamespace(""),
			WithRefreshInterval(-time.Second),
			WithLatencyBuckets(nil),
		)

		Convey("Then defaults are kept", func() {
			So(m.namespace, ShouldEqual, "tally")
			So(m.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
		})
	})
}

// value returns the value of the first sample of name in the custom registry
// whose labels include want.
func value(t *testing.T, name string, want map[string]string) float64 {
	t.Helper()
	families, err := customRegistry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if hasLabels(m, want) {
				switch {
				case m.GetCounter() != nil:
					return m.GetCounter().GetValue()
				case m.GetGauge() != nil:
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	for k, v := range want {
		var ok bool
		for _, l := range m.GetLabel() {
			if l.GetName() == k && l.GetValue() == v {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When ingestion recorders are called", func() {
			reason := map[string]string{"reason": "unknown_kpi"}
			before := value(t, "tally_scoring_events_rejected_total", reason)
			RecordEventRejected("unknown_kpi")

			Convey("Then the labelled counter moves", func() {
				So(value(t, "tally_scoring_events_rejected_total", reason), ShouldEqual, before+1)
			})
		})

		Convey("When gauges are set", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			RecordCompositeBoard(2.5, 12)

			Convey("Then they hold the last value", func() {
				So(value(t, "tally_scoring_queue_size", nil), ShouldEqual, 7)
				So(value(t, "tally_scoring_queue_capacity", nil), ShouldEqual, 100)
				So(value(t, "tally_scoring_composite_board_staff", nil), ShouldEqual, 12)
			})
		})

		Convey("Then no recorder panics", func() {
			So(func() {
				RecordEventIngested()
				RecordEventProcessed()
				RecordEventDuplicate()
				RecordCompositeComputation(1)
				RecordAttendanceSummary()
				RecordLeaderboardQuery("points")
				UpdateRepositoryRecordsTotal(3)
				RecordRepositoryUpdateLatency(1)
				RecordRepositoryQueryLatency(1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueRejected("full")
				UpdateWorkerActiveCount(2)
				UpdateWorkerMessagesPerSecond(1.5)
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/healthz", "GET", "200", 1)
				RecordErrorByEndpoint("/x", "GET", "not_found")
				RecordErrorByComponent("queue", "full")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics handler", t, func() {
		RecordEventIngested()
		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Convey("Then it serves the custom registry", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), "tally_scoring_events_ingested_total"), ShouldBeTrue)
		})
	})
}
