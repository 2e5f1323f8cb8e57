package statistics

import (
	"github.com/markusressel/alt2go/internal/control_loop"
	"github.com/markusressel/alt2go/internal/controller"
	"github.com/markusressel/alt2go/internal/util"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "field"

type ControllerCollector struct {
	controllers []controller.FieldController

	duty         *prometheus.Desc
	dutyFraction *prometheus.Desc
	enabled      *prometheus.Desc
	ticks        *prometheus.Desc
	sensorErrors *prometheus.Desc
	events       *prometheus.Desc
	trend        *prometheus.Desc
}

func NewControllerCollector(controllers []controller.FieldController) *ControllerCollector {
	return &ControllerCollector{
		controllers: controllers,
		duty: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "duty"),
			"Current duty [0..255] applied to the field coil",
			[]string{"id"}, nil,
		),
		dutyFraction: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "duty_fraction"),
			"Current duty applied to the field coil as a fraction of the maximum",
			[]string{"id"}, nil,
		),
		enabled: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "enabled"),
			"Whether regulation of the field is enabled",
			[]string{"id"}, nil,
		),
		ticks: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "ticks_total"),
			"Number of control ticks of the field controller",
			[]string{"id"}, nil,
		),
		sensorErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "sensor_errors_total"),
			"Number of ticks where the field was switched off due to a sensor error",
			[]string{"id"}, nil,
		),
		events: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "events_total"),
			"Number of regulator events per event type",
			[]string{"id", "event"}, nil,
		),
		trend: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "trend"),
			"Current trend per tick of a regulator input",
			[]string{"id", "metric"}, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.duty
	ch <- collector.dutyFraction
	ch <- collector.enabled
	ch <- collector.ticks
	ch <- collector.sensorErrors
	ch <- collector.events
	ch <- collector.trend
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, contr := range collector.controllers {
		status := contr.GetStatus()
		stats := contr.GetStatistics()
		fieldId := status.Field

		enabled := 0.0
		if status.Enabled {
			enabled = 1
		}

		ch <- prometheus.MustNewConstMetric(collector.duty, prometheus.GaugeValue, float64(status.Duty), fieldId)
		ch <- prometheus.MustNewConstMetric(collector.dutyFraction, prometheus.GaugeValue, util.DutyToFraction(status.Duty), fieldId)
		ch <- prometheus.MustNewConstMetric(collector.enabled, prometheus.GaugeValue, enabled, fieldId)
		ch <- prometheus.MustNewConstMetric(collector.ticks, prometheus.CounterValue, float64(stats.Ticks), fieldId)
		ch <- prometheus.MustNewConstMetric(collector.sensorErrors, prometheus.CounterValue, float64(stats.SensorErrors), fieldId)

		for _, event := range []control_loop.Event{
			control_loop.EventOvertempDerate,
			control_loop.EventOvercurrent,
			control_loop.EventTempRisingFast,
			control_loop.EventAmpRisingFast,
			control_loop.EventVoltageDropping,
		} {
			ch <- prometheus.MustNewConstMetric(collector.events, prometheus.CounterValue, float64(stats.EventCounts[event]), fieldId, string(event))
		}

		for _, metric := range util.SortedKeys(status.Trends) {
			ch <- prometheus.MustNewConstMetric(collector.trend, prometheus.GaugeValue, status.Trends[metric], fieldId, metric)
		}
	}
}
