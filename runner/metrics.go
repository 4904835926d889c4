package runner

import (
	"github.com/ochinchina/gotox/types"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gotox"

type envCollector struct {
	upDesc         *prometheus.Desc
	exitStatusDesc *prometheus.Desc
	durationDesc   *prometheus.Desc
	runsTotalDesc  *prometheus.Desc
	runner         *Runner
}

// NewEnvCollector returns a Collector exposing the environment run statistics.
func NewEnvCollector(runner *Runner) prometheus.Collector {
	var (
		subsystem  = "env"
		labelNames = []string{"name"}
	)

	return &envCollector{
		upDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "up"),
			"Environment last run succeeded",
			labelNames,
			nil,
		),
		exitStatusDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "exit_status"),
			"Environment last exit status",
			labelNames,
			nil,
		),
		durationDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "run_duration_seconds"),
			"Environment last run duration",
			labelNames,
			nil,
		),
		runsTotalDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "runs_total"),
			"Environment runs since start",
			labelNames,
			nil,
		),
		runner: runner,
	}
}

// Describe generates prometheus metric description
func (c *envCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.upDesc
	ch <- c.exitStatusDesc
	ch <- c.durationDesc
	ch <- c.runsTotalDesc
}

// Collect gathers prometheus metrics for all known environments
func (c *envCollector) Collect(ch chan<- prometheus.Metric) {
	c.runner.ForEachResult(func(result *types.EnvResult, runsTotal int64) {
		labels := []string{result.Name}

		up := 0.0
		if result.Succeeded() {
			up = 1.0
		}
		ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, up, labels...)
		ch <- prometheus.MustNewConstMetric(c.exitStatusDesc, prometheus.GaugeValue, float64(result.ExitCode), labels...)
		ch <- prometheus.MustNewConstMetric(c.durationDesc, prometheus.GaugeValue, result.Duration.Seconds(), labels...)
		ch <- prometheus.MustNewConstMetric(c.runsTotalDesc, prometheus.CounterValue, float64(runsTotal), labels...)
	})
}
