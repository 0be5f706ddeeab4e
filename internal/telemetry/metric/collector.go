package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/xlremote-go/internal/infra/buildinfo"
)

// Collector exports values read at scrape time.
type Collector struct {
	info      buildinfo.Info
	functions func() int

	buildInfoDesc *prometheus.Desc
	functionsDesc *prometheus.Desc
}

// NewCollector creates a collector for the build information and the
// number of registered custom functions.
func NewCollector(info buildinfo.Info, functions func() int) *Collector {
	return &Collector{
		info:      info,
		functions: functions,
		buildInfoDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information of the running server.",
			[]string{"version", "commit", "go_version"}, nil,
		),
		functionsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "custom_functions"),
			"Number of registered custom functions.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildInfoDesc
	ch <- c.functionsDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.buildInfoDesc, prometheus.GaugeValue, 1,
		c.info.Version, c.info.Commit, c.info.GoVersion)

	n := 0
	if c.functions != nil {
		n = c.functions()
	}
	ch <- prometheus.MustNewConstMetric(c.functionsDesc, prometheus.GaugeValue, float64(n))
}
