package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stats is implemented by client.Client.
type Stats interface {
	GetRemainingPoints() int
	GetRequestCounts() map[string]int
	GetTotalCosts() map[string]int
}

type Collector struct {
	stats Stats
}

func NewCollector(stats Stats) *Collector {
	return &Collector{
		stats: stats,
	}
}

func (mc *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(mc, ch)
}

func (mc *Collector) Collect(ch chan<- prometheus.Metric) {
	for repo, count := range mc.stats.GetRequestCounts() {
		ch <- prometheus.MustNewConstMetric(githubRequestsTotal, prometheus.CounterValue, float64(count), repo)
	}

	for repo, cost := range mc.stats.GetTotalCosts() {
		ch <- prometheus.MustNewConstMetric(githubCostTotal, prometheus.CounterValue, float64(cost), repo)
	}

	ch <- prometheus.MustNewConstMetric(githubPointsRemaining, prometheus.GaugeValue, float64(mc.stats.GetRemainingPoints()))
}

// WriteTextfile writes the current statistics to filename, in the format
// expected by the node_exporter textfile collector.
func WriteTextfile(filename string, stats Stats) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(stats)); err != nil {
		return err
	}

	return prometheus.WriteToTextfile(filename, registry)
}
