package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	githubPointsRemaining = prometheus.NewDesc(
		"github_issues_api_points_remaining",
		"Number of currently remaining GitHub API points",
		nil,
		nil,
	)

	githubRequestsTotal = prometheus.NewDesc(
		"github_issues_api_requests_total",
		"Total number of requests against the GitHub API",
		[]string{"repo"},
		nil,
	)

	githubCostTotal = prometheus.NewDesc(
		"github_issues_api_cost_total",
		"Total GitHub API points spent on requests",
		[]string{"repo"},
		nil,
	)
)
