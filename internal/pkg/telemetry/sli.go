package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricDatasetFreshness = "missions.data_age_seconds"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricEstimatesServed    = "business.capacity_estimates_served"
	MetricOutOfBoundsQueries = "business.out_of_bounds_queries"
)
