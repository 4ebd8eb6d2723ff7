package domain

// CustomerShare is one row of the launches-per-customer report. A mission
// with several customers counts once per customer, so shares can sum past
// 100%.
type CustomerShare struct {
	Customer string  `json:"customer"`
	Launches int     `json:"launches"`
	SharePct float64 `json:"share_pct"`
}

// YearlySuccessRate aggregates mission outcomes per calendar year.
type YearlySuccessRate struct {
	Year           int     `json:"year"`
	TotalLaunches  int     `json:"total_launches"`
	Successes      int     `json:"successes"`
	SuccessRatePct float64 `json:"success_rate_pct"`
}

// OrbitPayloadStats summarises payload mass per orbit type.
type OrbitPayloadStats struct {
	OrbitType    string  `json:"orbit_type"`
	Launches     int     `json:"launches"`
	AvgPayloadKg float64 `json:"avg_payload_kg"`
	MinPayloadKg float64 `json:"min_payload_kg"`
	MaxPayloadKg float64 `json:"max_payload_kg"`
}

// SiteUsage is one row of the launch-site utilization report.
type SiteUsage struct {
	Site     string  `json:"launch_site"`
	Launches int     `json:"launches"`
	SharePct float64 `json:"share_pct"`
}
