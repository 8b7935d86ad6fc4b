package domain

// UsageCounter tracks successful (non-fallback) requests per tenant and
// calendar month. Created on first increment, only ever incremented.
type UsageCounter struct {
	TenantID     string
	Month        string // "YYYY-MM"
	RequestCount int
}

// QuotaStatus is the result of evaluating a tenant's monthly quota gate.
type QuotaStatus struct {
	Allowed  bool
	Usage    int
	Limit    int
	PlanName string
}
