// Package smoke drives a running playsketch service with real analysis
// requests and checks that its metrics moved.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Token    string        // Bearer token
	TenantID string        // Tenant charged for the requests
	Images   []string      // Image references, used round-robin
	Requests int           // Number of analysis requests
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every response
}

// Result classifies one analysis response.
type Result string

const (
	ResultSuccess  Result = "success"  // 200, success=true
	ResultSoft     Result = "soft"     // 200, success=false
	ResultQuota    Result = "quota"    // 429
	ResultRejected Result = "rejected" // other 4xx
	ResultFailed   Result = "failed"   // 5xx or transport error
)

// Stats holds run statistics.
type Stats struct {
	Submitted int
	Counts    map[Result]int
	// Remaining is the lowest daily allowance reported by the service, or -1.
	Remaining int
	StartTime time.Time
	Duration  time.Duration
}
