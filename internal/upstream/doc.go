// Package upstream is the REST client for the platform console API.
//
// Idempotent catalog reads go through a retrying HTTP client; the import
// and dependency-check writes go through a resty client without retries so
// a flaky network cannot duplicate an app creation. All calls share one
// circuit breaker.
package upstream
