// Package monitoring provides Prometheus metrics and the request
// instrumentation middleware.
package monitoring
