// Package http exposes the explore service's REST surface: the filtered
// catalog, the filter-state session endpoints, and the creation workflow's
// confirm/cancel entry points.
package http
