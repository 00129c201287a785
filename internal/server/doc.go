// Package server wires the explore service together: configuration,
// logging, metrics, the upstream client, the catalog store, the creation
// workflow, the notification hub, and the HTTP routes.
package server
