// Package types provides shared data structures for the explore service.
//
// This package defines the wire-level types exchanged with the upstream
// platform API and between internal components, keeping domain packages
// free of cross-dependencies.
//
// Core Types:
//   - TemplateApp: reusable app definition offered in the explore catalog
//   - AppList: catalog payload (categories + recommended apps)
//   - AppDetail: export representation of a single template
//   - ImportRequest, ImportResult: DSL import call
//   - CreationForm: user-edited metadata for a new app
//   - FilterState: current category/type/search selection
//
// Citation Types:
//   - Resources, Source: retrieval citation record rendered by the chat UI
package types
