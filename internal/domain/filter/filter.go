// Package filter reduces the template-app catalog to the visible list.
//
// Both stages are pure: the result is always an order-preserving
// sub-sequence of the input, and filtering never mutates the catalog.
package filter

import (
	"strings"

	"github.com/lumenapps/explore/internal/shared/types"
)

// Apps returns the members of apps that satisfy both the category and the
// type predicate. category equal to allSentinel disables the category
// predicate; an empty typ disables the type predicate. Input order is
// preserved.
func Apps(apps []types.TemplateApp, category string, typ types.AppType, allSentinel string) []types.TemplateApp {
	if category == allSentinel && typ == types.TypeAll {
		return apps
	}

	out := make([]types.TemplateApp, 0, len(apps))
	for _, app := range apps {
		if category != allSentinel && app.Category != category {
			continue
		}
		if !matchesType(app.Mode, typ) {
			continue
		}
		out = append(out, app)
	}
	return out
}

// Search narrows an already-filtered list by case-insensitive substring
// match on the display name. An empty term or empty list is a no-op and
// returns the input slice unchanged.
func Search(apps []types.TemplateApp, term string) []types.TemplateApp {
	if term == "" || len(apps) == 0 {
		return apps
	}

	lower := strings.ToLower(term)
	out := make([]types.TemplateApp, 0, len(apps))
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Name), lower) {
			out = append(out, app)
		}
	}
	return out
}

// matchesType maps the coarse filter buckets onto app modes. Any
// unrecognized non-empty value is treated as the workflow bucket, matching
// the upstream console's behavior.
func matchesType(mode types.AppMode, typ types.AppType) bool {
	switch typ {
	case types.TypeAll:
		return true
	case types.TypeChatbot:
		return mode == types.ModeChat || mode == types.ModeAdvancedChat
	case types.TypeAgent:
		return mode == types.ModeAgentChat
	default:
		return mode == types.ModeWorkflow
	}
}
