// Package navigation resolves the destination route for a created app.
package navigation

import (
	"fmt"
	"sync"

	"github.com/lumenapps/explore/internal/shared/types"
)

// Navigator receives the resolved route. The HTTP layer records it for the
// response; an embedded UI would push it onto its router.
type Navigator interface {
	Push(path string)
}

// Target identifies the app to route to.
type Target struct {
	ID   string
	Mode types.AppMode
}

// Redirect resolves the destination for a newly created app and hands it to
// the navigator. Non-editors land on the app overview; editors land on the
// workflow canvas for workflow and advanced-chat apps and on the
// configuration page otherwise.
func Redirect(canEditWorkspace bool, target Target, nav Navigator) {
	nav.Push(RouteFor(canEditWorkspace, target))
}

// RouteFor computes the destination path without side effects.
func RouteFor(canEditWorkspace bool, target Target) string {
	if !canEditWorkspace {
		return fmt.Sprintf("/app/%s/overview", target.ID)
	}
	switch target.Mode {
	case types.ModeWorkflow, types.ModeAdvancedChat:
		return fmt.Sprintf("/app/%s/workflow", target.ID)
	default:
		return fmt.Sprintf("/app/%s/configuration", target.ID)
	}
}

// Recorder is a Navigator that remembers the most recent route.
type Recorder struct {
	mu   sync.Mutex
	last string
}

// Push records the route.
func (r *Recorder) Push(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = path
}

// Last returns the most recently pushed route.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
