// Package creation orchestrates instantiating a template app.
//
// The workflow is an explicit state machine:
//
//	Idle -> DialogOpen -> Submitting -> Idle (success)
//	                           |
//	                           +-> Failed -> Submitting (retry)
//
// Cancel returns to Idle from DialogOpen or Failed; cancelling while
// Submitting lets the in-flight call resolve but discards its effects.
// The Submitting state doubles as the re-entrancy guard: a second Confirm
// while one is in flight is rejected before any upstream call.
package creation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lumenapps/explore/internal/logging"
	"github.com/lumenapps/explore/internal/navigation"
	"github.com/lumenapps/explore/internal/session"
	"github.com/lumenapps/explore/internal/shared/types"
	"go.uber.org/zap"
)

// Notification kinds passed to the Notifier.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Phase is the workflow's current state tag.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDialogOpen
	PhaseSubmitting
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDialogOpen:
		return "dialog_open"
	case PhaseSubmitting:
		return "submitting"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmitting rejects a transition while a submission is in flight.
	ErrSubmitting = errors.New("a submission is already in flight")
	// ErrDialogClosed rejects Confirm when no dialog is open.
	ErrDialogClosed = errors.New("creation dialog is not open")
	// ErrDismissed reports that the dialog was dismissed while the
	// submission was in flight; its effects were discarded.
	ErrDismissed = errors.New("creation dialog was dismissed")
)

// DetailFetcher retrieves the export representation of a template.
type DetailFetcher interface {
	FetchAppDetail(ctx context.Context, appID string) (*types.AppDetail, error)
}

// Importer submits the DSL import request.
type Importer interface {
	ImportDSL(ctx context.Context, req types.ImportRequest) (*types.ImportResult, error)
}

// DependencyChecker validates an app's plugin requirements. Best-effort
// from the workflow's perspective.
type DependencyChecker interface {
	CheckPluginDependencies(ctx context.Context, appID string) error
}

// Notifier displays a user-visible toast.
type Notifier interface {
	Notify(kind, message string)
}

// Deps wires the workflow's collaborators.
type Deps struct {
	Detail   DetailFetcher
	Importer Importer
	DepCheck DependencyChecker
	Notify   Notifier
	Flags    *session.FlagSet
	Nav      navigation.Navigator

	// CanEditWorkspace selects the navigation destination (editor vs
	// viewer). The edit permission gating the create action itself is
	// checked by the presentation layer before Open is reachable.
	CanEditWorkspace bool

	// OnSuccess, if set, runs on every successful creation, independent of
	// dependency checking and navigation.
	OnSuccess func()

	// DepCheckTimeout bounds the detached dependency check. Zero selects
	// a 30s default.
	DepCheckTimeout time.Duration

	// CreationsObserver, if set, is called with "created", "failed" or
	// "rejected" per Confirm outcome.
	CreationsObserver func(result string)
	// DepChecksObserver, if set, is called with "ok" or "error" per
	// dependency check.
	DepChecksObserver func(result string)

	Log *logging.Logger
}

// Workflow runs the create-app-from-template sequence.
type Workflow struct {
	mu        sync.Mutex
	phase     Phase
	selection *types.TemplateApp
	draft     types.CreationForm
	lastErr   error
	dialogGen uint64 // bumped whenever the dialog closes; stale submissions discard effects

	deps Deps
	log  *logging.Logger
}

// New creates an idle workflow.
func New(deps Deps) *Workflow {
	log := deps.Log
	if log == nil {
		log = logging.NewDefault()
	}
	if deps.DepCheckTimeout <= 0 {
		deps.DepCheckTimeout = 30 * time.Second
	}
	return &Workflow{deps: deps, log: log.Named("creation")}
}

// Open selects a template and opens the creation dialog. Allowed from any
// state except Submitting; opening over an existing dialog replaces the
// selection and resets the draft.
func (w *Workflow) Open(app types.TemplateApp) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase == PhaseSubmitting {
		return ErrSubmitting
	}
	if w.phase != PhaseIdle {
		// A previous dialog is being replaced.
		w.dialogGen++
	}
	w.phase = PhaseDialogOpen
	w.selection = &app
	w.draft = types.CreationForm{}
	w.lastErr = nil
	return nil
}

// Cancel dismisses the dialog. From DialogOpen or Failed the workflow
// returns to Idle and the draft is discarded. During Submitting the
// in-flight call keeps running but its effects will be discarded when it
// resolves.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase == PhaseIdle {
		return
	}
	w.dialogGen++
	w.phase = PhaseIdle
	w.selection = nil
	w.draft = types.CreationForm{}
	w.lastErr = nil
}

// Confirm submits the creation with the user-edited form. The sequence is
// strictly ordered: detail fetch, import, then — on success — dialog close,
// success toast, completion callback, detached dependency check, refresh
// flag, navigation. A detail-fetch or import failure leaves the dialog open
// in Failed with the draft retained for correction.
func (w *Workflow) Confirm(ctx context.Context, form types.CreationForm) (*types.ImportResult, error) {
	w.mu.Lock()
	switch w.phase {
	case PhaseSubmitting:
		w.mu.Unlock()
		w.observeCreation("rejected")
		return nil, ErrSubmitting
	case PhaseDialogOpen, PhaseFailed:
		// Failed allows retry with edited fields.
	default:
		w.mu.Unlock()
		return nil, ErrDialogClosed
	}
	selected := *w.selection
	gen := w.dialogGen
	w.phase = PhaseSubmitting
	w.draft = form
	w.lastErr = nil
	w.mu.Unlock()

	attempt := uuid.New().String()
	w.log.Info("submitting creation",
		zap.String("attempt", attempt),
		zap.String("template_id", selected.AppID),
		zap.String("name", form.Name),
	)

	detail, err := w.deps.Detail.FetchAppDetail(ctx, selected.AppID)
	if err != nil {
		return nil, w.fail(gen, fmt.Errorf("fetch template detail: %w", err))
	}

	result, err := w.deps.Importer.ImportDSL(ctx, types.ImportRequest{
		Mode:           types.ImportModeYAMLContent,
		YAMLContent:    detail.ExportData,
		Name:           form.Name,
		IconType:       form.IconType,
		Icon:           form.Icon,
		IconBackground: form.IconBackground,
		Description:    form.Description,
	})
	if err != nil {
		return nil, w.fail(gen, fmt.Errorf("import dsl: %w", err))
	}

	w.mu.Lock()
	if w.dialogGen != gen {
		// Dialog was dismissed while the import was in flight. The app may
		// exist upstream, but none of this workflow's effects fire.
		w.mu.Unlock()
		w.log.Warn("discarding resolved submission after dismissal",
			zap.String("template_id", selected.AppID))
		return nil, ErrDismissed
	}
	w.dialogGen++
	w.phase = PhaseIdle
	w.selection = nil
	w.draft = types.CreationForm{}
	w.mu.Unlock()

	w.observeCreation("created")
	w.deps.Notify.Notify(NoticeSuccess, "App created")
	if w.deps.OnSuccess != nil {
		w.deps.OnSuccess()
	}

	if result.AppID != nil {
		appID := *result.AppID
		go w.checkDependencies(appID)
		w.deps.Flags.MarkAppListStale()
		navigation.Redirect(w.deps.CanEditWorkspace, navigation.Target{ID: appID, Mode: result.Mode}, w.deps.Nav)
	} else {
		w.deps.Flags.MarkAppListStale()
	}

	return result, nil
}

// State returns the phase plus the retained selection and draft.
func (w *Workflow) State() (Phase, *types.TemplateApp, types.CreationForm, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var sel *types.TemplateApp
	if w.selection != nil {
		cp := *w.selection
		sel = &cp
	}
	return w.phase, sel, w.draft, w.lastErr
}

// Phase returns the current phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// fail transitions to Failed (dialog stays open, draft retained) and emits
// the attempt's single error toast — unless the dialog was dismissed while
// the call was in flight, in which case everything is discarded.
func (w *Workflow) fail(gen uint64, err error) error {
	w.mu.Lock()
	if w.dialogGen != gen {
		w.mu.Unlock()
		return ErrDismissed
	}
	w.phase = PhaseFailed
	w.lastErr = err
	w.mu.Unlock()

	w.observeCreation("failed")
	w.log.Warn("app creation failed", zap.Error(err))
	w.deps.Notify.Notify(NoticeError, "App creation failed")
	return err
}

// checkDependencies runs the detached plugin dependency check. Its outcome
// never reaches the user: a creation that got this far already succeeded.
func (w *Workflow) checkDependencies(appID string) {
	ctx, cancel := context.WithTimeout(context.Background(), w.deps.DepCheckTimeout)
	defer cancel()

	if err := w.deps.DepCheck.CheckPluginDependencies(ctx, appID); err != nil {
		w.observeDepCheck("error")
		w.log.Warn("plugin dependency check failed",
			zap.String("app_id", appID),
			zap.Error(err),
		)
		return
	}
	w.observeDepCheck("ok")
}

func (w *Workflow) observeCreation(result string) {
	if w.deps.CreationsObserver != nil {
		w.deps.CreationsObserver(result)
	}
}

func (w *Workflow) observeDepCheck(result string) {
	if w.deps.DepChecksObserver != nil {
		w.deps.DepChecksObserver(result)
	}
}
