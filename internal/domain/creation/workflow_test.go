package creation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lumenapps/explore/internal/navigation"
	"github.com/lumenapps/explore/internal/session"
	"github.com/lumenapps/explore/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness records every collaborator interaction in call order.
type harness struct {
	mu    sync.Mutex
	calls []string

	detail    *types.AppDetail
	detailErr error

	importResult *types.ImportResult
	importErr    error
	importGate   chan struct{} // when set, ImportDSL blocks until closed
	lastImport   types.ImportRequest

	depCheckErr  error
	depCheckDone chan struct{}

	flags    *session.FlagSet
	recorder *navigation.Recorder
}

func newHarness() *harness {
	appID := "app-123"
	return &harness{
		detail:       &types.AppDetail{ExportData: "app:\n  name: Draft Helper\n", Mode: types.ModeChat},
		importResult: &types.ImportResult{AppID: &appID, Mode: types.ModeChat},
		depCheckDone: make(chan struct{}, 4),
		flags:        session.NewFlagSet(),
		recorder:     &navigation.Recorder{},
	}
}

func (h *harness) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *harness) callLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.calls))
	copy(out, h.calls)
	return out
}

func (h *harness) count(call string) int {
	n := 0
	for _, c := range h.callLog() {
		if c == call {
			n++
		}
	}
	return n
}

func (h *harness) FetchAppDetail(ctx context.Context, appID string) (*types.AppDetail, error) {
	h.record("detail:" + appID)
	if h.detailErr != nil {
		return nil, h.detailErr
	}
	return h.detail, nil
}

func (h *harness) ImportDSL(ctx context.Context, req types.ImportRequest) (*types.ImportResult, error) {
	h.record("import")
	h.mu.Lock()
	h.lastImport = req
	gate := h.importGate
	h.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if h.importErr != nil {
		return nil, h.importErr
	}
	return h.importResult, nil
}

func (h *harness) CheckPluginDependencies(ctx context.Context, appID string) error {
	h.record("depcheck:" + appID)
	err := h.depCheckErr
	h.depCheckDone <- struct{}{}
	return err
}

func (h *harness) Notify(kind, message string) {
	h.record("notify:" + kind)
}

func (h *harness) workflow(extra func(*Deps)) *Workflow {
	deps := Deps{
		Detail:           h,
		Importer:         h,
		DepCheck:         h,
		Notify:           h,
		Flags:            h.flags,
		Nav:              h.recorder,
		CanEditWorkspace: true,
		DepCheckTimeout:  time.Second,
	}
	if extra != nil {
		extra(&deps)
	}
	return New(deps)
}

func template() types.TemplateApp {
	return types.TemplateApp{
		AppID:    "tpl-1",
		Mode:     types.ModeChat,
		Name:     "Draft Helper",
		Category: "Writing",
		IconType: "emoji",
		Icon:     "✍️",
	}
}

func (h *harness) waitDepCheck(t *testing.T) {
	t.Helper()
	select {
	case <-h.depCheckDone:
	case <-time.After(2 * time.Second):
		t.Fatal("dependency check never ran")
	}
}

func TestConfirmSuccess(t *testing.T) {
	h := newHarness()
	var created []string
	var onSuccess int
	w := h.workflow(func(d *Deps) {
		d.CreationsObserver = func(result string) { created = append(created, result) }
		d.OnSuccess = func() { onSuccess++ }
	})

	require.NoError(t, w.Open(template()))
	assert.Equal(t, PhaseDialogOpen, w.Phase())

	form := types.CreationForm{Name: "My Draft Helper", IconType: "emoji", Icon: "✍️"}
	result, err := w.Confirm(context.Background(), form)
	require.NoError(t, err)
	require.NotNil(t, result.AppID)
	assert.Equal(t, "app-123", *result.AppID)

	h.waitDepCheck(t)

	// Detail fetch precedes import precedes the success toast.
	calls := h.callLog()
	require.GreaterOrEqual(t, len(calls), 3)
	assert.Equal(t, "detail:tpl-1", calls[0])
	assert.Equal(t, "import", calls[1])
	assert.Equal(t, "notify:"+NoticeSuccess, calls[2])
	assert.Equal(t, 1, h.count("notify:"+NoticeSuccess))
	assert.Equal(t, 1, h.count("depcheck:app-123"))

	// The import carried the export payload plus the edited metadata.
	assert.Equal(t, types.ImportModeYAMLContent, h.lastImport.Mode)
	assert.Equal(t, h.detail.ExportData, h.lastImport.YAMLContent)
	assert.Equal(t, "My Draft Helper", h.lastImport.Name)

	// Completion effects: callback, stale flag, editor navigation.
	assert.Equal(t, 1, onSuccess)
	v, ok := h.flags.Peek(session.NeedRefreshAppListKey)
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, "/app/app-123/configuration", h.recorder.Last())

	assert.Equal(t, []string{"created"}, created)
	assert.Equal(t, PhaseIdle, w.Phase())
}

func TestConfirmSuccessWithoutAppID(t *testing.T) {
	h := newHarness()
	h.importResult = &types.ImportResult{Mode: types.ModeChat}
	w := h.workflow(nil)

	require.NoError(t, w.Open(template()))
	result, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
	require.NoError(t, err)
	assert.Nil(t, result.AppID)

	// The list still needs revalidation, but there is nothing to check or
	// navigate to.
	_, ok := h.flags.Peek(session.NeedRefreshAppListKey)
	assert.True(t, ok)
	assert.Equal(t, "", h.recorder.Last())
	assert.Equal(t, 0, h.count("depcheck:app-123"))
}

func TestConfirmRequiresOpenDialog(t *testing.T) {
	h := newHarness()
	w := h.workflow(nil)

	_, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
	assert.ErrorIs(t, err, ErrDialogClosed)
	assert.Empty(t, h.callLog())
}

func TestConfirmRejectsWhileSubmitting(t *testing.T) {
	h := newHarness()
	h.importGate = make(chan struct{})
	var created []string
	var mu sync.Mutex
	w := h.workflow(func(d *Deps) {
		d.CreationsObserver = func(result string) {
			mu.Lock()
			created = append(created, result)
			mu.Unlock()
		}
	})

	require.NoError(t, w.Open(template()))

	done := make(chan error, 1)
	go func() {
		_, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
		done <- err
	}()

	waitForPhase(t, w, PhaseSubmitting)

	_, err := w.Confirm(context.Background(), types.CreationForm{Name: "Y"})
	assert.ErrorIs(t, err, ErrSubmitting)
	assert.ErrorIs(t, w.Open(template()), ErrSubmitting)

	close(h.importGate)
	require.NoError(t, <-done)
	h.waitDepCheck(t)

	// The guarded attempt never reached the upstream.
	assert.Equal(t, 1, h.count("import"))
	assert.Equal(t, 1, h.count("notify:"+NoticeSuccess))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"rejected", "created"}, created)
}

func TestConfirmFailureRetainsDraft(t *testing.T) {
	h := newHarness()
	h.importErr = errors.New("upstream rejected the import")
	var created []string
	w := h.workflow(func(d *Deps) {
		d.CreationsObserver = func(result string) { created = append(created, result) }
	})

	require.NoError(t, w.Open(template()))
	form := types.CreationForm{Name: "Edited Name", Icon: "📝"}
	_, err := w.Confirm(context.Background(), form)
	require.Error(t, err)

	phase, sel, draft, lastErr := w.State()
	assert.Equal(t, PhaseFailed, phase)
	require.NotNil(t, sel)
	assert.Equal(t, "tpl-1", sel.AppID)
	assert.Equal(t, form, draft)
	assert.Error(t, lastErr)

	// Exactly one error toast, no success effects.
	assert.Equal(t, 1, h.count("notify:"+NoticeError))
	assert.Equal(t, 0, h.count("notify:"+NoticeSuccess))
	_, ok := h.flags.Peek(session.NeedRefreshAppListKey)
	assert.False(t, ok)
	assert.Equal(t, "", h.recorder.Last())
	assert.Equal(t, []string{"failed"}, created)

	// Failed permits a corrected retry.
	h.importErr = nil
	_, err = w.Confirm(context.Background(), types.CreationForm{Name: "Second Try"})
	require.NoError(t, err)
	h.waitDepCheck(t)
	assert.Equal(t, PhaseIdle, w.Phase())
}

func TestConfirmDetailFetchFailure(t *testing.T) {
	h := newHarness()
	h.detailErr = errors.New("detail unavailable")
	w := h.workflow(nil)

	require.NoError(t, w.Open(template()))
	_, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
	require.Error(t, err)

	assert.Equal(t, PhaseFailed, w.Phase())
	assert.Equal(t, 0, h.count("import"))
	assert.Equal(t, 1, h.count("notify:"+NoticeError))
}

func TestCancelDuringSubmitDiscardsEffects(t *testing.T) {
	h := newHarness()
	h.importGate = make(chan struct{})
	w := h.workflow(nil)

	require.NoError(t, w.Open(template()))

	done := make(chan error, 1)
	go func() {
		_, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
		done <- err
	}()

	waitForPhase(t, w, PhaseSubmitting)
	w.Cancel()
	close(h.importGate)

	assert.ErrorIs(t, <-done, ErrDismissed)

	// No toast, no flag, no navigation, no dependency check.
	assert.Equal(t, 0, h.count("notify:"+NoticeSuccess))
	assert.Equal(t, 0, h.count("notify:"+NoticeError))
	_, ok := h.flags.Peek(session.NeedRefreshAppListKey)
	assert.False(t, ok)
	assert.Equal(t, "", h.recorder.Last())
	assert.Equal(t, 0, h.count("depcheck:app-123"))
	assert.Equal(t, PhaseIdle, w.Phase())
}

func TestCancelFromDialogOpen(t *testing.T) {
	h := newHarness()
	w := h.workflow(nil)

	require.NoError(t, w.Open(template()))
	w.Cancel()

	phase, sel, draft, lastErr := w.State()
	assert.Equal(t, PhaseIdle, phase)
	assert.Nil(t, sel)
	assert.Equal(t, types.CreationForm{}, draft)
	assert.NoError(t, lastErr)
}

func TestOpenReplacesExistingDialog(t *testing.T) {
	h := newHarness()
	w := h.workflow(nil)

	require.NoError(t, w.Open(template()))
	other := template()
	other.AppID = "tpl-2"
	require.NoError(t, w.Open(other))

	phase, sel, _, _ := w.State()
	assert.Equal(t, PhaseDialogOpen, phase)
	require.NotNil(t, sel)
	assert.Equal(t, "tpl-2", sel.AppID)
}

func TestViewerNavigatesToOverview(t *testing.T) {
	h := newHarness()
	w := h.workflow(func(d *Deps) { d.CanEditWorkspace = false })

	require.NoError(t, w.Open(template()))
	_, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
	require.NoError(t, err)
	h.waitDepCheck(t)

	assert.Equal(t, "/app/app-123/overview", h.recorder.Last())
}

func TestDependencyCheckOutcomeIsObservedNotSurfaced(t *testing.T) {
	h := newHarness()
	h.depCheckErr = errors.New("plugin missing")
	results := make(chan string, 1)
	w := h.workflow(func(d *Deps) {
		d.DepChecksObserver = func(result string) { results <- result }
	})

	require.NoError(t, w.Open(template()))
	_, err := w.Confirm(context.Background(), types.CreationForm{Name: "X"})
	require.NoError(t, err)
	h.waitDepCheck(t)

	select {
	case r := <-results:
		assert.Equal(t, "error", r)
	case <-time.After(2 * time.Second):
		t.Fatal("dependency check result never observed")
	}

	// The creation still succeeded from the user's perspective.
	assert.Equal(t, 1, h.count("notify:"+NoticeSuccess))
	assert.Equal(t, 0, h.count("notify:"+NoticeError))
}

func waitForPhase(t *testing.T, w *Workflow, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Phase() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("workflow never reached phase %s", want)
}
