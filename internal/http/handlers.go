package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumenapps/explore/internal/domain/catalog"
	"github.com/lumenapps/explore/internal/domain/creation"
	"github.com/lumenapps/explore/internal/domain/dsl"
	"github.com/lumenapps/explore/internal/domain/filter"
	"github.com/lumenapps/explore/internal/logging"
	"github.com/lumenapps/explore/internal/navigation"
	"github.com/lumenapps/explore/internal/session"
	"github.com/lumenapps/explore/internal/shared/types"
	"github.com/lumenapps/explore/internal/upstream"
)

// defaultSession names the view used when a client sends no session header.
const defaultSession = "default"

// sessionHeader carries the explore session id so each UI tab keeps its own
// filter state and debouncer.
const sessionHeader = "X-Explore-Session"

// Handlers contains all HTTP handlers.
type Handlers struct {
	store          *catalog.Store
	workflow       *creation.Workflow
	flags          *session.FlagSet
	client         *upstream.Client
	recorder       *navigation.Recorder
	log            *logging.Logger
	editPermission bool
	debounce       time.Duration

	mu    sync.Mutex
	views map[string]*catalog.View
}

// NewHandlers creates the handler set.
func NewHandlers(
	store *catalog.Store,
	workflow *creation.Workflow,
	flags *session.FlagSet,
	client *upstream.Client,
	recorder *navigation.Recorder,
	log *logging.Logger,
	editPermission bool,
	debounce time.Duration,
) *Handlers {
	if log == nil {
		log = logging.NewDefault()
	}
	return &Handlers{
		store:          store,
		workflow:       workflow,
		flags:          flags,
		client:         client,
		recorder:       recorder,
		log:            log.Named("http"),
		editPermission: editPermission,
		debounce:       debounce,
		views:          make(map[string]*catalog.View),
	}
}

// Root reports the service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "explore",
	})
}

// Health reports service and upstream health.
func (h *Handlers) Health(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"catalog": gin.H{
			"loading": snap.Loading(),
			"apps":    len(snap.Apps),
			"version": snap.Version,
		},
		"upstream": gin.H{"breaker": h.client.BreakerState()},
		"workflow": gin.H{"phase": h.workflow.Phase().String()},
	})
}

// ListApps returns the filtered, search-narrowed template list. With any of
// the category/type/q query parameters present the computation is stateless;
// otherwise the caller's session view (and its committed search term)
// applies. categories.length == 0 doubles as the loading indicator.
func (h *Handlers) ListApps(c *gin.Context) {
	snap := h.store.Snapshot()

	var apps []types.TemplateApp
	var state types.FilterState
	if hasFilterParams(c) {
		category := c.DefaultQuery("category", catalog.Sentinel())
		typ := types.AppType(c.Query("type"))
		term := c.Query("q")

		apps = filter.Search(filter.Apps(snap.Apps, category, typ, catalog.Sentinel()), term)
		state = types.FilterState{
			Category:            category,
			Type:                typ,
			SearchTerm:          term,
			DebouncedSearchTerm: term,
		}
	} else {
		view := h.viewFor(c.GetHeader(sessionHeader))
		apps = view.Apps()
		state = view.FilterState()
	}

	c.JSON(http.StatusOK, gin.H{
		"apps":         apps,
		"categories":   snap.Categories,
		"filter":       state,
		"loading":      snap.Loading(),
		"all_category": catalog.DisplaySentinel(c.Query("locale")),
	})
}

// SetFilters mutates the caller's session view. Search input runs through
// the debouncer; clear_search commits an empty term immediately.
func (h *Handlers) SetFilters(c *gin.Context) {
	var req struct {
		Category    *string `json:"category"`
		Type        *string `json:"type"`
		Search      *string `json:"search"`
		ClearSearch bool    `json:"clear_search"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view := h.viewFor(c.GetHeader(sessionHeader))
	if req.Category != nil {
		view.SetCategory(*req.Category)
	}
	if req.Type != nil {
		view.SetType(types.AppType(*req.Type))
	}
	if req.ClearSearch {
		view.ClearSearch()
	} else if req.Search != nil {
		view.SetSearchTerm(*req.Search)
	}

	c.JSON(http.StatusOK, gin.H{"filter": view.FilterState()})
}

// ReloadCatalog revalidates the catalog. Failure propagates to the caller;
// the previous snapshot stays in place.
func (h *Handlers) ReloadCatalog(c *gin.Context) {
	if err := h.store.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"apps":    len(snap.Apps),
		"version": snap.Version,
	})
}

// PrefillApp returns creation dialog defaults for a template, derived from
// its export payload with the catalog metadata as fallback.
func (h *Handlers) PrefillApp(c *gin.Context) {
	appID := c.Param("id")
	if err := validateID(appID, "app_id"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl, ok := h.findTemplate(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	detail, err := h.client.FetchAppDetail(c.Request.Context(), appID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"form": dsl.Prefill(tpl, detail.ExportData),
		"mode": detail.Mode,
	})
}

// CreateApp runs the creation workflow for a template. The edit-permission
// gate lives here, in the presentation layer: the workflow itself never
// re-checks it.
func (h *Handlers) CreateApp(c *gin.Context) {
	if !h.editPermission {
		c.JSON(http.StatusForbidden, gin.H{"error": "edit permission required"})
		return
	}

	appID := c.Param("id")
	if err := validateID(appID, "app_id"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var form types.CreationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl, ok := h.findTemplate(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	if err := h.workflow.Open(tpl); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	result, err := h.workflow.Confirm(c.Request.Context(), form)
	switch {
	case err == creation.ErrSubmitting, err == creation.ErrDismissed:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"mode":     result.Mode,
		"redirect": h.recorder.Last(),
	}
	if result.AppID != nil {
		resp["app_id"] = *result.AppID
	}
	c.JSON(http.StatusOK, resp)
}

// CancelDialog dismisses the creation dialog. Safe while a submission is in
// flight: the resolved call's effects are discarded.
func (h *Handlers) CancelDialog(c *gin.Context) {
	h.workflow.Cancel()
	c.JSON(http.StatusOK, gin.H{"phase": h.workflow.Phase().String()})
}

// WorkflowState exposes the dialog-open/submitting flags plus the retained
// draft so the dialog can re-render after a failure.
func (h *Handlers) WorkflowState(c *gin.Context) {
	phase, selection, draft, lastErr := h.workflow.State()

	resp := gin.H{
		"phase":      phase.String(),
		"submitting": phase == creation.PhaseSubmitting,
		"draft":      draft,
	}
	if selection != nil {
		resp["selection"] = selection
	}
	if lastErr != nil {
		resp["error"] = lastErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshFlag consumes the app-list refresh signal.
func (h *Handlers) RefreshFlag(c *gin.Context) {
	value, ok := h.flags.Consume(session.NeedRefreshAppListKey)
	c.JSON(http.StatusOK, gin.H{
		"needs_refresh": ok,
		"value":         value,
	})
}

// CloseViews tears down all session views, stopping their debounce timers.
func (h *Handlers) CloseViews() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, view := range h.views {
		view.Close()
		delete(h.views, id)
	}
}

func (h *Handlers) viewFor(id string) *catalog.View {
	if id == "" {
		id = defaultSession
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	view, ok := h.views[id]
	if !ok {
		view = catalog.NewView(h.store, h.debounce)
		h.views[id] = view
	}
	return view
}

func (h *Handlers) findTemplate(appID string) (types.TemplateApp, bool) {
	for _, app := range h.store.Snapshot().Apps {
		if app.AppID == appID {
			return app, true
		}
	}
	return types.TemplateApp{}, false
}

func hasFilterParams(c *gin.Context) bool {
	for _, key := range []string{"category", "type", "q"} {
		if _, ok := c.GetQuery(key); ok {
			return true
		}
	}
	return false
}
