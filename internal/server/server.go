package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lumenapps/explore/internal/domain/catalog"
	"github.com/lumenapps/explore/internal/domain/creation"
	exphttp "github.com/lumenapps/explore/internal/http"
	"github.com/lumenapps/explore/internal/infrastructure/config"
	"github.com/lumenapps/explore/internal/infrastructure/monitoring"
	"github.com/lumenapps/explore/internal/logging"
	"github.com/lumenapps/explore/internal/navigation"
	"github.com/lumenapps/explore/internal/session"
	"github.com/lumenapps/explore/internal/upstream"
	"github.com/lumenapps/explore/internal/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	router   *gin.Engine
	httpSrv  *http.Server
	store    *catalog.Store
	workflow *creation.Workflow
	handlers *exphttp.Handlers
	hub      *ws.Hub
}

// New builds the service from configuration.
func New(cfg *config.Config, log *logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.NewDefault()
	}
	metrics := monitoring.New()

	client := upstream.New(upstream.Config{
		BaseURL:          cfg.Upstream.BaseURL,
		Timeout:          cfg.Upstream.Timeout,
		RetryMax:         cfg.Upstream.RetryMax,
		BreakerThreshold: cfg.Upstream.BreakerThreshold,
		BreakerCooldown:  cfg.Upstream.BreakerCooldown,
	}, log)

	store := catalog.NewStore(client, log)
	store.SetObserver(func(result string, apps int) {
		metrics.CatalogLoads.WithLabelValues(result).Inc()
		metrics.CatalogApps.Set(float64(apps))
	})

	flags := session.NewFlagSet()
	recorder := &navigation.Recorder{}

	hub := ws.NewHub(log)
	hub.OnNotify(func(n ws.Notice) {
		metrics.Notifications.WithLabelValues(n.Type).Inc()
	})
	hub.OnCountChange(func(n int) {
		metrics.WSConnections.Set(float64(n))
	})

	workflow := creation.New(creation.Deps{
		Detail:           client,
		Importer:         client,
		DepCheck:         client,
		Notify:           hub,
		Flags:            flags,
		Nav:              recorder,
		CanEditWorkspace: cfg.Explore.WorkspaceEditor,
		DepCheckTimeout:  cfg.Explore.DepCheckTimeout,
		CreationsObserver: func(result string) {
			metrics.Creations.WithLabelValues(result).Inc()
		},
		DepChecksObserver: func(result string) {
			metrics.DependencyChecks.WithLabelValues(result).Inc()
		},
		Log: log,
	})

	handlers := exphttp.NewHandlers(
		store,
		workflow,
		flags,
		client,
		recorder,
		log,
		cfg.Explore.EditPermission,
		cfg.Explore.SearchDebounce,
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		router.Use(monitoring.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	explore := router.Group("/explore")
	{
		explore.GET("/apps", handlers.ListApps)
		explore.POST("/apps/reload", handlers.ReloadCatalog)
		explore.GET("/apps/:id/prefill", handlers.PrefillApp)
		explore.POST("/apps/:id/create", handlers.CreateApp)
		explore.PUT("/filters", handlers.SetFilters)
		explore.GET("/workflow", handlers.WorkflowState)
		explore.DELETE("/dialog", handlers.CancelDialog)
		explore.GET("/refresh-flag", handlers.RefreshFlag)
	}

	router.GET("/stream", hub.HandleConnection)

	srv := &Server{
		cfg:      cfg,
		log:      log.Named("server"),
		router:   router,
		store:    store,
		workflow: workflow,
		handlers: handlers,
		hub:      hub,
	}

	if cfg.Explore.LoadOnStartup {
		// First load is best-effort: consumers see the empty-but-valid
		// snapshot (and a loading indicator) until a reload succeeds.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
		defer cancel()
		if err := store.Load(ctx); err != nil {
			srv.log.Warn("initial catalog load failed", zap.Error(err))
		}
	}

	return srv, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("starting explore service", zap.String("addr", addr))

	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the server down gracefully and tears down session views so no
// debounce timer fires into a destroyed context.
func (s *Server) Close() error {
	s.handlers.CloseViews()

	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

// interface checks
var (
	_ catalog.ListFetcher        = (*upstream.Client)(nil)
	_ creation.DetailFetcher     = (*upstream.Client)(nil)
	_ creation.Importer          = (*upstream.Client)(nil)
	_ creation.DependencyChecker = (*upstream.Client)(nil)
	_ creation.Notifier          = (*ws.Hub)(nil)
	_ navigation.Navigator       = (*navigation.Recorder)(nil)
)
