package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/lumenapps/explore/internal/infrastructure/resilience"
	"github.com/lumenapps/explore/internal/logging"
	"github.com/lumenapps/explore/internal/shared/types"
	"go.uber.org/zap"
)

// Config holds upstream connection settings.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	RetryMax         int
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Client talks to the upstream console API.
type Client struct {
	base    string
	reader  *retryablehttp.Client
	writer  *resty.Client
	breaker *resilience.Breaker
	log     *logging.Logger
}

// New creates an upstream client.
func New(cfg Config, log *logging.Logger) *Client {
	if log == nil {
		log = logging.NewDefault()
	}
	log = log.Named("upstream")

	reader := retryablehttp.NewClient()
	reader.RetryMax = cfg.RetryMax
	reader.HTTPClient.Timeout = cfg.Timeout
	reader.Logger = nil

	writer := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		base:    cfg.BaseURL,
		reader:  reader,
		writer:  writer,
		breaker: resilience.New("upstream", cfg.BreakerThreshold, cfg.BreakerCooldown),
		log:     log,
	}
}

// BreakerState reports the circuit breaker state for health checks.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// FetchAppList retrieves the explore catalog: categories plus the
// recommended template apps.
func (c *Client) FetchAppList(ctx context.Context) (*types.AppList, error) {
	var list types.AppList
	err := c.breaker.Execute(func() error {
		return c.getJSON(ctx, "/explore/apps", &list)
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// FetchAppDetail retrieves the export representation of a template app.
func (c *Client) FetchAppDetail(ctx context.Context, appID string) (*types.AppDetail, error) {
	var detail types.AppDetail
	err := c.breaker.Execute(func() error {
		return c.getJSON(ctx, "/explore/apps/"+appID, &detail)
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ImportDSL submits an import request carrying the export payload and the
// user-edited metadata. Not retried: imports are not idempotent.
func (c *Client) ImportDSL(ctx context.Context, req types.ImportRequest) (*types.ImportResult, error) {
	var result types.ImportResult
	err := c.breaker.Execute(func() error {
		resp, err := c.writer.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&result).
			Post("/apps/imports")
		if err != nil {
			return fmt.Errorf("import dsl: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("import dsl: upstream returned %s", resp.Status())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckPluginDependencies asks the upstream to validate an app's declared
// plugin requirements. Callers treat failures as best-effort.
func (c *Client) CheckPluginDependencies(ctx context.Context, appID string) error {
	return c.breaker.Execute(func() error {
		resp, err := c.writer.R().
			SetContext(ctx).
			Post("/apps/" + appID + "/plugin-dependencies/check")
		if err != nil {
			return fmt.Errorf("check plugin dependencies: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("check plugin dependencies: upstream returned %s", resp.Status())
		}
		return nil
	})
}

// getJSON performs a retried GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	resp, err := c.reader.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		c.log.Warn("upstream read failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("get %s: upstream returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
