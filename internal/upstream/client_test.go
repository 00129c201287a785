package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumenapps/explore/internal/infrastructure/resilience"
	"github.com/lumenapps/explore/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:          srv.URL,
		Timeout:          2 * time.Second,
		RetryMax:         1,
		BreakerThreshold: 3,
		BreakerCooldown:  time.Minute,
	}, nil)
}

func TestFetchAppList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/explore/apps", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(types.AppList{
			Categories: []string{"Writing"},
			RecommendedApps: []types.TemplateApp{
				{AppID: "a", Mode: types.ModeChat, Name: "Draft Helper", Category: "Writing", Position: 1},
			},
		})
	})
	c := testClient(t, mux)

	list, err := c.FetchAppList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Writing"}, list.Categories)
	require.Len(t, list.RecommendedApps, 1)
	assert.Equal(t, "a", list.RecommendedApps[0].AppID)
}

func TestFetchAppListRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/explore/apps", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(types.AppList{Categories: []string{"Writing"}})
	})
	c := testClient(t, mux)

	list, err := c.FetchAppList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Writing"}, list.Categories)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchAppDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/explore/apps/tpl-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.AppDetail{ExportData: "app:\n  name: X\n", Mode: types.ModeChat})
	})
	c := testClient(t, mux)

	detail, err := c.FetchAppDetail(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, types.ModeChat, detail.Mode)
	assert.Contains(t, detail.ExportData, "name: X")
}

func TestImportDSL(t *testing.T) {
	var got types.ImportRequest
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/apps/imports", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		appID := "app-9"
		json.NewEncoder(w).Encode(types.ImportResult{AppID: &appID, Mode: types.ModeWorkflow})
	})
	c := testClient(t, mux)

	result, err := c.ImportDSL(context.Background(), types.ImportRequest{
		Mode:        types.ImportModeYAMLContent,
		YAMLContent: "app:\n  name: X\n",
		Name:        "My App",
	})
	require.NoError(t, err)
	require.NotNil(t, result.AppID)
	assert.Equal(t, "app-9", *result.AppID)
	assert.Equal(t, types.ModeWorkflow, result.Mode)
	assert.Equal(t, types.ImportModeYAMLContent, got.Mode)
	assert.Equal(t, "My App", got.Name)
}

func TestImportDSLDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/apps/imports", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := testClient(t, mux)

	_, err := c.ImportDSL(context.Background(), types.ImportRequest{Mode: types.ImportModeYAMLContent})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckPluginDependencies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apps/app-9/plugin-dependencies/check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
	})
	c := testClient(t, mux)

	assert.NoError(t, c.CheckPluginDependencies(context.Background(), "app-9"))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/apps/imports", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := testClient(t, mux)

	for i := 0; i < 3; i++ {
		_, err := c.ImportDSL(context.Background(), types.ImportRequest{})
		require.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen.String(), c.BreakerState())

	_, err := c.ImportDSL(context.Background(), types.ImportRequest{})
	assert.ErrorIs(t, err, resilience.ErrOpen)
}

func TestGetJSONRejectsNonSuccessStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/explore/apps/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := testClient(t, mux)

	_, err := c.FetchAppDetail(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
