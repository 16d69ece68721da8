package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wederfonseca/achadinhododia/internal/capi"
	"github.com/wederfonseca/achadinhododia/internal/config"
	"github.com/wederfonseca/achadinhododia/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		MetaPixelID:      "1",
		MetaAccessToken:  "t",
		MetaAPIVersion:   "v18.0",
		DedupWindow:      config.WindowRollingTTL,
		DedupTTL:         24 * time.Hour,
		DefaultEventName: "GroupJoinIntent",
	}
}

func serve(t *testing.T, cfg config.Config, st store.EventStore, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	// Provider endpoint that always accepts.
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(provider.Close)

	client := capi.New(cfg)
	client.BaseURL = provider.URL

	router := NewRouter(cfg, st, client, zap.NewNop())

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	w := serve(t, testConfig(), nil, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ReadyWithoutStore(t *testing.T) {
	w := serve(t, testConfig(), nil, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ReadyWithStore(t *testing.T) {
	w := serve(t, testConfig(), store.NewMemoryStore(), http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WrongMethodOnCollectIs405(t *testing.T) {
	w := serve(t, testConfig(), nil, http.MethodGet, "/collect", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_MetricsExposed(t *testing.T) {
	w := serve(t, testConfig(), nil, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "capi_relay_events_received_total")
}

func TestRouter_SignatureEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.SignatureHeader = "X-Collect-Signature"
	cfg.SignatureValue = "shh"

	body := `{"event_id":"sig-1"}`

	w := serve(t, cfg, nil, http.MethodPost, "/collect", body, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "missing signature rejected")

	w = serve(t, cfg, nil, http.MethodPost, "/collect", body, map[string]string{"X-Collect-Signature": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code, "wrong signature rejected")

	w = serve(t, cfg, nil, http.MethodPost, "/collect", body, map[string]string{"X-Collect-Signature": "shh"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SignatureDisabledByDefault(t *testing.T) {
	w := serve(t, testConfig(), nil, http.MethodPost, "/collect", `{"event_id":"open-1"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
