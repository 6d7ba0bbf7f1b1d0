package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/messaging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/security"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError + 4,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)
	return logger
}

const liveTestSecret = "live-test-secret"

// liveTestRouter wires the live feed handler behind a stub that injects a
// resolved tenant context, mirroring what TenantMiddleware provides.
func liveTestRouter(t *testing.T, tier string) (*gin.Engine, *messaging.LiveFeedBroadcaster) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := testLogger(t)
	broadcaster := messaging.NewLiveFeedBroadcaster(logger)
	live := NewLiveHandlers(broadcaster, logger)

	tenantCtx := &tenant.Context{
		TenantID: "acme",
		Status:   "active",
		Config: &tenant.Config{
			TenantID:         "acme",
			Status:           "active",
			SubscriptionTier: tier,
			JWTSecret:        liveTestSecret,
		},
	}

	r := gin.New()
	r.GET("/api/v1/live", func(c *gin.Context) { c.Set("tenant", tenantCtx) }, live.GetLiveFeed)
	return r, broadcaster
}

func liveToken(t *testing.T, tenantID string, secret string) string {
	t.Helper()
	token, err := security.GenerateTenantToken(&security.TokenClaims{
		TenantID: tenantID,
		Role:     "admin",
		Tier:     "growth",
	}, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestLiveFeedRequiresToken(t *testing.T) {
	r, _ := liveTestRouter(t, "growth")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/live?tenantId=acme", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLiveFeedRejectsBadSignature(t *testing.T) {
	r, _ := liveTestRouter(t, "growth")
	token := liveToken(t, "acme", "some-other-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/live?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLiveFeedRejectsForeignTenantToken(t *testing.T) {
	r, _ := liveTestRouter(t, "growth")
	token := liveToken(t, "other", liveTestSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/live?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLiveFeedRequiresEntitledTier(t *testing.T) {
	r, _ := liveTestRouter(t, "standard")
	token := liveToken(t, "acme", liveTestSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/live?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLiveFeedUpgradesWithValidToken(t *testing.T) {
	r, broadcaster := liveTestRouter(t, "growth")
	token := liveToken(t, "acme", liveTestSecret)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/live?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool {
		return broadcaster.ConnectionCount("acme") == 1
	}, 2*time.Second, 10*time.Millisecond)
}
