package routers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	internalApp "github.com/callwise/flow-version-service/internal/app"
	"github.com/callwise/flow-version-service/internal/dao"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(authEnabled bool) *internalApp.AppConfig {
	return &internalApp.AppConfig{
		Server: internalApp.ServerConfig{RunMode: "test"},
		App: internalApp.AppSettings{
			DefaultPageSize:       10,
			MaxPageSize:           100,
			DefaultContextTimeout: 60,
			DefaultLang:           "en",
		},
		Security: internalApp.SecurityConfig{
			AuthTokenKey: "test-key",
			TokenExpiry:  "1h",
			AuthEnabled:  authEnabled,
		},
		Tracer: internalApp.TracerConfig{Enabled: true, Header: "X-Trace-ID"},
	}
}

func newTestRouter(t *testing.T, authEnabled bool) (*gin.Engine, *internalApp.App) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		AutoMigrate:  true,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	appContainer, err := internalApp.NewApp(testConfig(authEnabled), zap.NewNop(), db)
	require.NoError(t, err)

	return NewRouter(appContainer, nil), appContainer
}

func doJSON(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const versionBody = `{
	"flowId": "flow-1",
	"payload": {
		"nodes": [{"id": "A", "type": "entry"}],
		"edges": []
	}
}`

func TestRoutesStatusMapping(t *testing.T) {
	r, _ := newTestRouter(t, false)

	// create succeeds with 200 and the allocated version number
	w := doJSON(r, http.MethodPost, "/api/flow/version", versionBody, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Status bool `json:"status"`
		Data   struct {
			VersionNumber int64 `json:"versionNumber"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Status)
	require.Equal(t, int64(1), res.Data.VersionNumber)

	// malformed request body is a 400
	w = doJSON(r, http.MethodPost, "/api/flow/version", `{"flowId": "flow-1"}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// structurally invalid payload is a 400
	w = doJSON(r, http.MethodPost, "/api/flow/version",
		`{"flowId": "flow-1", "payload": {"nodes": []}}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown version is a 404
	w = doJSON(r, http.MethodGet, "/api/flow/version?flowId=flow-1&version=9", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// unknown flow history is a 404
	w = doJSON(r, http.MethodGet, "/api/flow/versions?flowId=missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// rolling back to the head is a 400
	w = doJSON(r, http.MethodPost, "/api/flow/version/rollback",
		`{"flowId": "flow-1", "targetVersion": 1}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// purging an active version is a 400
	w = doJSON(r, http.MethodPost, "/api/flow/version/purge",
		`{"flowId": "flow-1", "version": 1}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unmatched routes are 404s
	w = doJSON(r, http.MethodGet, "/api/no-such-route", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// health and metrics are served
	w = doJSON(r, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestActorTokenRequired(t *testing.T) {
	r, appContainer := newTestRouter(t, true)

	w := doJSON(r, http.MethodPost, "/api/flow/version", versionBody, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := appContainer.TokenManager.GenerateToken("alice", time.Hour)
	require.NoError(t, err)

	w = doJSON(r, http.MethodPost, "/api/flow/version", versionBody,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Data struct {
			CreatedBy string `json:"createdBy"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "alice", res.Data.CreatedBy)

	// health stays open without a token
	w = doJSON(r, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
