package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/kidsbook/internal/domain/user"
	"github.com/xiebiao/kidsbook/internal/infrastructure/config"
	apperrors "github.com/xiebiao/kidsbook/pkg/errors"
	"github.com/xiebiao/kidsbook/pkg/jwt"
	"github.com/xiebiao/kidsbook/pkg/metrics"
	"github.com/xiebiao/kidsbook/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	blocked map[string]bool
	err     error
}

func (f *fakeBlacklist) IsInBlacklist(_ context.Context, jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.blocked[jti], nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("test-secret", "kidsbook", 30*time.Minute, time.Hour)
	blacklist := &fakeBlacklist{blocked: map[string]bool{}}
	auth := NewAuthMiddleware(manager, blacklist)

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		response.Success(c, gin.H{"id": MustGetUserID(c).String(), "email": GetClaims(c).Email})
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireRole(user.RoleAdmin), func(c *gin.Context) {
		response.Success(c, nil)
	})

	userID := uuid.New()
	pair, err := manager.GenerateTokenPair(userID, "olena@example.com", string(user.RoleUser))
	require.NoError(t, err)

	t.Run("有效Token注入用户信息", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", pair.AccessToken)
		require.Equal(t, http.StatusOK, w.Code)
		data := decode(t, w).Data.(map[string]interface{})
		assert.Equal(t, userID.String(), data["id"])
		assert.Equal(t, "olena@example.com", data["email"])
	})

	t.Run("缺少Token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, decode(t, w).Code)
	})

	t.Run("格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token "+pair.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decode(t, w).Code)
	})

	t.Run("Refresh Token不能访问接口", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", pair.RefreshToken)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decode(t, w).Code)
	})

	t.Run("已登出的Token", func(t *testing.T) {
		claims, err := manager.ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)
		blacklist.blocked[claims.ID] = true
		defer delete(blacklist.blocked, claims.ID)

		w := do(r, http.MethodGet, "/me", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decode(t, w).Code)
	})

	t.Run("黑名单不可用", func(t *testing.T) {
		blacklist.err = errors.New("connection refused")
		defer func() { blacklist.err = nil }()

		w := do(r, http.MethodGet, "/me", pair.AccessToken)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, apperrors.ErrCodeRedisError, decode(t, w).Code)
	})

	t.Run("角色校验", func(t *testing.T) {
		w := do(r, http.MethodGet, "/admin", pair.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		admin, err := manager.GenerateTokenPair(uuid.New(), "admin@example.com", string(user.RoleAdmin))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", admin.AccessToken).Code)

		super, err := manager.GenerateTokenPair(uuid.New(), "root@example.com", string(user.RoleSuperAdmin))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", super.AccessToken).Code)
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("超出突发量返回429", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 2)
		r := gin.New()
		r.POST("/login", rl.Middleware(), func(c *gin.Context) { response.Success(c, nil) })

		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)

		w := do(r, http.MethodPost, "/login", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, apperrors.ErrCodeTooManyRequests, decode(t, w).Code)
	})

	t.Run("未启用时放行", func(t *testing.T) {
		rl := NewRateLimiterFromConfig(&config.Config{})
		assert.Nil(t, rl)

		r := gin.New()
		r.POST("/login", rl.Middleware(), func(c *gin.Context) { response.Success(c, nil) })
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", "").Code)
		}
	})

	t.Run("清理空闲IP", func(t *testing.T) {
		now := time.Now()
		rl := NewRateLimiter(1, 1)
		rl.now = func() time.Time { return now }
		rl.getVisitor("10.0.0.1")

		now = now.Add(visitorIdleTTL + time.Second)
		rl.getVisitor("10.0.0.2")
		rl.cleanup()

		assert.Len(t, rl.visitors, 1)
		assert.Contains(t, rl.visitors, "10.0.0.2")
	})
}

func TestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(Logger(log))
	r.GET("/ok", func(c *gin.Context) { response.Success(c, nil) })
	r.GET("/boom", func(c *gin.Context) {
		response.Error(c, apperrors.WithCause(apperrors.ErrDatabaseError, errors.New("db down")))
	})

	t.Run("生成请求ID并记录访问日志", func(t *testing.T) {
		hook.Reset()
		w := do(r, http.MethodGet, "/ok", "")
		requestID := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(requestID)
		require.NoError(t, err)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, requestID, entry.Data["request_id"])
		assert.Equal(t, http.StatusOK, entry.Data["status"])
		assert.Equal(t, "/ok", entry.Data["path"])
	})

	t.Run("沿用客户端的请求ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})

	t.Run("内部错误用请求logger记录原因", func(t *testing.T) {
		hook.Reset()
		w := do(r, http.MethodGet, "/boom", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		entries := hook.AllEntries()
		require.Len(t, entries, 2)
		assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
		assert.Equal(t, w.Header().Get(RequestIDHeader), entries[0].Data["request_id"])
		assert.EqualError(t, entries[0].Data[logrus.ErrorKey].(error), "db down")
		assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	})
}

func TestMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/books/:id", func(c *gin.Context) { response.Success(c, nil) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/books/:id", "200")
	before := metricValue(t, counter)

	do(r, http.MethodGet, "/books/1", "")
	do(r, http.MethodGet, "/books/2", "")

	assert.Equal(t, before+2, metricValue(t, counter), "按路由模板聚合")
	assert.Equal(t, float64(0), metricValue(t, metrics.HTTPRequestsInProgress))
}

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}
