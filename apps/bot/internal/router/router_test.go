package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vkinder/apps/bot/internal/middleware"
	"vkinder/apps/bot/internal/oauth"
	v1 "vkinder/apps/bot/internal/router/v1"
	"vkinder/config"
	"vkinder/consts"
	rediskey "vkinder/consts/redisKey"
	"vkinder/pkg/logger"
)

type fakeCompleter struct {
	completeFn func(ctx context.Context, params oauth.Params) (*oauth.Result, error)
	calls      []oauth.Params
}

func (f *fakeCompleter) CompleteByState(ctx context.Context, params oauth.Params) (*oauth.Result, error) {
	f.calls = append(f.calls, params)
	if f.completeFn == nil {
		return &oauth.Result{OwnerID: 42, VKUserID: 42, AccessToken: "tok"}, nil
	}
	return f.completeFn(ctx, params)
}

type fakeFinisher struct {
	err      error
	finished []*oauth.Result
	traceIDs []string
}

func (f *fakeFinisher) FinishAuthorization(ctx context.Context, res *oauth.Result) error {
	f.finished = append(f.finished, res)
	f.traceIDs = append(f.traceIDs, logger.TraceID(ctx))
	return f.err
}

type routerResultBody struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	TraceId string          `json:"trace_id"`
}

var routerLoggerOnce sync.Once

func initRouterTestLogger() {
	routerLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
		gin.SetMode(gin.TestMode)
	})
}

func buildRouter(limiter *middleware.RedisRateLimiter, completer *fakeCompleter, finisher *fakeFinisher) *gin.Engine {
	return InitRouter(config.DefaultServerConfig(), limiter, v1.NewOAuthHandler(completer, finisher))
}

func doGet(t *testing.T, r *gin.Engine, target string, headers map[string]string) (*httptest.ResponseRecorder, routerResultBody) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body routerResultBody
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestCallbackSuccess(t *testing.T) {
	initRouterTestLogger()
	completer := &fakeCompleter{}
	finisher := &fakeFinisher{}
	r := buildRouter(nil, completer, finisher)

	w, body := doGet(t, r, "/oauth/callback?code=c1&state=s1&device_id=d1", map[string]string{"X-Request-ID": "trace-cb"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeSuccess, body.Code)
	assert.Equal(t, "trace-cb", body.TraceId)
	assert.JSONEq(t, `{"user_id":42}`, string(body.Data))

	require.Len(t, completer.calls, 1)
	assert.Equal(t, oauth.Params{Code: "c1", State: "s1", DeviceID: "d1"}, completer.calls[0])
	require.Len(t, finisher.finished, 1)
	assert.Equal(t, int64(42), finisher.finished[0].OwnerID)
	assert.Equal(t, []string{"trace-cb"}, finisher.traceIDs)
}

func TestCallbackFailures(t *testing.T) {
	initRouterTestLogger()

	tests := []struct {
		name       string
		target     string
		completeFn func(context.Context, oauth.Params) (*oauth.Result, error)
		finishErr  error
		wantCode   int
		wantCalls  int
	}{
		{name: "declined", target: "/oauth/callback?error=access_denied&state=s1", wantCode: consts.CodeAuthDenied},
		{name: "missing state", target: "/oauth/callback?code=c1", wantCode: consts.CodeParamError},
		{name: "missing code", target: "/oauth/callback?state=s1", wantCode: consts.CodeParamError},
		{
			name:   "unknown state",
			target: "/oauth/callback?code=c1&state=s1",
			completeFn: func(context.Context, oauth.Params) (*oauth.Result, error) {
				return nil, oauth.ErrChallengeNotFound
			},
			wantCode:  consts.CodeAuthStateExpired,
			wantCalls: 1,
		},
		{
			name:   "rejected",
			target: "/oauth/callback?code=c1&state=s1",
			completeFn: func(context.Context, oauth.Params) (*oauth.Result, error) {
				return nil, fmt.Errorf("%w: invalid_grant", oauth.ErrExchangeRejected)
			},
			wantCode:  consts.CodeAuthExchangeFailed,
			wantCalls: 1,
		},
		{
			name:   "vk unreachable",
			target: "/oauth/callback?code=c1&state=s1",
			completeFn: func(context.Context, oauth.Params) (*oauth.Result, error) {
				return nil, assert.AnError
			},
			wantCode:  consts.CodeServiceUnavailable,
			wantCalls: 1,
		},
		{
			name:      "token not stored",
			target:    "/oauth/callback?code=c1&state=s1",
			finishErr: assert.AnError,
			wantCode:  consts.CodeInternalError,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{completeFn: tt.completeFn}
			r := buildRouter(nil, completer, &fakeFinisher{err: tt.finishErr})

			w, body := doGet(t, r, tt.target, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Len(t, completer.calls, tt.wantCalls)
		})
	}
}

func TestCallbackRateLimitedPerIP(t *testing.T) {
	initRouterTestLogger()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// two tokens, refilled once per 100 seconds
	limiter := middleware.NewRedisRateLimiter(0.01, 2, client)
	completer := &fakeCompleter{}
	r := buildRouter(limiter, completer, &fakeFinisher{})
	headers := map[string]string{"X-Real-IP": "203.0.113.7"}

	for i := 0; i < 2; i++ {
		w, body := doGet(t, r, "/oauth/callback?code=c1&state=s1", headers)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, consts.CodeSuccess, body.Code)
	}

	w, body := doGet(t, r, "/oauth/callback?code=c1&state=s1", headers)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, consts.CodeTooManyRequests, body.Code)
	assert.Len(t, completer.calls, 2)
	assert.True(t, mr.Exists(rediskey.CallbackIPRateLimitKey("203.0.113.7")))

	// another client has its own bucket
	w, _ = doGet(t, r, "/oauth/callback?code=c1&state=s1", map[string]string{"X-Real-IP": "203.0.113.8"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	initRouterTestLogger()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	limiter := middleware.NewRedisRateLimiter(1, 1, client)
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(context.Background(), "k"))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	initRouterTestLogger()
	r := buildRouter(nil, &fakeCompleter{}, &fakeFinisher{})

	w, _ := doGet(t, r, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// make sure the http series exist before scraping
	doGet(t, r, "/oauth/callback?state=s1", nil)
	w, _ = doGet(t, r, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vkinder_http_requests_total")
}

func TestTimeoutMiddlewareAnswersWhenHandlerIsSilent(t *testing.T) {
	initRouterTestLogger()
	r := gin.New()
	r.GET("/slow", middleware.TimeoutMiddleware(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w, body := doGet(t, r, "/slow", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.CodeTimeoutError, body.Code)
}

func TestRecoveryAnswersPanics(t *testing.T) {
	initRouterTestLogger()
	r := gin.New()
	r.Use(middleware.GinRecovery(false))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	_, body := doGet(t, r, "/panic", nil)
	assert.Equal(t, consts.CodeInternalError, body.Code)
}
