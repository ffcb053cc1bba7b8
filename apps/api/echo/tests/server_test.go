package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/studymatch/apps/api/echo"
	"github.com/trezcool/studymatch/tests"
)

func TestServer_home(t *testing.T) {
	_, app := setup(t)
	runHTTPTests(t, app, []httpTest{
		{name: "healthz", path: "/healthz", wantCode: http.StatusOK, wantData: []byte(`{"status":"OK","redis":true}`)},
		{name: "unknown route", path: "/v1/nope", wantCode: http.StatusNotFound, wantData: []byte(`{"error":"Not Found"}`)},
	})

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Study Match API!", rec.Body.String())
}

func TestServer_metrics(t *testing.T) {
	svcs, app := setup(t)
	usr := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test")
	do(app, http.MethodGet, "/v1/points", getToken(t, svcs, usr))
	do(app, http.MethodGet, "/v1/points", "")

	rec := do(app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `studymatch_http_requests_total{code="200",method="GET",route="/v1/points"} 1`)
	assert.Contains(t, body, `studymatch_http_requests_total{code="401",method="GET",route="/v1/points"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_rateLimit(t *testing.T) {
	_, app := setup(t, func(deps *ServerDeps) {
		conf := *deps.Conf
		conf.Server.RateLimitPerMinute = 2
		deps.Conf = &conf
	})

	body := marshallObj(t, LoginRequest{Email: "who@uni.test", Password: "whatever"})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(app, http.MethodPost, "/v1/users/login", "", body).Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	// other endpoints are not limited
	rec := do(app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
