package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sunft-backend/internal/http/response"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextScopesBundleRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen []*ctxutil.TraceData
	capture := func(c *gin.Context) {
		seen = append(seen, ctxutil.GetTraceData(c.Request.Context()))
		c.Status(http.StatusNoContent)
	}
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/api/bundles/:id/progress", capture)
	r.GET("/api/owners/:address/bundles", capture)

	req := httptest.NewRequest(http.MethodGet, "/api/bundles/42/progress", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("request id header: want=req-1 got=%q", got)
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("trace id header missing")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/owners/0x2222/bundles", nil))

	if len(seen) != 2 || seen[0] == nil || seen[1] == nil {
		t.Fatalf("trace data: got=%v", seen)
	}
	if seen[0].BundleID != "42" || seen[0].RequestID != "req-1" {
		t.Fatalf("bundle route: got=%+v", seen[0])
	}
	if seen[1].BundleID != "" || seen[1].RequestID == "" {
		t.Fatalf("owner route: got=%+v", seen[1])
	}
	fields := seen[0].LogFields()
	if len(fields) != 6 || fields[4] != "bundle_id" || fields[5] != "42" {
		t.Fatalf("log fields: got=%v", fields)
	}
}

func TestMetricsCountsErrorCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/bundles/:id", func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "bundle_not_found", errors.New("bundle not found"))
	})
	r.POST("/api/bundles", func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})
	r.GET("/healthcheck", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/bundles/9", nil),
		httptest.NewRequest(http.MethodPost, "/api/bundles", nil),
		httptest.NewRequest(http.MethodGet, "/healthcheck", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`sunft_http_errors_total{code="bundle_not_found",route="/api/bundles/:id"} 1`,
		`sunft_http_errors_total{code="http_401",route="/api/bundles"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %s:\n%s", want, body)
		}
	}
	if strings.Contains(body, `sunft_http_errors_total{code="http_200"`) {
		t.Fatalf("success counted as error:\n%s", body)
	}
}
