package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/sunft-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	bundleRoutePrefix = "/api/bundles/:id"
)

// AttachTraceContext stores request/trace ids (and the bundle id on bundle
// routes) in the request context and echoes the ids as response headers.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		span := trace.SpanFromContext(c.Request.Context())
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" && span.SpanContext().HasTraceID() {
			traceID = span.SpanContext().TraceID().String()
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		td := &ctxutil.TraceData{TraceID: traceID, RequestID: reqID}
		if strings.HasPrefix(c.FullPath(), bundleRoutePrefix) {
			td.BundleID = strings.TrimSpace(c.Param("id"))
		}
		span.SetAttributes(attribute.String("sunft.request_id", reqID))
		if td.BundleID != "" {
			span.SetAttributes(attribute.String("sunft.bundle_id", td.BundleID))
			c.Set("bundle_id", td.BundleID)
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}
