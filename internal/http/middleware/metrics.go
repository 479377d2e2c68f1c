package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sunft-backend/internal/http/response"
	"github.com/yungbote/sunft-backend/internal/observability"
)

// Metrics records request count, latency and, for 4xx/5xx responses, the
// error code that was sent back.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(status), time.Since(start))
		if status >= http.StatusBadRequest {
			m.ObserveAPIError(route, errorCode(c, status))
		}
	}
}

func errorCode(c *gin.Context, status int) string {
	if code := c.GetString(response.ErrorCodeKey); code != "" {
		return code
	}
	return "http_" + strconv.Itoa(status)
}
