package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sunft-backend/internal/platform/apierr"
)

// RespondErr writes err with the status and code its kind maps to. Internal
// errors are not echoed to the client.
func RespondErr(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", nil)
	}
	_ = c.Error(err)
	if ae.Status >= http.StatusInternalServerError {
		RespondError(c, ae.Status, ae.Code, nil)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}
