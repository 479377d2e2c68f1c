package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sunft-backend/internal/domain/sunft"
)

func respond(err error) (int, ErrorEnvelope) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondErr(c, err)
	var env ErrorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func TestRespondErrUsesDomainKind(t *testing.T) {
	code, env := respond(fmt.Errorf("bundle 3: %w", sunft.ErrNotCreator))
	if code != http.StatusForbidden || env.Error.Code != "not_creator" {
		t.Fatalf("domain error: got=%d %+v", code, env)
	}
	if env.Error.Message != "bundle 3: caller is not the bundle creator" {
		t.Fatalf("message: got=%q", env.Error.Message)
	}
}

func TestRespondErrHidesInternalErrors(t *testing.T) {
	code, env := respond(errors.New("pq: password authentication failed"))
	if code != http.StatusInternalServerError || env.Error.Code != "internal" {
		t.Fatalf("internal error: got=%d %+v", code, env)
	}
	if env.Error.Message != "unknown error" {
		t.Fatalf("internal message leaked: %q", env.Error.Message)
	}
}
