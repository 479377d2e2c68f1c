package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/sunft-backend/internal/domain"
	"github.com/yungbote/sunft-backend/internal/http/middleware"
	"github.com/yungbote/sunft-backend/internal/http/response"
	"github.com/yungbote/sunft-backend/internal/services"
)

// DevHandler exposes the reference ledgers. It is only mounted when the dev
// ledger is enabled.
type DevHandler struct {
	dev  services.DevLedgerService
	auth services.AuthService
}

func NewDevHandler(dev services.DevLedgerService, auth services.AuthService) *DevHandler {
	return &DevHandler{dev: dev, auth: auth}
}

type assetRequest struct {
	ContractRef string `json:"contract_ref" binding:"required"`
	AssetID     string `json:"asset_id" binding:"required"`
	URI         string `json:"uri"`
}

func (r assetRequest) ref() types.AssetRef {
	return types.AssetRef{ContractRef: r.ContractRef, AssetID: r.AssetID}
}

// POST /api/dev/token
func (h *DevHandler) IssueToken(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	token, expires, err := h.auth.IssueToken(req.Address)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"token": token, "expires_at": expires.UTC().Format(time.RFC3339)})
}

// POST /api/dev/faucet
func (h *DevHandler) Faucet(c *gin.Context) {
	var req struct {
		To     string          `json:"to" binding:"required"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	balance, err := h.dev.Faucet(c.Request.Context(), req.To, req.Amount)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"address": req.To, "balance": balance})
}

// POST /api/dev/approve
func (h *DevHandler) ApprovePayment(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.dev.ApprovePayment(c.Request.Context(), middleware.Caller(c), req.Amount); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"allowance": req.Amount})
}

// POST /api/dev/assets
func (h *DevHandler) RegisterAsset(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	asset, err := h.dev.RegisterAsset(c.Request.Context(), middleware.Caller(c), req.ref(), req.URI)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"asset": asset})
}

// POST /api/dev/assets/approve
func (h *DevHandler) ApproveAsset(c *gin.Context) {
	var req assetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.dev.ApproveAsset(c.Request.Context(), middleware.Caller(c), req.ref()); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"approved": req.ref()})
}

// POST /api/dev/clock/advance
func (h *DevHandler) AdvanceClock(c *gin.Context) {
	var req struct {
		Seconds int64 `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	now, err := h.dev.AdvanceClock(req.Seconds)
	if errors.Is(err, services.ErrClockNotManual) {
		response.RespondError(c, http.StatusConflict, "clock_not_manual", err)
		return
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"now": now})
}

// GET /api/dev/accounts/:address
func (h *DevHandler) GetAccount(c *gin.Context) {
	acct, err := h.dev.Account(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"account": acct})
}
