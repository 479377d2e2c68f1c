package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yungbote/sunft-backend/internal/http/middleware"
	"github.com/yungbote/sunft-backend/internal/http/response"
	"github.com/yungbote/sunft-backend/internal/services"
)

type FeeHandler struct {
	bundles services.BundleService
}

func NewFeeHandler(bundles services.BundleService) *FeeHandler {
	return &FeeHandler{bundles: bundles}
}

// GET /api/admin/fee
func (h *FeeHandler) GetFee(c *gin.Context) {
	cfg, err := h.bundles.GetFeeConfig(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"fee": cfg})
}

// PUT /api/admin/fee
func (h *FeeHandler) SetFee(c *gin.Context) {
	var req struct {
		MintingFee *decimal.Decimal `json:"minting_fee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.bundles.SetMintingFee(c.Request.Context(), middleware.Caller(c), *req.MintingFee); err != nil {
		response.RespondErr(c, err)
		return
	}
	cfg, err := h.bundles.GetFeeConfig(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"fee": cfg})
}

// POST /api/admin/fee/withdraw
func (h *FeeHandler) Withdraw(c *gin.Context) {
	amount, err := h.bundles.WithdrawFees(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"withdrawn": amount})
}
