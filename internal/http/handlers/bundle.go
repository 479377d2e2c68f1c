package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yungbote/sunft-backend/internal/http/middleware"
	"github.com/yungbote/sunft-backend/internal/http/response"
	"github.com/yungbote/sunft-backend/internal/services"
)

type BundleHandler struct {
	bundles services.BundleService
}

func NewBundleHandler(bundles services.BundleService) *BundleHandler {
	return &BundleHandler{bundles: bundles}
}

type itemRequest struct {
	ContractRef string          `json:"contract_ref" binding:"required"`
	AssetID     string          `json:"asset_id" binding:"required"`
	Rate        decimal.Decimal `json:"rate"`
	Duration    int64           `json:"duration"`
}

func (r itemRequest) spec() services.ItemSpec {
	return services.ItemSpec{ContractRef: r.ContractRef, AssetID: r.AssetID, Rate: r.Rate, Duration: r.Duration}
}

type mintRequest struct {
	itemRequest
	To      string          `json:"to"`
	Payment decimal.Decimal `json:"payment"`
}

func bundleIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_bundle_id", err)
		return 0, false
	}
	return id, true
}

// POST /api/bundles
func (h *BundleHandler) Mint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	caller := middleware.Caller(c)
	if strings.TrimSpace(req.To) == "" {
		req.To = caller
	}
	id, err := h.bundles.Mint(c.Request.Context(), caller, services.MintRequest{
		ContractRef: req.ContractRef,
		AssetID:     req.AssetID,
		Rate:        req.Rate,
		Duration:    req.Duration,
		To:          req.To,
		Payment:     req.Payment,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	view, err := h.bundles.GetBundle(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"bundle": view})
}

// POST /api/bundles/:id/items
func (h *BundleHandler) AppendItem(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	idx, err := h.bundles.Append(c.Request.Context(), middleware.Caller(c), id, req.spec())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"bundle_id": id, "index": idx})
}

// POST /api/bundles/:id/deposits
func (h *BundleHandler) Deposit(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.bundles.Deposit(c.Request.Context(), middleware.Caller(c), id, req.Amount)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundle": view})
}

// POST /api/bundles/:id/unlock
func (h *BundleHandler) Unlock(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	n, err := h.bundles.TryUnlock(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	view, err := h.bundles.GetBundle(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"unlocked": n, "bundle": view})
}

// POST /api/bundles/:id/destroy
func (h *BundleHandler) Destroy(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	st, err := h.bundles.Destroy(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundle_id": id, "settlement": st})
}

// POST /api/bundles/:id/transfer
func (h *BundleHandler) Transfer(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	var req struct {
		To string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.bundles.Transfer(c.Request.Context(), middleware.Caller(c), id, req.To); err != nil {
		response.RespondErr(c, err)
		return
	}
	view, err := h.bundles.GetBundle(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundle": view})
}

// GET /api/bundles/:id
func (h *BundleHandler) GetBundle(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	view, err := h.bundles.GetBundle(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundle": view})
}

// GET /api/bundles/:id/items/:index
func (h *BundleHandler) GetItem(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_index", err)
		return
	}
	item, err := h.bundles.GetItem(c.Request.Context(), id, idx)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"item": item})
}

// GET /api/bundles/:id/progress
func (h *BundleHandler) GetProgress(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	p, err := h.bundles.GetProgress(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundle_id": id, "progress": p})
}

// GET /api/bundles/:id/events?limit=N
func (h *BundleHandler) ListEvents(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	events, err := h.bundles.ListEvents(c.Request.Context(), id, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}

// GET /api/owners/:address/bundles
func (h *BundleHandler) ListByOwner(c *gin.Context) {
	views, err := h.bundles.ListByOwner(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bundles": views})
}
