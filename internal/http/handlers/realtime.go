package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sunft-backend/internal/http/response"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
	"github.com/yungbote/sunft-backend/internal/realtime"
	"github.com/yungbote/sunft-backend/internal/services"
)

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.Hub
	bundles services.BundleService
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, bundles services.BundleService) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		bundles: bundles,
	}
}

// GET /api/bundles/:id/stream
func (h *RealtimeHandler) BundleStream(c *gin.Context) {
	id, ok := bundleIDParam(c)
	if !ok {
		return
	}
	if _, err := h.bundles.GetBundle(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	h.serve(c, realtime.BundleChannel(id))
}

// GET /api/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	h.serve(c, realtime.ChannelAll)
}

func (h *RealtimeHandler) serve(c *gin.Context, channel string) {
	client := h.hub.NewClient()
	h.hub.AddChannel(client, channel)
	h.log.Debug("stream open", "client_id", client.ID, "channel", channel)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("stream closed", "client_id", client.ID, "channel", channel)
}
