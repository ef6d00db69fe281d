package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/service"
	"github.com/rs/zerolog"
)

// WebhookHandler receives SendGrid event webhook batches
type WebhookHandler struct {
	services *service.Services
	maxBody  int64
	log      zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		services: services,
		maxBody:  bodyLimit(cfg),
		log:      log.With().Str("handler", "webhook").Logger(),
	}
}

// ReceiveEvents handles POST /sendgrid. The whole batch is delivered as
// one record or rejected.
func (h *WebhookHandler) ReceiveEvents(c *gin.Context) {
	body, ok := readBody(c, h.maxBody)
	if !ok {
		return
	}

	result, err := h.services.Webhook.Deliver(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
