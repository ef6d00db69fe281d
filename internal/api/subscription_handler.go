package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

// SubscriptionHandler handles email subscription endpoints
type SubscriptionHandler struct {
	services *service.Services
	maxBody  int64
	log      zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		services: services,
		maxBody:  bodyLimit(cfg),
		log:      log.With().Str("handler", "subscription").Logger(),
	}
}

// Subscribe handles POST /subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	body, ok := readBody(c, h.maxBody)
	if !ok {
		return
	}

	var req models.SubscribeRequest
	if err := validation.Decode(body, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	sub, err := h.services.Subscription.Subscribe(c.Request.Context(), &req, requestMeta(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}
