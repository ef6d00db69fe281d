package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lambdaless-api/internal/config"
	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/service"
	"github.com/lambdaless-api/internal/validation"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	maxBody  int64
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		maxBody:  bodyLimit(cfg),
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// CreateComment handles POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	body, ok := readBody(c, h.maxBody)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := validation.Decode(body, &req); err != nil {
		writeError(c, h.log, err)
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), &req, requestMeta(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComment handles GET /comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.services.Comment.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// ListComments handles GET /comments?parent_id=&sort_by=&count=&after=
// Empty count and after values are treated as absent.
func (h *CommentHandler) ListComments(c *gin.Context) {
	q := models.ListCommentsQuery{
		ParentID: c.Query("parent_id"),
		SortBy:   c.Query("sort_by"),
	}

	if raw := strings.TrimSpace(c.Query("count")); raw != "" {
		n, err := validation.Integer("count", raw)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		count := int(n)
		q.Count = &count
	}
	if raw := strings.TrimSpace(c.Query("after")); raw != "" {
		after, err := validation.Integer("after", raw)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		q.After = &after
	}

	page, err := h.services.Comment.List(c.Request.Context(), &q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
