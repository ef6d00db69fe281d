package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lambdaless-api/internal/models"
	"github.com/rs/zerolog"
)

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Index      *int   `json:"index,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// writeError maps an error kind to its status code
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	resp := errorResponse{RequestID: requestMeta(c).RequestID}

	var ve *models.ValidationError
	var status int
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp.Error = ve.Message
		resp.Field = ve.Field
		resp.Constraint = ve.Constraint
		resp.Index = ve.Index
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
		resp.Error = "resource already exists"
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "resource not found"
	case errors.Is(err, models.ErrStoreUnavailable), errors.Is(err, models.ErrSinkUnavailable):
		status = http.StatusServiceUnavailable
		resp.Error = "backend unavailable"
		log.Error().Err(err).Str("request_id", resp.RequestID).Msg("Backend unavailable")
	default:
		status = http.StatusInternalServerError
		resp.Error = "internal server error"
		log.Error().Err(err).Str("request_id", resp.RequestID).Msg("Request failed")
	}

	c.JSON(status, resp)
}

// readBody reads at most limit bytes of the request body. It writes a 413
// response and returns false when the body is larger.
func readBody(c *gin.Context, limit int64) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error:     "request body too large",
				RequestID: requestMeta(c).RequestID,
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:     "failed to read request body",
			RequestID: requestMeta(c).RequestID,
		})
		return nil, false
	}
	return body, true
}
