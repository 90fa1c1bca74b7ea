// Package web is the HTTP edge: gin routing, request decoding and the
// mapping from pipeline/service errors to the status-code contract.
// Handlers stay thin; every decision lives in the services underneath.
package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/image-cloud/api/internal/common"
	"github.com/image-cloud/api/internal/logging"
	"github.com/image-cloud/api/internal/server/auth"
	"github.com/image-cloud/api/internal/server/config"
	"github.com/image-cloud/api/internal/server/images"
	"github.com/image-cloud/api/internal/server/users"
)

type Handler struct {
	cfg      *config.Config
	logger   logging.Logger
	pipeline *auth.Pipeline
	users    *users.Service
	images   *images.Service
}

func NewHandler(cfg *config.Config, logger logging.Logger, pipeline *auth.Pipeline, us *users.Service, is *images.Service) *Handler {
	return &Handler{
		cfg:      cfg,
		logger:   logger.With("module", "web"),
		pipeline: pipeline,
		users:    us,
		images:   is,
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": true, "message": message})
}

// token returns the bearer token exactly as sent: an opaque string in the
// Authorization header, no scheme prefix.
func token(c *gin.Context) string {
	return c.GetHeader("Authorization")
}

// authenticate resolves the request's token or writes the failure response:
// 401 when no token was sent, 403 when the token resolves to nothing.
func (h *Handler) authenticate(c *gin.Context) (*users.User, bool) {
	user, err := h.pipeline.Authenticate(c.Request.Context(), token(c))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoToken):
			fail(c, http.StatusUnauthorized, "No token provided.")
		case errors.Is(err, common.ErrInvalidToken):
			fail(c, http.StatusForbidden, "Invalid token.")
		default:
			h.logger.Error(c.Request.Context(), "authentication failed", "error", err)
			fail(c, http.StatusInternalServerError, "Internal error.")
		}
		return nil, false
	}
	return user, true
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
