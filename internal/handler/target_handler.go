package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"qrstats/internal/domain"
	"qrstats/internal/service"
	"qrstats/pkg/logger"
)

// StatsPasswordHeader carries the stats credential on GET requests
const StatsPasswordHeader = "X-Stats-Password"

// TargetHandler handles HTTP requests for tracked short links
type TargetHandler struct {
	service service.TargetService
	logger  *logger.Logger
}

// NewTargetHandler creates a new target handler with dependencies
func NewTargetHandler(service service.TargetService, logger *logger.Logger) *TargetHandler {
	return &TargetHandler{
		service: service,
		logger:  logger,
	}
}

// CreateTarget handles POST /create and POST /api/v1/targets
// Accepts a JSON or form body with url and optional password and id
func (h *TargetHandler) CreateTarget(c *gin.Context) {
	var req domain.CreateTargetRequest

	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	response, err := h.service.CreateTarget(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Redirect handles GET /redirect/:id
func (h *TargetHandler) Redirect(c *gin.Context) {
	id := c.Param("id")

	target, err := h.service.Resolve(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Temporary redirect: every visit must pass through the counter
	c.Redirect(http.StatusFound, target)
}

// GetStats handles GET /stats/:id
// The credential is read from the X-Stats-Password header or the pw query parameter
func (h *TargetHandler) GetStats(c *gin.Context) {
	credential := c.GetHeader(StatsPasswordHeader)
	if credential == "" {
		credential = c.Query("pw")
	}

	h.respondStats(c, c.Param("id"), credential)
}

// PostStats handles POST /stats/:id with the password in the body
func (h *TargetHandler) PostStats(c *gin.Context) {
	var req domain.StatsRequest
	if !h.bindStats(c, &req) {
		return
	}

	h.respondStats(c, c.Param("id"), req.Credential())
}

// StatsLogin handles POST /stats with both id and password in the body
func (h *TargetHandler) StatsLogin(c *gin.Context) {
	var req domain.StatsRequest
	if !h.bindStats(c, &req) {
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_request",
			Message: "Identifier is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	h.respondStats(c, id, req.Credential())
}

// bindStats binds a stats body; an empty body is treated as no credential
func (h *TargetHandler) bindStats(c *gin.Context, req *domain.StatsRequest) bool {
	if c.Request.ContentLength == 0 {
		return true
	}

	if err := c.ShouldBind(req); err != nil {
		h.logger.Warn("Invalid stats request body", "error", err)
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return false
	}
	return true
}

func (h *TargetHandler) respondStats(c *gin.Context, id, credential string) {
	stats, err := h.service.GetStats(c.Request.Context(), id, credential)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleError processes domain errors and returns appropriate HTTP responses
func (h *TargetHandler) handleError(c *gin.Context, err error) {
	var appErr *domain.AppError
	var storeErr *domain.StoreError

	switch {
	case errors.As(err, &appErr):
		// Log internal errors but don't expose details to users
		if appErr.Internal {
			h.logger.Error("Internal server error", "error", appErr.Err)
			c.JSON(appErr.StatusCode, domain.ErrorResponse{
				Error:   "internal_error",
				Message: "An internal error occurred",
				Code:    appErr.StatusCode,
			})
		} else {
			code := "invalid_request"
			if errors.Is(appErr, domain.ErrIDTaken) {
				code = "id_taken"
			}
			c.JSON(appErr.StatusCode, domain.ErrorResponse{
				Error:   code,
				Message: appErr.Message,
				Code:    appErr.StatusCode,
			})
		}

	case errors.Is(err, domain.ErrTargetNotFound):
		c.JSON(http.StatusNotFound, domain.ErrorResponse{
			Error:   "not_found",
			Message: "No target exists for this identifier",
			Code:    http.StatusNotFound,
		})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, domain.ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid password",
			Code:    http.StatusUnauthorized,
		})

	case errors.Is(err, domain.ErrGenerationExhausted):
		h.logger.Error("Identifier generation exhausted", "error", err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "generation_exhausted",
			Message: "Could not allocate an identifier, please retry the request",
			Code:    http.StatusInternalServerError,
		})

	case errors.As(err, &storeErr):
		h.logger.Error("Store failure", "op", storeErr.Op, "error", storeErr.Err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
			Code:    http.StatusInternalServerError,
		})

	default:
		h.logger.Error("Unexpected error", "error", err)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "internal_error",
			Message: "An unexpected error occurred",
			Code:    http.StatusInternalServerError,
		})
	}
}
