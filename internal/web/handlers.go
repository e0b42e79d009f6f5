package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tanachan3/looqn-all/internal/request"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleMessages runs the full pipeline for one request. Only the
// invalid-coordinate precondition and a missing model credential are
// surfaced as errors; degraded runs return 200 with fewer (possibly
// zero) messages.
func (s *Server) handleMessages(c echo.Context) error {
	var payload request.Payload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "invalid-argument",
			Message: "request body must be valid JSON",
		})
	}

	result, err := s.runner.Run(c.Request().Context(), payload)
	if err != nil {
		if errors.Is(err, request.ErrInvalidPosition) {
			return c.JSON(http.StatusBadRequest, errorResponse{
				Code:    "invalid-argument",
				Message: err.Error(),
			})
		}
		s.log.Error("pipeline run failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    "internal",
			Message: "an error occurred while generating messages",
		})
	}

	return c.JSON(http.StatusOK, result)
}
