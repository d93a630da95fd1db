package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/logger"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// errorHandler renders errors as JSON with a status derived from the
// domain error they wrap.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusFor(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if err := c.JSON(code, errorResponse{Error: msg, Reason: domain.ReasonCode(err)}); err != nil {
		logger.Warn("write error response: %v", err)
	}
}

func statusFor(err error) int {
	var (
		embedErr *domain.EmbeddingError
		genErr   *domain.GenerationError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoSources):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoValidSources):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrIndexAbsent), errors.Is(err, domain.ErrNoInteraction):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &embedErr), errors.As(err, &genErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
