package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	apperrors "github.com/wekeepgrowing/board-server/pkg/errors"
)

// Response is the envelope of every API response.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Data       interface{}       `json:"data,omitempty"`
	Paging     *entity.Paging    `json:"paging,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func respondPage(c echo.Context, message string, data interface{}, paging entity.Paging) error {
	return c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
		Paging:     &paging,
	})
}

// NewErrorHandler renders errors in the response envelope. Server errors are
// logged with their cause and reach the client as a bare status text.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := apperrors.ToHTTPError(err)
		message, ok := he.Message.(string)
		if !ok {
			message = http.StatusText(he.Code)
		}

		body := Response{StatusCode: he.Code, Message: message}
		var appErr *apperrors.AppError
		if apperrors.As(err, &appErr) && len(appErr.Details()) > 0 {
			body.Errors = appErr.Details()
		}

		if he.Code >= http.StatusInternalServerError {
			apperrors.LogError(logger, err, "Request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}
