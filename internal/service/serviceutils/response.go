package serviceutils

import (
	"github.com/labstack/echo/v4"
	"github.com/locvowork/dropdown_export/internal/logger"
)

// APIResponse is the JSON envelope of every non-file response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ResponseError logs err and writes it in the error envelope.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		logger.ErrorLog(c.Request().Context(), message, err)
	}
	return c.JSON(status, resp)
}
