package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/locvowork/dropdown_export/internal/logger"
	"github.com/locvowork/dropdown_export/internal/service"
	"github.com/locvowork/dropdown_export/internal/service/serviceutils"
	"github.com/locvowork/dropdown_export/pkg/dropdown"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxPreviewBytes = 1 << 20
)

// TemplateService is what the handler needs from the template layer.
type TemplateService interface {
	ListTemplates(ctx context.Context) ([]domain.TemplateSummary, error)
	Render(ctx context.Context, name string) ([]byte, error)
	RenderYAML(ctx context.Context, yamlConfig []byte) ([]byte, error)
}

type TemplateHandler struct {
	svc TemplateService
}

func NewTemplateHandler(svc TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// ListHandler handles GET /templates
func (h *TemplateHandler) ListHandler(c echo.Context) error {
	templates, err := h.svc.ListTemplates(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list templates", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Templates listed successfully", templates)
}

// DownloadHandler handles GET /templates/:name
func (h *TemplateHandler) DownloadHandler(c echo.Context) error {
	name := c.Param("name")
	data, err := h.svc.Render(c.Request().Context(), name)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to generate excel file", err)
	}
	return writeWorkbook(c, name+".xlsx", data)
}

// PreviewHandler handles POST /templates/preview with a YAML template body.
func (h *TemplateHandler) PreviewHandler(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPreviewBytes+1))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if len(body) > maxPreviewBytes {
		return serviceutils.ResponseError(c, http.StatusRequestEntityTooLarge, "Template is too large", nil)
	}

	data, err := h.svc.RenderYAML(c.Request().Context(), body)
	if err != nil {
		return serviceutils.ResponseError(c, statusFor(err), "Failed to generate excel file", err)
	}
	return writeWorkbook(c, "preview.xlsx", data)
}

// HealthHandler handles GET /healthz
func (h *TemplateHandler) HealthHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "ok", nil)
}

func writeWorkbook(c echo.Context, filename string, data []byte) error {
	logger.InfoLog(c.Request().Context(), "sending %s (%d bytes)", filename, len(data))

	c.Response().Header().Set("Content-Type", xlsxContentType)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")

	_, err := c.Response().Write(data)
	return err
}

// statusFor maps template and dropdown errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, domain.ErrDictionaryNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTemplate),
		errors.Is(err, dropdown.ErrInvalidOptionValue),
		errors.Is(err, dropdown.ErrDescriptorConflict),
		errors.Is(err, dropdown.ErrColumnOutOfRange),
		errors.Is(err, dropdown.ErrNameCollision):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
