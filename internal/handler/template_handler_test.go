package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/dropdown_export/internal/repository"
	"github.com/locvowork/dropdown_export/internal/service"
	"github.com/locvowork/dropdown_export/internal/service/serviceutils"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const statusTemplate = `
sheets:
  - name: Tasks
    columns:
      - field_name: Status
        header: Status
        dropdown:
          dictionary: status
`

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.yaml"), []byte(statusTemplate), 0o644))

	dict, err := repository.ParseStaticDictionary([]byte("status:\n  - value: Open\n  - value: Closed\n"))
	require.NoError(t, err)

	h := NewTemplateHandler(service.NewTemplateService(dict, dir, 2))
	e := echo.New()
	e.GET("/healthz", h.HealthHandler)
	e.GET("/templates", h.ListHandler)
	e.GET("/templates/:name", h.DownloadHandler)
	e.POST("/templates/preview", h.PreviewHandler)
	return e
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) serviceutils.APIResponse {
	t.Helper()
	var resp serviceutils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDownloadHandler(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/templates/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="tasks.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	dvs, err := f.GetDataValidations("Tasks")
	require.NoError(t, err)
	require.Len(t, dvs, 1)
	require.Equal(t, `"Open,Closed"`, dvs[0].Formula1)
}

func TestDownloadHandlerNotFound(t *testing.T) {
	rec := serve(newTestServer(t), http.MethodGet, "/templates/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "template not found")
}

func TestPreviewHandler(t *testing.T) {
	e := newTestServer(t)

	rec := serve(e, http.MethodPost, "/templates/preview", statusTemplate)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `attachment; filename="preview.xlsx"`, rec.Header().Get("Content-Disposition"))

	rec = serve(e, http.MethodPost, "/templates/preview", "sheets: [")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// "A1" cannot name the range of its children.
	cascade := `
sheets:
  - name: Grid
    columns:
      - field_name: Cell
        dropdown: {options: [A1]}
      - field_name: Sub
        dropdown: {depends_on: Cell, children: {A1: [x]}}
`
	rec = serve(e, http.MethodPost, "/templates/preview", cascade)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec).Error, "invalid option value")

	rec = serve(e, http.MethodPost, "/templates/preview", strings.Repeat("#", maxPreviewBytes+1))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListAndHealthHandlers(t *testing.T) {
	e := newTestServer(t)

	rec := serve(e, http.MethodGet, "/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, []interface{}{
		map[string]interface{}{"name": "tasks", "sheets": []interface{}{"Tasks"}},
	}, resp.Data)

	rec = serve(e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode(t, rec).Success)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, statusFor(os.ErrPermission))
	require.Equal(t, http.StatusNotFound, statusFor(service.ErrTemplateNotFound))
}
