package echo

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-pipeline/internal/application/user"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

const uploadField = "file"

type ImportHandler struct {
	useCase app.ImportUsersFromSpreadsheet
}

type importResponse struct {
	Success      bool                      `json:"success"`
	Message      string                    `json:"message,omitempty"`
	TotalRecords int64                     `json:"totalRecords"`
	SuccessCount int64                     `json:"successCount"`
	FailCount    int64                     `json:"failCount"`
	Failures     []app.ImportFailureOutput `json:"failures,omitempty"`
}

func NewImportHandler(useCase app.ImportUsersFromSpreadsheet) *ImportHandler {
	return &ImportHandler{useCase: useCase}
}

// Upload ingests an .xlsx workbook synchronously and answers with the tally.
func (h *ImportHandler) Upload(c echo.Context) error {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return fail(c, http.StatusBadRequest, "multipart field \"file\" is required")
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		return fail(c, http.StatusBadRequest, "only .xlsx files are supported")
	}

	file, err := header.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "failed to read uploaded file")
	}
	defer file.Close()

	out, err := h.useCase.Execute(c.Request().Context(), app.ImportUsersFromSpreadsheetInput{
		Content: file,
		Details: detailsRequested(c),
	})
	resp := importResponse{
		TotalRecords: out.TotalRecords,
		SuccessCount: out.SuccessCount,
		FailCount:    out.FailCount,
		Failures:     out.Failures,
	}
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedFormat):
			resp.Message = "No valid Excel file found"
			return c.JSON(http.StatusBadRequest, resp)
		default:
			resp.Message = "Error processing file"
			return c.JSON(http.StatusInternalServerError, resp)
		}
	}

	resp.Success = true
	resp.Message = "File uploaded successfully"
	return c.JSON(http.StatusOK, resp)
}
