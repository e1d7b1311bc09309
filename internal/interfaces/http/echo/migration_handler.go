package echo

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mohammadpnp/user-pipeline/internal/application/migration"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

const defaultRecordsLimit = 100

type MigrationProgress interface {
	Status(ctx context.Context) (domain.MigrationStatus, error)
	Records(ctx context.Context, limit int) ([]migration.RecordOutput, error)
}

type MigrationHandler struct {
	bulk        migration.BulkMigrate
	migrateUser migration.MigrateUser
	progress    MigrationProgress
	maxLimit    int
}

type statusResponse struct {
	Success       bool   `json:"success"`
	TotalUsers    int64  `json:"totalUsers"`
	MigratedUsers int64  `json:"migratedUsers"`
	PendingUsers  int64  `json:"pendingUsers"`
	State         string `json:"state"`
}

type recordsResponse struct {
	Success bool                     `json:"success"`
	Records []migration.RecordOutput `json:"records"`
	Count   int                      `json:"count"`
}

type bulkResponse struct {
	Success      bool                      `json:"success"`
	Message      string                    `json:"message,omitempty"`
	Total        int64                     `json:"total"`
	SuccessCount int64                     `json:"successCount"`
	Failed       int64                     `json:"failed"`
	Failures     []migration.FailureOutput `json:"failures,omitempty"`
}

type migrateUserResponse struct {
	Success bool   `json:"success"`
	Outcome string `json:"outcome,omitempty"`
	Message string `json:"message"`
}

func NewMigrationHandler(bulk migration.BulkMigrate, migrateUser migration.MigrateUser, progress MigrationProgress, maxLimit int) *MigrationHandler {
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	return &MigrationHandler{bulk: bulk, migrateUser: migrateUser, progress: progress, maxLimit: maxLimit}
}

func (h *MigrationHandler) Status(c echo.Context) error {
	status, err := h.progress.Status(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to compute migration status")
	}
	return c.JSON(http.StatusOK, statusResponse{
		Success:       true,
		TotalUsers:    status.TotalUsers,
		MigratedUsers: status.MigratedUsers,
		PendingUsers:  status.PendingUsers,
		State:         string(status.State),
	})
}

func (h *MigrationHandler) Records(c echo.Context) error {
	limit := min(defaultRecordsLimit, h.maxLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fail(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, h.maxLimit)
	}

	records, err := h.progress.Records(c.Request().Context(), limit)
	if err != nil {
		if errors.Is(err, migration.ErrInvalidLimit) {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, http.StatusInternalServerError, "failed to list migrated records")
	}
	return c.JSON(http.StatusOK, recordsResponse{Success: true, Records: records, Count: len(records)})
}

// Bulk runs one migration synchronously. Progress can be polled through
// Status while it runs.
func (h *MigrationHandler) Bulk(c echo.Context) error {
	out, err := h.bulk.Execute(c.Request().Context(), migration.BulkMigrateInput{Details: detailsRequested(c)})
	resp := bulkResponse{
		Total:        out.Total,
		SuccessCount: out.Success,
		Failed:       out.Failed,
		Failures:     out.Failures,
	}
	if err != nil {
		switch {
		case errors.Is(err, migration.ErrNoLegacyUsers):
			resp.Message = "No users found in legacy store"
			return c.JSON(http.StatusOK, resp)
		case errors.Is(err, domain.ErrMigrationInProgress):
			resp.Message = "A migration is already in progress"
			return c.JSON(http.StatusConflict, resp)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			resp.Message = "Migration interrupted; run it again to resume"
			return c.JSON(http.StatusServiceUnavailable, resp)
		default:
			resp.Message = "Migration failed; run it again to resume"
			return c.JSON(http.StatusInternalServerError, resp)
		}
	}

	resp.Success = true
	resp.Message = "Bulk migration completed"
	return c.JSON(http.StatusOK, resp)
}

func (h *MigrationHandler) MigrateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "id must be a positive integer")
	}

	out, err := h.migrateUser.Execute(c.Request().Context(), migration.MigrateUserInput{LegacyID: id})
	if err != nil {
		if errors.Is(err, domain.ErrLegacyUserNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return fail(c, http.StatusInternalServerError, "Failed to migrate user")
	}

	if !out.Migrated() {
		return c.JSON(http.StatusOK, migrateUserResponse{
			Outcome: out.Outcome.String(),
			Message: "Failed to migrate user: " + out.Reason,
		})
	}
	return c.JSON(http.StatusOK, migrateUserResponse{
		Success: true,
		Outcome: out.Outcome.String(),
		Message: "User migrated successfully",
	})
}
