package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/stockwise/backend/internal/application/sync"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/logger"
	"github.com/stockwise/backend/internal/interfaces/http/dto"
)

// SyncRunner runs resyncs and reports on them
type SyncRunner interface {
	Run(ctx context.Context, syncType integration.SyncType) (*syncapp.SyncReport, error)
	Running() bool
	LastReport() (*syncapp.SyncReport, bool)
}

// SyncHandler exposes the resync trigger
type SyncHandler struct {
	BaseHandler
	runner SyncRunner
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(runner SyncRunner) *SyncHandler {
	return &SyncHandler{runner: runner}
}

// Trigger runs a resync and waits for it.
//
//	POST /api/v1/sync?type=full|products|locations|sales|inventory
//
// 200 with the report on success, 429 while another sync is running,
// 500 with the failed report otherwise. type defaults to full.
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, integration.ErrInvalidSyncType.Error())
		return
	}

	syncType := integration.SyncTypeFull
	if req.Type != "" {
		parsed, err := integration.ParseSyncType(req.Type)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		syncType = parsed
	}

	// the run is not tied to the client connection
	ctx := context.WithoutCancel(c.Request.Context())
	report, err := h.runner.Run(ctx, syncType)
	switch {
	case errors.Is(err, syncapp.ErrSyncInProgress):
		h.HandleError(c, err)
	case err != nil:
		logger.GetGinLogger(c).Error("Sync trigger failed", zap.String("type", syncType.String()), zap.Error(err))
		_ = c.Error(err)
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeSyncFailed, "Sync failed", getRequestID(c))
		if report != nil {
			resp = resp.WithData(report)
		}
		c.JSON(http.StatusInternalServerError, resp)
	default:
		h.Success(c, report)
	}
}

// Status reports whether a sync is running and the outcome of the last one.
//
//	GET /api/v1/sync/status
func (h *SyncHandler) Status(c *gin.Context) {
	resp := dto.SyncStatusResponse{Running: h.runner.Running()}
	if last, ok := h.runner.LastReport(); ok {
		resp.LastReport = last
	}
	h.Success(c, resp)
}
