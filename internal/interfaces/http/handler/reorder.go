package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/application/replenishment"
	"github.com/stockwise/backend/internal/infrastructure/logger"
)

// RecommendationProvider builds the reorder recommendation tree
type RecommendationProvider interface {
	GetRecommendations(ctx context.Context) (*replenishment.RecommendationTree, error)
}

// ReorderHandler serves reorder recommendations
type ReorderHandler struct {
	BaseHandler
	provider RecommendationProvider
}

// NewReorderHandler creates a new ReorderHandler
func NewReorderHandler(provider RecommendationProvider) *ReorderHandler {
	return &ReorderHandler{provider: provider}
}

// GetRecommendations returns the location, product, variation tree.
//
//	GET /api/v1/reorder/recommendations
//
// Every known location is present, with an empty product list when it has
// no stocked items.
func (h *ReorderHandler) GetRecommendations(c *gin.Context) {
	tree, err := h.provider.GetRecommendations(c.Request.Context())
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to build recommendations", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}
