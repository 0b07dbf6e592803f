package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/service/tools"
)

// ToolService is the tool lifecycle surface served over HTTP.
type ToolService interface {
	ListActiveTools(ctx context.Context) ([]models.Tool, error)
	CreateTool(ctx context.Context, in tools.CreateToolInput) (*models.Tool, error)
	RecordProduction(ctx context.Context, id string, pieces int64, date models.Date) (*models.Tool, error)
	SwapTool(ctx context.Context, id string) (*models.Tool, error)
	DeleteTool(ctx context.Context, id string) error
	ListSwapHistory(ctx context.Context) ([]models.SwapEvent, error)
}

// ToolHandler exposes tool, production and swap operations.
type ToolHandler struct {
	svc    ToolService
	clock  clock
	logger *zap.Logger
}

// NewToolHandler constructs the tool HTTP adapter.
func NewToolHandler(svc ToolService, loc *time.Location, logger *zap.Logger) *ToolHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolHandler{svc: svc, clock: newClock(loc), logger: logger}
}

// List returns every active tool with its production history.
func (h *ToolHandler) List(c *gin.Context) {
	list, err := h.svc.ListActiveTools(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list tools")
		return
	}
	c.JSON(http.StatusOK, newToolsResponse(list, h.clock.loc))
}

// Create registers a new tool on a mold.
func (h *ToolHandler) Create(c *gin.Context) {
	var req createToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "invalid tool payload")
		return
	}

	tool, err := h.svc.CreateTool(c.Request.Context(), tools.CreateToolInput{
		MoldID:     req.MoldID,
		ToolID:     req.ToolID,
		UsefulLife: req.UsefulLife,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err, "create tool")
		return
	}
	c.JSON(http.StatusCreated, newToolResponse(tool, h.clock.loc))
}

// RecordProduction adds pieces to a tool's counter.
func (h *ToolHandler) RecordProduction(c *gin.Context) {
	var req productionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "invalid production payload")
		return
	}
	date, err := h.clock.parseOptionalDate(req.Date)
	if err != nil {
		badRequest(c, h.logger, err, "date must be DD/MM/YYYY")
		return
	}

	tool, err := h.svc.RecordProduction(c.Request.Context(), c.Param("id"), req.Pieces, date)
	if err != nil {
		respondError(c, h.logger, err, "record production")
		return
	}
	c.JSON(http.StatusOK, newToolResponse(tool, h.clock.loc))
}

// Swap replaces the physical tool and resets its counter.
func (h *ToolHandler) Swap(c *gin.Context) {
	tool, err := h.svc.SwapTool(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "swap tool")
		return
	}
	c.JSON(http.StatusOK, newToolResponse(tool, h.clock.loc))
}

// Delete hard-deletes a tool and its production entries.
func (h *ToolHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteTool(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err, "delete tool")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tool deleted"})
}

// SwapHistory lists swap events, most recent first.
func (h *ToolHandler) SwapHistory(c *gin.Context) {
	swaps, err := h.svc.ListSwapHistory(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "list swap history")
		return
	}
	c.JSON(http.StatusOK, newSwapsResponse(swaps, h.clock.loc))
}
