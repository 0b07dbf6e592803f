package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

// CommentService keeps the per-mold comment log.
type CommentService interface {
	AddComment(ctx context.Context, moldID, text string, date models.Date) (*models.MoldComment, error)
	Comments(ctx context.Context, moldID string) (map[models.Date][]string, error)
}

// ScrapService is the monthly scrap ledger.
type ScrapService interface {
	RecordScrap(ctx context.Context, moldID, monthYear string, quantity int64) (*models.ScrapEntry, error)
	ScrapByMonth(ctx context.Context) (models.ScrapTable, error)
}

// MoldHandler exposes the mold-level logs: comments and scrap.
type MoldHandler struct {
	comments CommentService
	scrap    ScrapService
	clock    clock
	logger   *zap.Logger
}

// NewMoldHandler constructs the mold HTTP adapter.
func NewMoldHandler(comments CommentService, scrap ScrapService, loc *time.Location, logger *zap.Logger) *MoldHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoldHandler{comments: comments, scrap: scrap, clock: newClock(loc), logger: logger}
}

// AddComment appends a comment to a mold, dated today unless a date is given.
func (h *MoldHandler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "invalid comment payload")
		return
	}
	date, err := h.clock.parseOptionalDate(req.Date)
	if err != nil {
		badRequest(c, h.logger, err, "date must be DD/MM/YYYY")
		return
	}

	if _, err := h.comments.AddComment(c.Request.Context(), req.MoldID, req.Comment, date); err != nil {
		respondError(c, h.logger, err, "add mold comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment added"})
}

// Comments returns a mold's comments grouped by DD/MM/YYYY.
func (h *MoldHandler) Comments(c *gin.Context) {
	grouped, err := h.comments.Comments(c.Request.Context(), c.Param("moldId"))
	if err != nil {
		respondError(c, h.logger, err, "get mold comments")
		return
	}
	c.JSON(http.StatusOK, newCommentsResponse(grouped))
}

// RecordScrap upserts the scrap quantity of a mold for a month.
func (h *MoldHandler) RecordScrap(c *gin.Context) {
	var req scrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err, "invalid scrap payload")
		return
	}

	if _, err := h.scrap.RecordScrap(c.Request.Context(), req.MoldID, req.MonthYear, req.Quantity); err != nil {
		respondError(c, h.logger, err, "record scrap")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "scrap recorded"})
}

// Scrap returns MM/YYYY -> mold -> quantity.
func (h *MoldHandler) Scrap(c *gin.Context) {
	table, err := h.scrap.ScrapByMonth(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "get scrap data")
		return
	}
	c.JSON(http.StatusOK, newScrapResponse(table))
}
