package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

// clock supplies "now" in the plant's timezone.
type clock struct {
	loc *time.Location
	now func() time.Time
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.Local
	}
	return clock{loc: loc, now: time.Now}
}

func (c clock) today() models.Date {
	return models.DateOf(c.now().In(c.loc))
}

// parseOptionalDate reads a DD/MM/YYYY value, falling back to today when empty.
func (c clock) parseOptionalDate(value string) (models.Date, error) {
	if value == "" {
		return c.today(), nil
	}
	return models.ParseDate(value)
}

// respondError maps service errors onto HTTP statuses. Unclassified errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("failed to "+action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, err error, message string) {
	logger.Warn(message, zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
