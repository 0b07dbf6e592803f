package molds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

// Service keeps the free-text log attached to molds.
type Service struct {
	store  repository.CommentStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a mold comment service.
func NewService(store repository.CommentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// AddComment appends a comment to a mold. A zero date means today.
func (s *Service) AddComment(ctx context.Context, moldID, text string, date models.Date) (*models.MoldComment, error) {
	moldID = strings.TrimSpace(moldID)
	text = strings.TrimSpace(text)
	if moldID == "" || text == "" {
		return nil, fmt.Errorf("moldId and comment are required: %w", apperrors.ErrInvalidInput)
	}

	now := s.now()
	if date.IsZero() {
		date = models.DateOf(now)
	}

	comment := &models.MoldComment{MoldID: moldID, Text: text, Date: date, CreatedAt: now}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("add mold comment: %w", err)
	}

	s.logger.Debug("mold comment added", zap.String("mold_id", moldID), zap.String("date", date.String()))
	return comment, nil
}

// Comments returns the comments of a mold grouped by day, newest first within
// each day. Unknown molds yield an empty map.
func (s *Service) Comments(ctx context.Context, moldID string) (map[models.Date][]string, error) {
	comments, err := s.store.ListComments(ctx, strings.TrimSpace(moldID))
	if err != nil {
		return nil, fmt.Errorf("get mold comments: %w", err)
	}

	grouped := make(map[models.Date][]string)
	for _, c := range comments {
		grouped[c.Date] = append(grouped[c.Date], c.Text)
	}
	return grouped, nil
}
