package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/domain/wear"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

// RecordProduction adds pieces to an active tool, reclassifies it and appends
// one ledger entry dated date (today when date is zero). Entries for the same
// day are kept apart.
func (s *Service) RecordProduction(ctx context.Context, id string, pieces int64, date models.Date) (tool *models.Tool, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(opRecordProduction, started, err) }()

	if pieces <= 0 {
		return nil, fmt.Errorf("pieces must be positive, got %d: %w", pieces, apperrors.ErrInvalidInput)
	}
	if date.IsZero() {
		date = models.DateOf(s.now())
	}

	unlock := s.locks.Lock(toolKey(id))
	defer unlock()

	var previous models.Condition
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		t, err := activeTool(ctx, tx, id)
		if err != nil {
			return err
		}
		if pieces > maxCounter-t.AccumulatedProduction {
			return fmt.Errorf("pieces %d overflow the counter of tool %s: %w", pieces, id, apperrors.ErrInvalidInput)
		}

		previous = t.Condition
		t.AccumulatedProduction += pieces
		wear.Apply(t)
		t.UpdatedAt = s.now()

		if err := tx.UpdateTool(ctx, t); err != nil {
			return err
		}
		entry := models.ProductionEntry{Pieces: pieces, Date: date}
		if err := tx.AppendProduction(ctx, t.ID, entry); err != nil {
			return err
		}

		t.ProductionHistory = append(t.ProductionHistory, entry)
		tool = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record production: %w", err)
	}

	s.metrics.AddPieces(pieces)
	s.logger.Debug("production recorded",
		zap.String("id", tool.ID),
		zap.Int64("pieces", pieces),
		zap.String("date", date.String()),
		zap.Int64("accumulated", tool.AccumulatedProduction))

	if tool.Condition != previous {
		s.logger.Warn("tool condition changed",
			zap.String("mold_id", tool.MoldID),
			zap.String("tool_id", tool.ToolID),
			zap.String("from", string(previous)),
			zap.String("to", string(tool.Condition)))
	}
	return tool, nil
}
