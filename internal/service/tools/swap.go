package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/domain/wear"
	"github.com/mamadbah2/toolwear/internal/repository"
)

// SwapTool closes the current run of an active tool. The counter, condition
// and production entries are reset first; the swap event holding the pre-swap
// total is recorded only once that reset is stored. Each call appends a new event.
func (s *Service) SwapTool(ctx context.Context, id string) (tool *models.Tool, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(opSwapTool, started, err) }()

	unlock := s.locks.Lock(toolKey(id))
	defer unlock()

	var event *models.SwapEvent
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		t, err := activeTool(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		event = &models.SwapEvent{
			ID:                   s.newSwapID(),
			MoldID:               t.MoldID,
			ToolID:               t.ToolID,
			ProductionBeforeSwap: t.AccumulatedProduction,
			SwappedAt:            now,
		}

		t.AccumulatedProduction = 0
		wear.Apply(t)
		t.UpdatedAt = now
		if err := tx.ResetTool(ctx, t); err != nil {
			return err
		}
		if err := tx.InsertSwap(ctx, event); err != nil {
			return err
		}

		t.ProductionHistory = []models.ProductionEntry{}
		tool = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("swap tool: %w", err)
	}

	s.logger.Info("tool swapped",
		zap.String("id", tool.ID),
		zap.String("mold_id", event.MoldID),
		zap.String("tool_id", event.ToolID),
		zap.Int64("production_before_swap", event.ProductionBeforeSwap))
	return tool, nil
}
