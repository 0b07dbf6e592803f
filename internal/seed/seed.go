// Package seed loads the demonstration data set into an empty store.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/domain/wear"
	"github.com/mamadbah2/toolwear/internal/repository"
)

type toolSeed struct {
	moldID, toolID string
	usefulLife     int64
	accumulated    int64
	notes          string
}

type swapSeed struct {
	moldID, toolID string
	before         int64
	at             string // YYYY-MM-DD HH:MM:SS, plant local time
}

type commentSeed struct {
	moldID, text, date string
}

type scrapSeed struct {
	moldID, month string
	quantity      int64
}

var (
	tools = []toolSeed{
		{"MOLDE-A", "FER-A1", 100000, 85000, "Ferramenta de precisão."},
		{"MOLDE-A", "FER-A2", 150000, 30000, ""},
		{"MOLDE-B", "FER-B1", 200000, 144000, "Verificar desgaste a cada 10k peças."},
		{"MOLDE-C", "FER-C1", 120000, 12000, ""},
		{"MOLDE-D", "FER-D1", 120000, 115000, ""},
		{"MOLDE-E", "FER-E1", 100000, 95000, "Urgente!"},
	}
	swaps = []swapSeed{
		{"MOLDE-B", "FER-B1-OLD", 200000, "2025-07-15 10:30:00"},
		{"MOLDE-A", "FER-A1-OLD", 100000, "2025-08-01 14:00:00"},
		{"MOLDE-A", "FER-A2-OLD", 150000, "2025-08-10 08:00:00"},
		{"MOLDE-E", "FER-E1-OLD", 100000, "2025-08-12 09:00:00"},
		{"MOLDE-B", "FER-B1-NEW", 180000, "2025-08-20 11:00:00"},
	}
	comments = []commentSeed{
		{"MOLDE-A", "Início de produção com lote novo de matéria-prima.", "20/08/2025"},
		{"MOLDE-A", "Pequeno ajuste de pressão realizado às 14h.", "21/08/2025"},
		{"MOLDE-A", "Verificar rebarba nas próximas 1000 peças.", "21/08/2025"},
		{"MOLDE-B", "Manutenção preventiva realizada.", "22/07/2025"},
	}
	scrap = []scrapSeed{
		{"MOLDE-B", "07/2025", 1200},
		{"MOLDE-A", "08/2025", 550},
		{"MOLDE-E", "08/2025", 250},
	}
)

const swapLayout = "2006-01-02 15:04:05"

// Load writes the demonstration data set when the store holds no active
// tools. It reports whether anything was written. Tool conditions are
// classified from their counters; each tool gets one production entry dated
// the day of now.
func Load(ctx context.Context, store repository.Store, now time.Time, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := store.ListActiveTools(ctx)
	if err != nil {
		return false, fmt.Errorf("check existing tools: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("store already populated, skipping seed", zap.Int("tools", len(existing)))
		return false, nil
	}

	err = store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		today := models.DateOf(now)
		for _, s := range tools {
			t := &models.Tool{
				ID:                    uuid.NewString(),
				MoldID:                s.moldID,
				ToolID:                s.toolID,
				UsefulLife:            s.usefulLife,
				AccumulatedProduction: s.accumulated,
				Notes:                 s.notes,
				IsActive:              true,
				CreatedAt:             now,
				UpdatedAt:             now,
			}
			wear.Apply(t)
			if err := tx.CreateTool(ctx, t); err != nil {
				return err
			}
			if err := tx.AppendProduction(ctx, t.ID, models.ProductionEntry{Pieces: s.accumulated, Date: today}); err != nil {
				return err
			}
		}

		for _, s := range swaps {
			at, err := time.ParseInLocation(swapLayout, s.at, now.Location())
			if err != nil {
				return fmt.Errorf("seed swap time %q: %w", s.at, err)
			}
			ev := &models.SwapEvent{
				ID:                   uuid.Must(uuid.NewV7()).String(),
				MoldID:               s.moldID,
				ToolID:               s.toolID,
				ProductionBeforeSwap: s.before,
				SwappedAt:            at,
			}
			if err := tx.InsertSwap(ctx, ev); err != nil {
				return err
			}
		}

		for i, s := range comments {
			date, err := models.ParseDate(s.date)
			if err != nil {
				return err
			}
			c := &models.MoldComment{MoldID: s.moldID, Text: s.text, Date: date, CreatedAt: now.Add(time.Duration(i) * time.Second)}
			if err := tx.InsertComment(ctx, c); err != nil {
				return err
			}
		}

		for _, s := range scrap {
			month, err := models.ParseMonthYear(s.month)
			if err != nil {
				return err
			}
			if err := tx.UpsertScrap(ctx, &models.ScrapEntry{MoldID: s.moldID, Month: month, Quantity: s.quantity, UpdatedAt: now}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed store: %w", err)
	}

	logger.Info("demo data loaded",
		zap.Int("tools", len(tools)),
		zap.Int("swaps", len(swaps)),
		zap.Int("comments", len(comments)),
		zap.Int("scrap_entries", len(scrap)))
	return true, nil
}
