package scrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/observability/metrics"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/internal/service/keylock"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

const opRecordScrap = "record_scrap"

// Service is the scrap ledger: one quantity per (mold, month).
type Service struct {
	store   repository.ScrapStore
	locks   *keylock.Locker
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a scrap ledger.
func NewService(store repository.ScrapStore, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, locks: keylock.New(), metrics: m, logger: logger, now: time.Now}
}

// RecordScrap stores quantity for moldID in monthYear (MM/YYYY), replacing
// any earlier quantity for the same month.
func (s *Service) RecordScrap(ctx context.Context, moldID, monthYear string, quantity int64) (entry *models.ScrapEntry, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(opRecordScrap, started, err) }()

	moldID = strings.TrimSpace(moldID)
	if moldID == "" {
		return nil, fmt.Errorf("moldId is required: %w", apperrors.ErrInvalidInput)
	}
	month, err := models.ParseMonthYear(monthYear)
	if err != nil {
		return nil, fmt.Errorf("monthYear must be MM/YYYY: %v: %w", err, apperrors.ErrInvalidInput)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d: %w", quantity, apperrors.ErrInvalidInput)
	}

	unlock := s.locks.Lock("scrap:" + moldID + "/" + month.Key())
	defer unlock()

	entry = &models.ScrapEntry{MoldID: moldID, Month: month, Quantity: quantity, UpdatedAt: s.now()}
	if err := s.store.UpsertScrap(ctx, entry); err != nil {
		return nil, fmt.Errorf("record scrap: %w", err)
	}

	s.metrics.SetScrap(moldID, quantity)
	s.logger.Info("scrap recorded", zap.String("mold_id", moldID), zap.String("month", month.String()), zap.Int64("quantity", quantity))
	return entry, nil
}

// ScrapByMonth returns month -> mold -> quantity.
func (s *Service) ScrapByMonth(ctx context.Context) (models.ScrapTable, error) {
	entries, err := s.store.ListScrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scrap: %w", err)
	}
	return Group(entries), nil
}

// Group arranges scrap entries by month, then mold.
func Group(entries []models.ScrapEntry) models.ScrapTable {
	table := make(models.ScrapTable)
	for _, e := range entries {
		byMold, ok := table[e.Month]
		if !ok {
			byMold = make(map[string]int64)
			table[e.Month] = byMold
		}
		byMold[e.MoldID] = e.Quantity
	}
	return table
}
