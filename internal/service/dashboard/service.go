package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/observability/metrics"
	"github.com/mamadbah2/toolwear/internal/repository"
)

// Report is a computed dashboard together with the records it was built from.
type Report struct {
	models.Dashboard
	Tools       []models.Tool
	SwapHistory []models.SwapEvent
	Scrap       []models.ScrapEntry
}

// Service loads the current records and aggregates them.
type Service struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService constructs a dashboard service.
func NewService(store repository.Store, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, metrics: m, logger: logger}
}

// Report loads tools, swaps and scrap concurrently and computes the
// dashboard for the month containing ref.
func (s *Service) Report(ctx context.Context, ref time.Time) (*Report, error) {
	var in Input

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tools, err := s.store.ListActiveTools(gctx)
		if err != nil {
			return fmt.Errorf("load tools: %w", err)
		}
		in.Tools = tools
		return nil
	})
	g.Go(func() error {
		swaps, err := s.store.ListSwaps(gctx)
		if err != nil {
			return fmt.Errorf("load swap history: %w", err)
		}
		in.Swaps = swaps
		return nil
	})
	g.Go(func() error {
		scrap, err := s.store.ListScrap(gctx)
		if err != nil {
			return fmt.Errorf("load scrap: %w", err)
		}
		in.Scrap = scrap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	dash := Compute(in, ref)

	counts := make(map[string]int, len(dash.Charts.StatusCounts))
	for c, n := range dash.Charts.StatusCounts {
		counts[string(c)] = n
	}
	s.metrics.SetConditionCounts(counts)

	s.logger.Debug("dashboard computed",
		zap.String("month", dash.Month.String()),
		zap.Int("tools", len(in.Tools)),
		zap.Int("tools_in_alert", dash.KPIs.ToolsInAlert),
	)

	return &Report{Dashboard: dash, Tools: in.Tools, SwapHistory: in.Swaps, Scrap: in.Scrap}, nil
}
