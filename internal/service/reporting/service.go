// Package reporting turns dashboard reports into operator digests and
// monthly KPI rows exported to Google Sheets.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	repo "github.com/mamadbah2/toolwear/internal/repository/sheets"
	"github.com/mamadbah2/toolwear/internal/service/dashboard"
)

// ErrExportDisabled is returned by ExportMonth when no spreadsheet is configured.
var ErrExportDisabled = errors.New("sheets export is not configured")

// Reporter computes dashboard reports.
type Reporter interface {
	Report(ctx context.Context, ref time.Time) (*dashboard.Report, error)
}

// Service builds digests and exports from dashboard reports.
type Service struct {
	reporter Reporter
	sheets   repo.Repository
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a reporting service. sheets may be nil, which disables
// ExportMonth.
func NewService(reporter Reporter, sheets repo.Repository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		reporter: reporter,
		sheets:   sheets,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}

// AlertDigest renders the tools currently in alert and the KPIs of the month
// containing ref.
func (s *Service) AlertDigest(ctx context.Context, ref time.Time) (string, error) {
	report, err := s.reporter.Report(ctx, ref.In(s.location))
	if err != nil {
		return "", fmt.Errorf("alert digest: %w", err)
	}

	var alerts []models.Tool
	for _, t := range report.Tools {
		if t.Condition != models.ConditionOK {
			alerts = append(alerts, t)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return usage(alerts[i]) > usage(alerts[j])
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Ferramentas %s\n", report.Month)
	fmt.Fprintf(&b, "Produção no mês: %d peças | Trocas no mês: %d | Em alerta: %d\n",
		report.KPIs.ProductionThisMonth, report.KPIs.SwapsThisMonth, report.KPIs.ToolsInAlert)

	if len(alerts) == 0 {
		b.WriteString("Nenhuma ferramenta em alerta.")
		return b.String(), nil
	}
	for _, t := range alerts {
		fmt.Fprintf(&b, "\n- %s / %s: %s (%d de %d peças, %.0f%%)",
			t.MoldID, t.ToolID, t.Condition.Label(), t.AccumulatedProduction, t.UsefulLife, usage(t)*100)
	}
	return b.String(), nil
}

// ExportMonth appends the KPI row of month to the export sheet. It returns
// false without writing when the sheet already holds a row for month.
func (s *Service) ExportMonth(ctx context.Context, month models.MonthYear) (bool, error) {
	if s.sheets == nil {
		return false, ErrExportDisabled
	}

	exported, err := s.sheets.HasMonth(ctx, month)
	if err != nil {
		return false, fmt.Errorf("load export sheet: %w", err)
	}
	if exported {
		s.logger.Info("month already exported", zap.String("month", month.String()))
		return false, nil
	}

	ref := time.Date(month.Year, month.Month, 1, 12, 0, 0, 0, s.location)
	report, err := s.reporter.Report(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("export month %s: %w", month, err)
	}

	var scrap int64
	for _, e := range report.Scrap {
		if e.Month == month {
			scrap += e.Quantity
		}
	}

	row := repo.KPIRow{
		Month:       month,
		Production:  report.KPIs.ProductionThisMonth,
		Swaps:       report.KPIs.SwapsThisMonth,
		Scrap:       scrap,
		Alerts:      report.KPIs.ToolsInAlert,
		GeneratedAt: models.DateOf(s.now().In(s.location)),
	}
	if err := s.sheets.AppendKPIRow(ctx, row); err != nil {
		return false, fmt.Errorf("export month %s: %w", month, err)
	}

	s.logger.Info("month exported", zap.String("month", month.String()), zap.Int64("production", row.Production))
	return true, nil
}

func usage(t models.Tool) float64 {
	if t.UsefulLife <= 0 {
		return 0
	}
	return float64(t.AccumulatedProduction) / float64(t.UsefulLife)
}
