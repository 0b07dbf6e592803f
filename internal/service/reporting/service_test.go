package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	repo "github.com/mamadbah2/toolwear/internal/repository/sheets"
	"github.com/mamadbah2/toolwear/internal/service/dashboard"
)

type stubReporter struct {
	report *dashboard.Report
	err    error
	refs   []time.Time
}

func (s *stubReporter) Report(_ context.Context, ref time.Time) (*dashboard.Report, error) {
	s.refs = append(s.refs, ref)
	return s.report, s.err
}

type fakeSheet struct {
	written []repo.KPIRow
	readErr error
}

func (f *fakeSheet) HasMonth(_ context.Context, month models.MonthYear) (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	for _, row := range f.written {
		if row.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSheet) AppendKPIRow(_ context.Context, row repo.KPIRow) error {
	f.written = append(f.written, row)
	return nil
}

func sampleReport() *dashboard.Report {
	return &dashboard.Report{
		Dashboard: models.Dashboard{
			Month: models.MonthYear{Year: 2025, Month: time.August},
			KPIs:  models.KPIs{ToolsInAlert: 2, ProductionThisMonth: 95000, SwapsThisMonth: 3},
		},
		Tools: []models.Tool{
			{MoldID: "MOLDE-A", ToolID: "T-101", UsefulLife: 100000, AccumulatedProduction: 75000, Condition: models.ConditionWarn},
			{MoldID: "MOLDE-A", ToolID: "T-102", UsefulLife: 150000, AccumulatedProduction: 50000, Condition: models.ConditionOK},
			{MoldID: "MOLDE-B", ToolID: "T-201", UsefulLife: 80000, AccumulatedProduction: 70000, Condition: models.ConditionReplace},
		},
		Scrap: []models.ScrapEntry{
			{MoldID: "MOLDE-A", Month: models.MonthYear{Year: 2025, Month: time.August}, Quantity: 150},
			{MoldID: "MOLDE-E", Month: models.MonthYear{Year: 2025, Month: time.August}, Quantity: 250},
			{MoldID: "MOLDE-B", Month: models.MonthYear{Year: 2025, Month: time.July}, Quantity: 1200},
		},
	}
}

func TestAlertDigest(t *testing.T) {
	svc := NewService(&stubReporter{report: sampleReport()}, nil, time.UTC, nil)

	digest, err := svc.AlertDigest(context.Background(), time.Date(2025, time.August, 21, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, digest, "Ferramentas 08/2025")
	assert.Contains(t, digest, "Em alerta: 2")
	assert.Contains(t, digest, "MOLDE-B / T-201: Trocar Ferramenta (TF)")
	assert.Contains(t, digest, "MOLDE-A / T-101: Atenção!")
	assert.NotContains(t, digest, "T-102")
	assert.Less(t, strings.Index(digest, "T-201"), strings.Index(digest, "T-101"))
}

func TestAlertDigestNoAlerts(t *testing.T) {
	report := sampleReport()
	report.Tools = report.Tools[1:2]
	svc := NewService(&stubReporter{report: report}, nil, time.UTC, nil)

	digest, err := svc.AlertDigest(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Contains(t, digest, "Nenhuma ferramenta em alerta.")
}

func TestAlertDigestError(t *testing.T) {
	svc := NewService(&stubReporter{err: errors.New("boom")}, nil, time.UTC, nil)

	_, err := svc.AlertDigest(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestExportMonth(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	reporter := &stubReporter{report: sampleReport()}
	sheet := &fakeSheet{}
	svc := NewService(reporter, sheet, loc, nil)
	svc.now = func() time.Time { return time.Date(2025, time.September, 1, 3, 5, 0, 0, time.UTC) }

	aug := models.MonthYear{Year: 2025, Month: time.August}
	exported, err := svc.ExportMonth(context.Background(), aug)
	require.NoError(t, err)
	assert.True(t, exported)
	require.Len(t, sheet.written, 1)
	assert.Equal(t, repo.KPIRow{
		Month:       aug,
		Production:  95000,
		Swaps:       3,
		Scrap:       400,
		Alerts:      2,
		GeneratedAt: models.Date{Year: 2025, Month: time.September, Day: 1},
	}, sheet.written[0])
	require.Len(t, reporter.refs, 1)
	assert.Equal(t, aug, models.MonthOf(reporter.refs[0]))

	exported, err = svc.ExportMonth(context.Background(), aug)
	require.NoError(t, err)
	assert.False(t, exported)
	assert.Len(t, sheet.written, 1)
}

func TestExportMonthDisabled(t *testing.T) {
	svc := NewService(&stubReporter{report: sampleReport()}, nil, time.UTC, nil)

	_, err := svc.ExportMonth(context.Background(), models.MonthYear{Year: 2025, Month: time.August})
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportMonthReadError(t *testing.T) {
	sheet := &fakeSheet{readErr: errors.New("quota")}
	svc := NewService(&stubReporter{report: sampleReport()}, sheet, time.UTC, nil)

	_, err := svc.ExportMonth(context.Background(), models.MonthYear{Year: 2025, Month: time.August})
	assert.Error(t, err)
	assert.Empty(t, sheet.written)
}
