// Package sheets keeps the monthly KPI ledger in a Google Sheets spreadsheet:
// one row per exported month, keyed by the MM/YYYY label in the first column.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

// DefaultRange is the tab and columns holding the KPI ledger.
const DefaultRange = "KPIs!A:F"

// KPIRow is one exported month.
type KPIRow struct {
	Month       models.MonthYear
	Production  int64
	Swaps       int
	Scrap       int64
	Alerts      int
	GeneratedAt models.Date
}

func (row KPIRow) values() []interface{} {
	return []interface{}{
		row.Month.String(),
		row.Production,
		row.Swaps,
		row.Scrap,
		row.Alerts,
		row.GeneratedAt.String(),
	}
}

// Repository is the KPI ledger used by the monthly export.
type Repository interface {
	// HasMonth reports whether a row labelled with month already exists.
	HasMonth(ctx context.Context, month models.MonthYear) (bool, error)
	// AppendKPIRow adds row below the last row of the ledger.
	AppendKPIRow(ctx context.Context, row KPIRow) error
}

// Config locates the spreadsheet, the ledger range and the service account credentials.
type Config struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// GoogleSheetRepository implements Repository with the Sheets v4 API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	kpiRange      string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Sheets-backed KPI ledger. Extra client
// options (endpoint, HTTP client) are appended after the credentials.
func NewGoogleSheetRepository(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id must not be empty")
	}
	if cfg.Range == "" {
		cfg.Range = DefaultRange
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	if cfg.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		kpiRange:      cfg.Range,
		logger:        logger,
	}, nil
}

// HasMonth scans the first column of the ledger. The header row never
// parses as a month label, so it is skipped naturally.
func (r *GoogleSheetRepository) HasMonth(ctx context.Context, month models.MonthYear) (bool, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.kpiRange).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("read kpi ledger %s: %w", r.kpiRange, err)
	}

	label := month.String()
	for _, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == label {
			return true, nil
		}
	}
	return false, nil
}

// AppendKPIRow writes the row with RAW input so the month label stays text
// instead of being coerced into a spreadsheet date.
func (r *GoogleSheetRepository) AppendKPIRow(ctx context.Context, row KPIRow) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{row.values()}}
	_, err := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.kpiRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append kpi row for %s: %w", row.Month, err)
	}

	r.logger.Debug("kpi row appended", zap.String("month", row.Month.String()), zap.String("range", r.kpiRange))
	return nil
}
