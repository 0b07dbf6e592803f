package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/domain/wear"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

const toolColumns = `id, mold_id, tool_id, useful_life, accumulated_production, condition, warning, notes, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateTool inserts a new tool row.
func (s *Store) CreateTool(ctx context.Context, t *models.Tool) error {
	_, err := s.q.ExecContext(ctx, `INSERT INTO tools (`+toolColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MoldID, t.ToolID, t.UsefulLife, t.AccumulatedProduction, string(t.Condition),
		boolToInt(t.Warning), t.Notes, boolToInt(t.IsActive), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tool %s/%s already registered: %w", t.MoldID, t.ToolID, apperrors.ErrConflict)
		}
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

// GetTool loads one tool with its production history.
func (s *Store) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = ?`, id)
	t, err := s.scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tool", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select tool %s: %w", id, err)
	}

	history, err := s.loadHistory(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.ProductionHistory = history[t.ID]
	return t, nil
}

// FindActiveTool looks up the active tool with the given pair.
func (s *Store) FindActiveTool(ctx context.Context, moldID, toolID string) (*models.Tool, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE mold_id = ? AND tool_id = ? AND is_active = 1`, moldID, toolID)
	t, err := s.scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tool", moldID+"/"+toolID)
	}
	if err != nil {
		return nil, fmt.Errorf("select active tool %s/%s: %w", moldID, toolID, err)
	}

	history, err := s.loadHistory(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.ProductionHistory = history[t.ID]
	return t, nil
}

// ListActiveTools returns every active tool with its history.
func (s *Store) ListActiveTools(ctx context.Context) ([]models.Tool, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+toolColumns+` FROM tools WHERE is_active = 1 ORDER BY mold_id, tool_id`)
	if err != nil {
		return nil, fmt.Errorf("list active tools: %w", err)
	}
	defer rows.Close()

	var tools []models.Tool
	for rows.Next() {
		t, err := s.scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tools: %w", err)
	}
	if len(tools) == 0 {
		return tools, nil
	}

	ids := make([]string, len(tools))
	for i := range tools {
		ids[i] = tools[i].ID
	}
	history, err := s.loadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tools {
		tools[i].ProductionHistory = history[tools[i].ID]
	}
	return tools, nil
}

// UpdateTool writes back the mutable columns of t.
func (s *Store) UpdateTool(ctx context.Context, t *models.Tool) error {
	res, err := s.q.ExecContext(ctx, `UPDATE tools
		SET accumulated_production = ?, condition = ?, warning = ?, notes = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		t.AccumulatedProduction, string(t.Condition), boolToInt(t.Warning), t.Notes, boolToInt(t.IsActive), formatTime(t.UpdatedAt), t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tool %s/%s already active: %w", t.MoldID, t.ToolID, apperrors.ErrConflict)
		}
		return fmt.Errorf("update tool %s: %w", t.ID, err)
	}
	return requireAffected(res, "tool", t.ID)
}

// DeleteTool removes the tool; production entries go with it through the foreign key.
func (s *Store) DeleteTool(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tools WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tool %s: %w", id, err)
	}
	return requireAffected(res, "tool", id)
}

// AppendProduction adds one entry at the end of the tool's ledger.
func (s *Store) AppendProduction(ctx context.Context, toolRef string, entry models.ProductionEntry) error {
	if _, err := s.q.ExecContext(ctx, `INSERT INTO production_entries (tool_ref, pieces, entry_date) VALUES (?, ?, ?)`,
		toolRef, entry.Pieces, entry.Date.ISO()); err != nil {
		return fmt.Errorf("insert production entry for tool %s: %w", toolRef, err)
	}
	return nil
}

// ResetTool writes back the counters of t and removes every entry owned by
// the tool. Both statements share one transaction.
func (s *Store) ResetTool(ctx context.Context, t *models.Tool) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		q := tx.(*Store).q
		res, err := q.ExecContext(ctx, `UPDATE tools
			SET accumulated_production = ?, condition = ?, warning = ?, updated_at = ?
			WHERE id = ?`,
			t.AccumulatedProduction, string(t.Condition), boolToInt(t.Warning), formatTime(t.UpdatedAt), t.ID)
		if err != nil {
			return fmt.Errorf("reset tool %s: %w", t.ID, err)
		}
		if err := requireAffected(res, "tool", t.ID); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM production_entries WHERE tool_ref = ?`, t.ID); err != nil {
			return fmt.Errorf("purge production entries for tool %s: %w", t.ID, err)
		}
		return nil
	})
}

func (s *Store) scanTool(row rowScanner) (*models.Tool, error) {
	var (
		t                    models.Tool
		condition            string
		warning, active      int
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.MoldID, &t.ToolID, &t.UsefulLife, &t.AccumulatedProduction, &condition,
		&warning, &t.Notes, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.Condition = models.Condition(condition)
	t.Warning = warning != 0
	t.IsActive = active != 0
	wear.Apply(&t)
	if string(t.Condition) != condition {
		s.logger.Warn("stored condition out of date, reclassified",
			zap.String("tool_ref", t.ID), zap.String("stored", condition), zap.String("condition", string(t.Condition)))
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("tool %s created_at: %w", t.ID, err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("tool %s updated_at: %w", t.ID, err)
	}
	return &t, nil
}

// loadHistory reads the ledgers of the given tools. Rows that cannot be
// decoded are logged and skipped so one bad row never hides a whole tool.
func (s *Store) loadHistory(ctx context.Context, ids []string) (map[string][]models.ProductionEntry, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.q.QueryContext(ctx, `SELECT id, tool_ref, pieces, entry_date FROM production_entries
		WHERE tool_ref IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("load production history: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]models.ProductionEntry, len(ids))
	for rows.Next() {
		var (
			rowID   int64
			toolRef string
			pieces  sql.NullInt64
			rawDate sql.NullString
		)
		if err := rows.Scan(&rowID, &toolRef, &pieces, &rawDate); err != nil {
			return nil, fmt.Errorf("scan production entry: %w", err)
		}

		if !pieces.Valid || pieces.Int64 <= 0 {
			s.logger.Warn("skip production entry with invalid pieces", zap.Int64("entry_id", rowID), zap.String("tool_ref", toolRef))
			continue
		}
		date, err := models.ParseISODate(rawDate.String)
		if err != nil {
			s.logger.Warn("skip production entry with invalid date", zap.Int64("entry_id", rowID), zap.String("tool_ref", toolRef), zap.Error(err))
			continue
		}

		history[toolRef] = append(history[toolRef], models.ProductionEntry{Pieces: pieces.Int64, Date: date})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate production entries: %w", err)
	}
	return history, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
