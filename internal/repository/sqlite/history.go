package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

// InsertSwap appends a swap event.
func (s *Store) InsertSwap(ctx context.Context, ev *models.SwapEvent) error {
	if _, err := s.q.ExecContext(ctx, `INSERT INTO swap_events (id, mold_id, tool_id, production_before_swap, swapped_at)
		VALUES (?, ?, ?, ?, ?)`, ev.ID, ev.MoldID, ev.ToolID, ev.ProductionBeforeSwap, formatTime(ev.SwappedAt)); err != nil {
		return fmt.Errorf("insert swap event: %w", err)
	}
	return nil
}

// ListSwaps returns the whole swap history, most recent first.
func (s *Store) ListSwaps(ctx context.Context) ([]models.SwapEvent, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, mold_id, tool_id, production_before_swap, swapped_at
		FROM swap_events ORDER BY swapped_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list swap events: %w", err)
	}
	defer rows.Close()

	var events []models.SwapEvent
	for rows.Next() {
		var (
			ev        models.SwapEvent
			swappedAt string
		)
		if err := rows.Scan(&ev.ID, &ev.MoldID, &ev.ToolID, &ev.ProductionBeforeSwap, &swappedAt); err != nil {
			return nil, fmt.Errorf("scan swap event: %w", err)
		}
		if ev.SwappedAt, err = parseTime(swappedAt); err != nil {
			s.logger.Warn("skip swap event with invalid timestamp", zap.String("swap_id", ev.ID), zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap events: %w", err)
	}
	return events, nil
}

// InsertComment appends a mold comment.
func (s *Store) InsertComment(ctx context.Context, c *models.MoldComment) error {
	if _, err := s.q.ExecContext(ctx, `INSERT INTO mold_comments (mold_id, body, comment_date, created_at) VALUES (?, ?, ?, ?)`,
		c.MoldID, c.Text, c.Date.ISO(), formatTime(c.CreatedAt)); err != nil {
		return fmt.Errorf("insert mold comment: %w", err)
	}
	return nil
}

// ListComments returns a mold's comments, newest first.
func (s *Store) ListComments(ctx context.Context, moldID string) ([]models.MoldComment, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT body, comment_date, created_at FROM mold_comments
		WHERE mold_id = ? ORDER BY created_at DESC, id DESC`, moldID)
	if err != nil {
		return nil, fmt.Errorf("list mold comments: %w", err)
	}
	defer rows.Close()

	var comments []models.MoldComment
	for rows.Next() {
		var (
			c                  models.MoldComment
			rawDate, createdAt string
		)
		if err := rows.Scan(&c.Text, &rawDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan mold comment: %w", err)
		}
		c.MoldID = moldID
		if c.Date, err = models.ParseISODate(rawDate); err != nil {
			s.logger.Warn("skip mold comment with invalid date", zap.String("mold_id", moldID), zap.Error(err))
			continue
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("mold comment created_at: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mold comments: %w", err)
	}
	return comments, nil
}

// UpsertScrap inserts or replaces the quantity for (mold, month).
func (s *Store) UpsertScrap(ctx context.Context, entry *models.ScrapEntry) error {
	if _, err := s.q.ExecContext(ctx, `INSERT INTO scrap_entries (mold_id, month_key, quantity, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (mold_id, month_key) DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		entry.MoldID, entry.Month.Key(), entry.Quantity, formatTime(entry.UpdatedAt)); err != nil {
		return fmt.Errorf("upsert scrap entry: %w", err)
	}
	return nil
}

// ListScrap returns every scrap entry, latest month first.
func (s *Store) ListScrap(ctx context.Context) ([]models.ScrapEntry, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT mold_id, month_key, quantity, updated_at FROM scrap_entries
		ORDER BY month_key DESC, mold_id`)
	if err != nil {
		return nil, fmt.Errorf("list scrap entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ScrapEntry
	for rows.Next() {
		var (
			e                   models.ScrapEntry
			monthKey, updatedAt string
		)
		if err := rows.Scan(&e.MoldID, &monthKey, &e.Quantity, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan scrap entry: %w", err)
		}
		if e.Month, err = models.ParseMonthKey(monthKey); err != nil {
			s.logger.Warn("skip scrap entry with invalid month", zap.String("mold_id", e.MoldID), zap.String("month", monthKey))
			continue
		}
		if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("scrap entry updated_at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scrap entries: %w", err)
	}
	return entries, nil
}
