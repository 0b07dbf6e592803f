// Package repository defines the Tool Record Store consumed by the services.
// Implementations live in the sqlite and mongodb subpackages.
package repository

import (
	"context"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

// ToolStore holds tools and their production ledgers. Reads of a tool always
// include its production history in insertion order.
type ToolStore interface {
	// CreateTool inserts t. Returns apperrors.ErrConflict when an active tool
	// already uses the same (MoldID, ToolID).
	CreateTool(ctx context.Context, t *models.Tool) error
	// GetTool returns apperrors.ErrNotFound when no tool has the id.
	GetTool(ctx context.Context, id string) (*models.Tool, error)
	// FindActiveTool returns apperrors.ErrNotFound when no active tool matches.
	FindActiveTool(ctx context.Context, moldID, toolID string) (*models.Tool, error)
	// ListActiveTools is ordered by mold id, then tool id.
	ListActiveTools(ctx context.Context) ([]models.Tool, error)
	// UpdateTool persists the counters, condition, notes and timestamps of t.
	UpdateTool(ctx context.Context, t *models.Tool) error
	// DeleteTool removes the tool and its production entries.
	DeleteTool(ctx context.Context, id string) error
	AppendProduction(ctx context.Context, toolRef string, entry models.ProductionEntry) error
	// ResetTool writes the counters, condition and timestamps of t and empties
	// its production ledger as one write.
	ResetTool(ctx context.Context, t *models.Tool) error
}

// SwapStore holds the immutable swap history.
type SwapStore interface {
	InsertSwap(ctx context.Context, ev *models.SwapEvent) error
	// ListSwaps is ordered most recent first.
	ListSwaps(ctx context.Context) ([]models.SwapEvent, error)
}

// CommentStore holds mold comments.
type CommentStore interface {
	InsertComment(ctx context.Context, c *models.MoldComment) error
	// ListComments is ordered newest first.
	ListComments(ctx context.Context, moldID string) ([]models.MoldComment, error)
}

// ScrapStore holds monthly scrap counts keyed by (mold, month).
type ScrapStore interface {
	// UpsertScrap replaces any quantity already stored for the key.
	UpsertScrap(ctx context.Context, entry *models.ScrapEntry) error
	// ListScrap is ordered by month descending, then mold id.
	ListScrap(ctx context.Context) ([]models.ScrapEntry, error)
}

// Store is the full Tool Record Store.
type Store interface {
	ToolStore
	SwapStore
	CommentStore
	ScrapStore

	// RunInTx runs fn so that its writes become visible to readers together.
	// fn must use tx and the ctx it receives, not the outer store.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Close(ctx context.Context) error
}
