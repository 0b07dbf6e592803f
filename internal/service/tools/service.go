package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/domain/wear"
	"github.com/mamadbah2/toolwear/internal/observability/metrics"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/internal/service/keylock"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

const (
	opCreateTool       = "create_tool"
	opRecordProduction = "record_production"
	opSwapTool         = "swap_tool"
	opDeleteTool       = "delete_tool"
)

// maxCounter keeps accumulated*10 inside int64 for the classifier.
const maxCounter = math.MaxInt64 / 10

// CreateToolInput carries the attributes of a new tool.
type CreateToolInput struct {
	MoldID     string
	ToolID     string
	UsefulLife int64
	Notes      string
}

// Service owns tool records: creation, the production ledger, swaps and deletion.
// Writes to one tool are serialized; writes to different tools run in parallel.
type Service struct {
	store   repository.Store
	locks   *keylock.Locker
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
	// Swap ids sort in creation order so stores can break ties on equal timestamps.
	newSwapID func() string
}

// NewService wires a tool service on top of store.
func NewService(store repository.Store, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		locks:     keylock.New(),
		metrics:   m,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		newSwapID: timeOrderedID,
	}
}

func timeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ListActiveTools returns every active tool with its production history.
func (s *Service) ListActiveTools(ctx context.Context) ([]models.Tool, error) {
	tools, err := s.store.ListActiveTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tools: %w", err)
	}
	return tools, nil
}

// CreateTool registers a new, unworn tool on a mold.
func (s *Service) CreateTool(ctx context.Context, in CreateToolInput) (tool *models.Tool, err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(opCreateTool, started, err) }()

	in.MoldID = strings.TrimSpace(in.MoldID)
	in.ToolID = strings.TrimSpace(in.ToolID)
	switch {
	case in.MoldID == "":
		return nil, fmt.Errorf("moldId is required: %w", apperrors.ErrInvalidInput)
	case in.ToolID == "":
		return nil, fmt.Errorf("toolId is required: %w", apperrors.ErrInvalidInput)
	case in.UsefulLife <= 0:
		return nil, fmt.Errorf("usefulLife must be positive, got %d: %w", in.UsefulLife, apperrors.ErrInvalidInput)
	case in.UsefulLife > maxCounter:
		return nil, fmt.Errorf("usefulLife %d is out of range: %w", in.UsefulLife, apperrors.ErrInvalidInput)
	}

	unlock := s.locks.Lock("create:" + in.MoldID + "/" + in.ToolID)
	defer unlock()

	if _, err := s.store.FindActiveTool(ctx, in.MoldID, in.ToolID); err == nil {
		return nil, fmt.Errorf("tool %s/%s already registered: %w", in.MoldID, in.ToolID, apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing tool: %w", err)
	}

	now := s.now()
	tool = &models.Tool{
		ID:                s.newID(),
		MoldID:            in.MoldID,
		ToolID:            in.ToolID,
		UsefulLife:        in.UsefulLife,
		Notes:             strings.TrimSpace(in.Notes),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
		ProductionHistory: []models.ProductionEntry{},
	}
	wear.Apply(tool)

	if err := s.store.CreateTool(ctx, tool); err != nil {
		return nil, fmt.Errorf("create tool: %w", err)
	}

	s.logger.Info("tool registered",
		zap.String("id", tool.ID),
		zap.String("mold_id", tool.MoldID),
		zap.String("tool_id", tool.ToolID),
		zap.Int64("useful_life", tool.UsefulLife))
	return tool, nil
}

// DeleteTool hard-deletes a tool and its production entries, active or not.
// Swap history of the tool is kept.
func (s *Service) DeleteTool(ctx context.Context, id string) (err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(opDeleteTool, started, err) }()

	unlock := s.locks.Lock(toolKey(id))
	defer unlock()

	if err := s.store.DeleteTool(ctx, id); err != nil {
		return fmt.Errorf("delete tool: %w", err)
	}

	s.logger.Info("tool deleted", zap.String("id", id))
	return nil
}

// ListSwapHistory returns every swap ever recorded, most recent first.
func (s *Service) ListSwapHistory(ctx context.Context) ([]models.SwapEvent, error) {
	events, err := s.store.ListSwaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("list swap history: %w", err)
	}
	return events, nil
}

func toolKey(id string) string {
	return "tool:" + id
}

// activeTool loads id and rejects inactive tools as not found.
func activeTool(ctx context.Context, store repository.ToolStore, id string) (*models.Tool, error) {
	tool, err := store.GetTool(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tool.IsActive {
		return nil, fmt.Errorf("tool %s is inactive: %w", id, apperrors.ErrNotFound)
	}
	return tool, nil
}
