package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
	"github.com/mamadbah2/toolwear/internal/domain/wear"
	"github.com/mamadbah2/toolwear/internal/repository"
	"github.com/mamadbah2/toolwear/pkg/apperrors"
)

const (
	toolsCollection    = "tools"
	swapsCollection    = "swap_events"
	commentsCollection = "mold_comments"
	scrapCollection    = "scrap_entries"
)

// MongoDBRepository implements repository.Store for MongoDB. Production
// history is embedded in the tool document.
type MongoDBRepository struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	logger       *zap.Logger
}

var _ repository.Store = (*MongoDBRepository)(nil)

// Options tunes the MongoDB repository.
type Options struct {
	// Transactions enables multi-document transactions; requires a replica set.
	Transactions bool
}

// NewMongoDBRepository creates a new MongoDB repository and ensures its indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, opts Options, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client:       client,
		db:           client.Database(dbName),
		transactions: opts.Transactions,
		logger:       logger,
	}

	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	logger.Info("mongodb store ready", zap.String("database", dbName), zap.Bool("transactions", opts.Transactions))
	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		toolsCollection: {
			{
				Keys: bson.D{{Key: "mold_id", Value: 1}, {Key: "tool_id", Value: 1}},
				Options: options.Index().
					SetName("active_pair").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"is_active": true}),
			},
		},
		swapsCollection: {
			{Keys: swapOrder},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "mold_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		scrapCollection: {
			{
				Keys:    bson.D{{Key: "mold_id", Value: 1}, {Key: "month_key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for coll, idx := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// RunInTx runs fn in a session transaction when transactions are enabled,
// otherwise it runs fn directly against the repository.
func (r *MongoDBRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if !r.transactions {
		return fn(ctx, r)
	}
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx, r)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, r)
	})
	return err
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

type productionDoc struct {
	Pieces int64  `bson:"pieces"`
	Date   string `bson:"date"`
}

type toolDoc struct {
	ID                    string          `bson:"_id"`
	MoldID                string          `bson:"mold_id"`
	ToolID                string          `bson:"tool_id"`
	UsefulLife            int64           `bson:"useful_life"`
	AccumulatedProduction int64           `bson:"accumulated_production"`
	Condition             string          `bson:"condition"`
	Warning               bool            `bson:"warning"`
	Notes                 string          `bson:"notes"`
	IsActive              bool            `bson:"is_active"`
	CreatedAt             time.Time       `bson:"created_at"`
	UpdatedAt             time.Time       `bson:"updated_at"`
	ProductionHistory     []productionDoc `bson:"production_history"`
}

// CreateTool inserts a tool document with an empty ledger.
func (r *MongoDBRepository) CreateTool(ctx context.Context, t *models.Tool) error {
	doc := toolDoc{
		ID:                    t.ID,
		MoldID:                t.MoldID,
		ToolID:                t.ToolID,
		UsefulLife:            t.UsefulLife,
		AccumulatedProduction: t.AccumulatedProduction,
		Condition:             string(t.Condition),
		Warning:               t.Warning,
		Notes:                 t.Notes,
		IsActive:              t.IsActive,
		CreatedAt:             t.CreatedAt.UTC(),
		UpdatedAt:             t.UpdatedAt.UTC(),
		ProductionHistory:     []productionDoc{},
	}

	_, err := r.db.Collection(toolsCollection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("tool %s/%s already registered: %w", t.MoldID, t.ToolID, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert tool: %w", err)
	}
	return nil
}

// GetTool loads one tool document.
func (r *MongoDBRepository) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	return r.findOneTool(ctx, bson.M{"_id": id}, id)
}

// FindActiveTool loads the active tool with the given pair.
func (r *MongoDBRepository) FindActiveTool(ctx context.Context, moldID, toolID string) (*models.Tool, error) {
	return r.findOneTool(ctx, bson.M{"mold_id": moldID, "tool_id": toolID, "is_active": true}, moldID+"/"+toolID)
}

func (r *MongoDBRepository) findOneTool(ctx context.Context, filter bson.M, label string) (*models.Tool, error) {
	var doc toolDoc
	err := r.db.Collection(toolsCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("tool %s: %w", label, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tool %s: %w", label, err)
	}
	t := r.toModel(doc)
	return &t, nil
}

// ListActiveTools returns active tools ordered by mold then tool id.
func (r *MongoDBRepository) ListActiveTools(ctx context.Context) ([]models.Tool, error) {
	opts := options.Find().SetSort(bson.D{{Key: "mold_id", Value: 1}, {Key: "tool_id", Value: 1}})
	cursor, err := r.db.Collection(toolsCollection).Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	defer cursor.Close(ctx)

	var tools []models.Tool
	for cursor.Next(ctx) {
		var doc toolDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode tool: %w", err)
		}
		tools = append(tools, r.toModel(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tools: %w", err)
	}
	return tools, nil
}

// UpdateTool sets the mutable fields of the tool document.
func (r *MongoDBRepository) UpdateTool(ctx context.Context, t *models.Tool) error {
	update := bson.M{"$set": bson.M{
		"accumulated_production": t.AccumulatedProduction,
		"condition":              string(t.Condition),
		"warning":                t.Warning,
		"notes":                  t.Notes,
		"is_active":              t.IsActive,
		"updated_at":             t.UpdatedAt.UTC(),
	}}

	res, err := r.db.Collection(toolsCollection).UpdateByID(ctx, t.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("tool %s/%s already active: %w", t.MoldID, t.ToolID, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to update tool %s: %w", t.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("tool %s: %w", t.ID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteTool removes the tool document together with its embedded ledger.
func (r *MongoDBRepository) DeleteTool(ctx context.Context, id string) error {
	res, err := r.db.Collection(toolsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete tool %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("tool %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// AppendProduction pushes one entry onto the embedded ledger.
func (r *MongoDBRepository) AppendProduction(ctx context.Context, toolRef string, entry models.ProductionEntry) error {
	update := bson.M{"$push": bson.M{"production_history": productionDoc{Pieces: entry.Pieces, Date: entry.Date.ISO()}}}
	res, err := r.db.Collection(toolsCollection).UpdateByID(ctx, toolRef, update)
	if err != nil {
		return fmt.Errorf("failed to append production to tool %s: %w", toolRef, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("tool %s: %w", toolRef, apperrors.ErrNotFound)
	}
	return nil
}

// ResetTool sets the counters and empties the embedded ledger in a single
// document update, which MongoDB applies atomically with or without a session.
func (r *MongoDBRepository) ResetTool(ctx context.Context, t *models.Tool) error {
	update := bson.M{"$set": bson.M{
		"accumulated_production": t.AccumulatedProduction,
		"condition":              string(t.Condition),
		"warning":                t.Warning,
		"updated_at":             t.UpdatedAt.UTC(),
		"production_history":     []productionDoc{},
	}}

	res, err := r.db.Collection(toolsCollection).UpdateByID(ctx, t.ID, update)
	if err != nil {
		return fmt.Errorf("failed to reset tool %s: %w", t.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("tool %s: %w", t.ID, apperrors.ErrNotFound)
	}
	return nil
}

// toModel converts a stored document, dropping ledger entries that cannot be decoded.
func (r *MongoDBRepository) toModel(doc toolDoc) models.Tool {
	t := models.Tool{
		ID:                    doc.ID,
		MoldID:                doc.MoldID,
		ToolID:                doc.ToolID,
		UsefulLife:            doc.UsefulLife,
		AccumulatedProduction: doc.AccumulatedProduction,
		Condition:             models.Condition(doc.Condition),
		Warning:               doc.Warning,
		Notes:                 doc.Notes,
		IsActive:              doc.IsActive,
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
	}

	for i, entry := range doc.ProductionHistory {
		if entry.Pieces <= 0 {
			r.logger.Warn("skip production entry with invalid pieces", zap.String("tool_ref", doc.ID), zap.Int("index", i))
			continue
		}
		date, err := models.ParseISODate(entry.Date)
		if err != nil {
			r.logger.Warn("skip production entry with invalid date", zap.String("tool_ref", doc.ID), zap.Int("index", i), zap.Error(err))
			continue
		}
		t.ProductionHistory = append(t.ProductionHistory, models.ProductionEntry{Pieces: entry.Pieces, Date: date})
	}

	wear.Apply(&t)
	if t.Condition != models.Condition(doc.Condition) {
		r.logger.Warn("stored condition out of date, reclassified",
			zap.String("tool_ref", doc.ID), zap.String("stored", doc.Condition), zap.String("condition", string(t.Condition)))
	}
	return t
}
