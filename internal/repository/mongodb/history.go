package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

type swapDoc struct {
	ID                   string    `bson:"_id"`
	MoldID               string    `bson:"mold_id"`
	ToolID               string    `bson:"tool_id"`
	ProductionBeforeSwap int64     `bson:"production_before_swap"`
	SwappedAt            time.Time `bson:"swapped_at"`
}

type commentDoc struct {
	MoldID    string    `bson:"mold_id"`
	Body      string    `bson:"body"`
	Date      string    `bson:"date"`
	CreatedAt time.Time `bson:"created_at"`
}

type scrapDoc struct {
	MoldID    string    `bson:"mold_id"`
	MonthKey  string    `bson:"month_key"`
	Quantity  int64     `bson:"quantity"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// InsertSwap stores a swap event.
func (r *MongoDBRepository) InsertSwap(ctx context.Context, ev *models.SwapEvent) error {
	doc := swapDoc{
		ID:                   ev.ID,
		MoldID:               ev.MoldID,
		ToolID:               ev.ToolID,
		ProductionBeforeSwap: ev.ProductionBeforeSwap,
		SwappedAt:            ev.SwappedAt.UTC(),
	}
	if _, err := r.db.Collection(swapsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert swap event: %w", err)
	}
	return nil
}

// Swap ids are time-ordered, so _id breaks ties between events stored in the
// same millisecond.
var swapOrder = bson.D{{Key: "swapped_at", Value: -1}, {Key: "_id", Value: -1}}

// ListSwaps returns swap events, most recent first.
func (r *MongoDBRepository) ListSwaps(ctx context.Context) ([]models.SwapEvent, error) {
	opts := options.Find().SetSort(swapOrder)
	cursor, err := r.db.Collection(swapsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap events: %w", err)
	}

	var docs []swapDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode swap events: %w", err)
	}

	events := make([]models.SwapEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, models.SwapEvent{
			ID:                   doc.ID,
			MoldID:               doc.MoldID,
			ToolID:               doc.ToolID,
			ProductionBeforeSwap: doc.ProductionBeforeSwap,
			SwappedAt:            doc.SwappedAt,
		})
	}
	return events, nil
}

// InsertComment stores a mold comment.
func (r *MongoDBRepository) InsertComment(ctx context.Context, c *models.MoldComment) error {
	doc := commentDoc{MoldID: c.MoldID, Body: c.Text, Date: c.Date.ISO(), CreatedAt: c.CreatedAt.UTC()}
	if _, err := r.db.Collection(commentsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert mold comment: %w", err)
	}
	return nil
}

// ListComments returns a mold's comments, newest first.
func (r *MongoDBRepository) ListComments(ctx context.Context, moldID string) ([]models.MoldComment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.db.Collection(commentsCollection).Find(ctx, bson.M{"mold_id": moldID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list mold comments: %w", err)
	}

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode mold comments: %w", err)
	}

	comments := make([]models.MoldComment, 0, len(docs))
	for _, doc := range docs {
		date, err := models.ParseISODate(doc.Date)
		if err != nil {
			r.logger.Warn("skip mold comment with invalid date", zap.String("mold_id", moldID), zap.Error(err))
			continue
		}
		comments = append(comments, models.MoldComment{MoldID: doc.MoldID, Text: doc.Body, Date: date, CreatedAt: doc.CreatedAt})
	}
	return comments, nil
}

// UpsertScrap replaces the quantity stored for (mold, month).
func (r *MongoDBRepository) UpsertScrap(ctx context.Context, entry *models.ScrapEntry) error {
	filter := bson.M{"mold_id": entry.MoldID, "month_key": entry.Month.Key()}
	update := bson.M{"$set": bson.M{"quantity": entry.Quantity, "updated_at": entry.UpdatedAt.UTC()}}

	if _, err := r.db.Collection(scrapCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert scrap entry: %w", err)
	}
	return nil
}

// ListScrap returns every scrap entry, latest month first.
func (r *MongoDBRepository) ListScrap(ctx context.Context) ([]models.ScrapEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "month_key", Value: -1}, {Key: "mold_id", Value: 1}})
	cursor, err := r.db.Collection(scrapCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrap entries: %w", err)
	}

	var docs []scrapDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode scrap entries: %w", err)
	}

	entries := make([]models.ScrapEntry, 0, len(docs))
	for _, doc := range docs {
		month, err := models.ParseMonthKey(doc.MonthKey)
		if err != nil {
			r.logger.Warn("skip scrap entry with invalid month", zap.String("mold_id", doc.MoldID), zap.String("month", doc.MonthKey))
			continue
		}
		entries = append(entries, models.ScrapEntry{MoldID: doc.MoldID, Month: month, Quantity: doc.Quantity, UpdatedAt: doc.UpdatedAt})
	}
	return entries, nil
}
