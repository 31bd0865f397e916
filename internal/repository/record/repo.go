// Package record persists heritage records and their detail media
// metadata in MongoDB.
package record

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumakr/luma/internal/domain"
)

const (
	recordsCollection   = "palaces"
	mediaMetaCollection = "media_meta"
)

// Repository stores records and detail media metadata. All mutating
// methods honor a session context, so they can participate in a
// transaction started by the mongo client wrapper.
type Repository struct {
	records   *mongo.Collection
	mediaMeta *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		records:   db.Collection(recordsCollection),
		mediaMeta: db.Collection(mediaMetaCollection),
	}
}

// EnsureIndexes creates the unique identity indexes. The unique
// serial_number and url_slug constraints make concurrent first-time
// ingestion of the same record safe: the loser gets a duplicate key
// error and adopts the winner's identity.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "serial_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "url_slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "palace_code", Value: 1}, {Key: "detail_code", Value: 1}}},
	}
	if _, err := r.records.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("ensure record indexes: %w", err)
	}
	return nil
}

// FindBySerial returns the record carrying the external serial number,
// or domain.ErrRecordNotFound.
func (r *Repository) FindBySerial(ctx context.Context, serial int) (domain.Record, error) {
	return r.findOne(ctx, bson.M{"serial_number": serial})
}

// GetByID returns the record with the given id.
func (r *Repository) GetByID(ctx context.Context, id string) (domain.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetBySlug returns the record with the given URL slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (domain.Record, error) {
	return r.findOne(ctx, bson.M{"url_slug": slug})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (domain.Record, error) {
	var doc recordDoc
	if err := r.records.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Record{}, domain.ErrRecordNotFound
		}
		return domain.Record{}, fmt.Errorf("find record: %w", err)
	}
	return fromRecordDoc(doc), nil
}

// ListByPalace returns every record of one palace, unordered.
func (r *Repository) ListByPalace(ctx context.Context, palaceCode int) ([]domain.Record, error) {
	return r.list(ctx, bson.M{"palace_code": palaceCode}, nil)
}

// ListByPalaceOrdered returns every record of one palace in ascending
// detail code order (the tour ordering).
func (r *Repository) ListByPalaceOrdered(ctx context.Context, palaceCode int) ([]domain.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "detail_code", Value: 1}})
	return r.list(ctx, bson.M{"palace_code": palaceCode}, opts)
}

func (r *Repository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Record, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.records.Find(ctx, filter, opts)
	} else {
		cursor, err = r.records.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromRecordDoc(doc))
	}
	return records, nil
}

// Sample returns up to count records chosen uniformly at random.
func (r *Repository) Sample(ctx context.Context, count int) ([]domain.Record, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": count}}},
	}
	cursor, err := r.records.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []recordDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("sample records: %w", err)
	}

	records := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromRecordDoc(doc))
	}
	return records, nil
}

// ListIDs returns the id of every stored record.
func (r *Repository) ListIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.records.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list record ids: %w", err)
		}
		ids = append(ids, doc.ID.Hex())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list record ids: %w", err)
	}
	return ids, nil
}

// InsertRecord inserts a new record and returns its id.
// domain.ErrAlreadyExists signals a unique index collision.
func (r *Repository) InsertRecord(ctx context.Context, rec domain.Record) (string, error) {
	doc, err := toRecordDoc(rec)
	if err != nil {
		return "", err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.records.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrAlreadyExists
		}
		return "", fmt.Errorf("insert record: %w", err)
	}
	return doc.ID.Hex(), nil
}

// GetMediaItem returns a detail image's metadata.
func (r *Repository) GetMediaItem(ctx context.Context, id string) (domain.MediaItem, error) {
	doc, err := r.findMediaMeta(ctx, id)
	if err != nil {
		return domain.MediaItem{}, err
	}
	return fromMediaItemDoc(doc), nil
}

// GetMediaGroup returns a detail video group's metadata.
func (r *Repository) GetMediaGroup(ctx context.Context, id string) (domain.MediaGroup, error) {
	doc, err := r.findMediaMeta(ctx, id)
	if err != nil {
		return domain.MediaGroup{}, err
	}
	return fromMediaGroupDoc(doc), nil
}

func (r *Repository) findMediaMeta(ctx context.Context, id string) (mediaMetaDoc, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mediaMetaDoc{}, domain.ErrNotFound
	}
	var doc mediaMetaDoc
	if err := r.mediaMeta.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return mediaMetaDoc{}, domain.ErrNotFound
		}
		return mediaMetaDoc{}, fmt.Errorf("find media meta: %w", err)
	}
	return doc, nil
}

// InsertMediaItem inserts detail image metadata and returns its id.
func (r *Repository) InsertMediaItem(ctx context.Context, item domain.MediaItem) (string, error) {
	doc, err := toMediaItemDoc(item)
	if err != nil {
		return "", err
	}
	return r.insertMediaMeta(ctx, doc)
}

// InsertMediaGroup inserts detail video metadata and returns its id.
func (r *Repository) InsertMediaGroup(ctx context.Context, group domain.MediaGroup) (string, error) {
	doc, err := toMediaGroupDoc(group)
	if err != nil {
		return "", err
	}
	return r.insertMediaMeta(ctx, doc)
}

func (r *Repository) insertMediaMeta(ctx context.Context, doc mediaMetaDoc) (string, error) {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if _, err := r.mediaMeta.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert media meta: %w", err)
	}
	return doc.ID.Hex(), nil
}
