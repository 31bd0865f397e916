// Package blob stores fetched media assets and their derived thumbnails
// in GridFS. Assets are deduplicated by source URL and addressed by an
// opaque handle (the hex of the GridFS file id). Thumbnails live in a
// separate bucket keyed by the parent asset's id, so one handle resolves
// both the original bytes and its derivative.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumakr/luma/internal/domain"
)

// Store is a GridFS-backed blob repository.
type Store struct {
	media  *gridfs.Bucket
	thumbs *gridfs.Bucket
}

// NewStore opens the media and thumbnail buckets on the given database.
func NewStore(db *mongo.Database) (*Store, error) {
	media, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("media"))
	if err != nil {
		return nil, fmt.Errorf("open media bucket: %w", err)
	}
	thumbs, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("thumbnails"))
	if err != nil {
		return nil, fmt.Errorf("open thumbnails bucket: %w", err)
	}
	return &Store{media: media, thumbs: thumbs}, nil
}

// EnsureIndexes creates the metadata.url index backing URL deduplication.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.media.GetFilesCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "metadata.url", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure blob indexes: %w", err)
	}
	return nil
}

// Put stores asset bytes fetched from the given URL and returns the new
// handle. It does not deduplicate; callers check FindByURL first.
func (s *Store) Put(ctx context.Context, data []byte, sourceURL string) (domain.Handle, error) {
	s.applyDeadlines(ctx)

	id := primitive.NewObjectID()
	opts := options.GridFSUpload().SetMetadata(bson.M{"url": sourceURL})
	if err := s.media.UploadFromStreamWithID(id, fileName(sourceURL), bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}
	return domain.Handle(id.Hex()), nil
}

// FindByURL returns the handle of the asset previously stored from the
// given URL, or domain.ErrNotFound.
func (s *Store) FindByURL(ctx context.Context, sourceURL string) (domain.Handle, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.media.GetFilesCollection().
		FindOne(ctx, bson.M{"metadata.url": sourceURL}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("find blob by url: %w", err)
	}
	return domain.Handle(doc.ID.Hex()), nil
}

// Get returns the asset bytes and a format hint (lowercased filename
// extension, e.g. "jpg", "mp4"; empty when unknown).
func (s *Store) Get(ctx context.Context, handle domain.Handle) ([]byte, string, error) {
	id, err := parseHandle(handle)
	if err != nil {
		return nil, "", err
	}
	s.applyDeadlines(ctx)

	var buf bytes.Buffer
	if _, err := s.media.DownloadToStream(id, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", domain.ErrMediaNotFound
		}
		return nil, "", fmt.Errorf("get blob: %w", err)
	}

	var doc struct {
		Filename string `bson:"filename"`
	}
	if err := s.media.GetFilesCollection().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, "", fmt.Errorf("get blob filename: %w", err)
	}
	return buf.Bytes(), formatHint(doc.Filename), nil
}

// Exists reports whether the handle refers to a stored asset.
func (s *Store) Exists(ctx context.Context, handle domain.Handle) (bool, error) {
	id, err := parseHandle(handle)
	if err != nil {
		return false, err
	}
	n, err := s.media.GetFilesCollection().CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("blob exists: %w", err)
	}
	return n > 0, nil
}

// ListHandles returns the handle of every stored asset.
func (s *Store) ListHandles(ctx context.Context) ([]domain.Handle, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.media.GetFilesCollection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	defer cursor.Close(ctx)

	var handles []domain.Handle
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}
		handles = append(handles, domain.Handle(doc.ID.Hex()))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return handles, nil
}

// PutThumbnail stores derived thumbnail bytes under the parent asset's
// handle, replacing any previous derivative.
func (s *Store) PutThumbnail(ctx context.Context, handle domain.Handle, data []byte) error {
	id, err := parseHandle(handle)
	if err != nil {
		return err
	}
	s.applyDeadlines(ctx)

	if err := s.thumbs.Delete(id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("replace thumbnail: %w", err)
	}
	if err := s.thumbs.UploadFromStreamWithID(id, string(handle)+".jpg", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("put thumbnail: %w", err)
	}
	return nil
}

// GetThumbnail returns the derived thumbnail for the parent handle, or
// domain.ErrMediaNotFound when none has been generated.
func (s *Store) GetThumbnail(ctx context.Context, handle domain.Handle) ([]byte, error) {
	id, err := parseHandle(handle)
	if err != nil {
		return nil, err
	}
	s.applyDeadlines(ctx)

	var buf bytes.Buffer
	if _, err := s.thumbs.DownloadToStream(id, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrMediaNotFound
		}
		return nil, fmt.Errorf("get thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// applyDeadlines propagates the context deadline to the buckets; the
// gridfs streaming API does not take a context directly.
func (s *Store) applyDeadlines(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return
	}
	_ = s.media.SetReadDeadline(deadline)
	_ = s.media.SetWriteDeadline(deadline)
	_ = s.thumbs.SetReadDeadline(deadline)
	_ = s.thumbs.SetWriteDeadline(deadline)
}

func parseHandle(handle domain.Handle) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(string(handle))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid handle %q: %w", handle, domain.ErrMediaNotFound)
	}
	return id, nil
}

// fileName derives the stored filename from the source URL path,
// dropping the query string.
func fileName(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Path == "" {
		return sourceURL
	}
	return path.Base(u.Path)
}

// formatHint extracts the lowercased extension without the dot.
func formatHint(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}
