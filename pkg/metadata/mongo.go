package metadata

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parthk/blockvault/pkg/errors"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	// URI is the MongoDB connection string, e.g. "mongodb://localhost:27017".
	URI string
	// Database name. Defaults to "blockvault".
	Database string
	// ConnectTimeout bounds the initial connection attempt. Defaults to 10s.
	ConnectTimeout time.Duration
}

// MongoStore is a MongoDB-backed metadata store.
type MongoStore struct {
	client *mongo.Client
	files  *mongo.Collection
	blocks *mongo.Collection
	tags   *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the indexes the store
// relies on: block lookups by file and tag lookups by term.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongodb URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "blockvault"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client: client,
		files:  db.Collection("files"),
		blocks: db.Collection("blocks"),
		tags:   db.Collection("tags"),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.blocks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "file_id", Value: 1}, {Key: "block_index", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create block index")
	}
	_, err = s.tags.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "term", Value: 1}, {Key: "score", Value: -1}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create tag index")
	}
	return nil
}

// AddFile stores a file record.
func (s *MongoStore) AddFile(ctx context.Context, f *File) error {
	if _, err := s.files.InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert file %s", f.ID)
	}
	return nil
}

// GetFile retrieves a file record, or nil if unknown.
func (s *MongoStore) GetFile(ctx context.Context, fileID string) (*File, error) {
	var f File
	err := s.files.FindOne(ctx, bson.M{"_id": fileID}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "find file %s", fileID)
	}
	return &f, nil
}

// AddBlock stores a block record.
func (s *MongoStore) AddBlock(ctx context.Context, b *Block) error {
	if _, err := s.blocks.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert block %s", b.ID)
	}
	return nil
}

// BlocksByFile returns the file's blocks ordered by index.
func (s *MongoStore) BlocksByFile(ctx context.Context, fileID string) ([]Block, error) {
	cursor, err := s.blocks.Find(ctx, bson.M{"file_id": fileID},
		options.Find().SetSort(bson.D{{Key: "block_index", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list blocks for %s", fileID)
	}
	var blocks []Block
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode blocks for %s", fileID)
	}
	return blocks, nil
}

// AddTags stores keyword tags.
func (s *MongoStore) AddTags(ctx context.Context, tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	docs := make([]any, len(tags))
	for i, t := range tags {
		docs[i] = t
	}
	if _, err := s.tags.InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "insert tags")
	}
	return nil
}

// TagsByBlock returns the tags attached to a block.
func (s *MongoStore) TagsByBlock(ctx context.Context, blockID string) ([]Tag, error) {
	cursor, err := s.tags.Find(ctx, bson.M{"block_id": blockID})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list tags for %s", blockID)
	}
	var tags []Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode tags for %s", blockID)
	}
	return tags, nil
}

// SearchBlocks finds blocks tagged with terms containing query, ranked by
// best tag score. The aggregation groups matching tags per block, keeps the
// highest score, then joins in the block and file records.
func (s *MongoStore) SearchBlocks(ctx context.Context, query string, minScore float64) ([]SearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"term":  bson.M{"$regex": regexQuoteMeta(query)},
			"score": bson.M{"$gte": minScore},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$block_id",
			"score": bson.M{"$max": "$score"},
			"terms": bson.M{"$addToSet": "$term"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "blocks",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "block",
		}}},
		{{Key: "$unwind", Value: "$block"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "files",
			"localField":   "block.file_id",
			"foreignField": "_id",
			"as":           "file",
		}}},
		{{Key: "$unwind", Value: "$file"}},
	}

	cursor, err := s.tags.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "search blocks")
	}

	var rows []struct {
		Score float64  `bson:"score"`
		Terms []string `bson:"terms"`
		Block Block    `bson:"block"`
		File  File     `bson:"file"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode search results")
	}

	results := make([]SearchResult, len(rows))
	for i, r := range rows {
		sort.Strings(r.Terms)
		results[i] = SearchResult{
			Block:    r.Block,
			FileName: r.File.Name,
			Score:    r.Score,
			Terms:    r.Terms,
		}
	}
	return results, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "disconnect mongodb")
	}
	return nil
}

// regexQuoteMeta escapes regex metacharacters so the query is treated as a
// literal substring inside the $regex match.
func regexQuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ Store = (*MongoStore)(nil)
