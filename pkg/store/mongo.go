package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures [OpenMongo].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string // defaults to "runs"
}

// MongoStore keeps runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRun is the stored shape. Seeds are kept as strings because BSON has
// no unsigned 64-bit integer.
type mongoRun struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	Seed      string    `bson:"seed"`
	Rows      int       `bson:"rows"`
	Cols      int       `bson:"cols"`
	Mode      string    `bson:"mode"`
	Pieces    int       `bson:"pieces"`
	Warnings  int       `bson:"warnings"`
	Options   string    `bson:"options,omitempty"`
	Document  []byte    `bson:"document,omitempty"`
}

// OpenMongo connects to MongoDB, pings it and ensures the listing index.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongo uri and database are required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "runs"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	// Mongo keeps milliseconds; truncate so Get returns what Save stored.
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Millisecond)
	if _, err := s.coll.InsertOne(ctx, toMongo(rec)); err != nil {
		return fmt.Errorf("inserting run %s: %w", rec.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var run mongoRun
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("getting run %s: %w", id, err)
	}
	return fromMongo(run)
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(listLimit(limit))).
		SetProjection(bson.D{{Key: "document", Value: 0}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	var runs []mongoRun
	if err := cur.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	out := make([]Record, 0, len(runs))
	for _, run := range runs {
		rec, err := fromMongo(run)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toMongo(rec *Record) mongoRun {
	return mongoRun{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Seed:      strconv.FormatUint(rec.Seed, 10),
		Rows:      rec.Rows,
		Cols:      rec.Cols,
		Mode:      rec.Mode,
		Pieces:    rec.Pieces,
		Warnings:  rec.Warnings,
		Options:   string(rec.Options),
		Document:  rec.Document,
	}
}

func fromMongo(run mongoRun) (Record, error) {
	seed, err := strconv.ParseUint(run.Seed, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("run %s: parsing seed: %w", run.ID, err)
	}
	rec := Record{
		ID:        run.ID,
		CreatedAt: run.CreatedAt.UTC(),
		Seed:      seed,
		Rows:      run.Rows,
		Cols:      run.Cols,
		Mode:      run.Mode,
		Pieces:    run.Pieces,
		Warnings:  run.Warnings,
		Document:  run.Document,
	}
	if run.Options != "" {
		rec.Options = []byte(run.Options)
	}
	return rec, nil
}

var _ Store = (*MongoStore)(nil)
