package dump

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig locates the collection plan dumps are written to.
type MongoConfig struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// planDocument is one visited plan of a run.
type planDocument struct {
	RunID     string `bson:"run_id"`
	Iteration int    `bson:"iteration"`
	Index     int    `bson:"index"`
	Plan      string `bson:"plan"`
}

// MongoSink stores one document per visited plan. Every dump replaces the
// documents previously stored for the same run.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to cfg.URI and verifies the connection.
func NewMongoSink(ctx context.Context, cfg MongoConfig) (*MongoSink, error) {
	if cfg.Database == "" {
		cfg.Database = "diceplan"
	}
	if cfg.Collection == "" {
		cfg.Collection = "plans"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSink{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}, nil
}

// Dump replaces the run's documents with the snapshot.
func (m *MongoSink) Dump(ctx context.Context, s Snapshot) error {
	if _, err := m.coll.DeleteMany(ctx, bson.M{"run_id": s.RunID}); err != nil {
		return fmt.Errorf("clear dump for run %s: %w", s.RunID, err)
	}
	if len(s.Plans) == 0 {
		return nil
	}

	docs := make([]any, len(s.Plans))
	for i, p := range s.Plans {
		docs[i] = planDocument{RunID: s.RunID, Iteration: s.Iteration, Index: i, Plan: p}
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("write dump for run %s: %w", s.RunID, err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoSink) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Sink = (*MongoSink)(nil)
