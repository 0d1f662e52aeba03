// Package mongo exports cluster assignments to a MongoDB collection.
//
// Each export replaces the collection: it is dropped, refilled in batches and
// indexed on the key (unique) and the cluster label, so downstream jobs can
// join on either.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/bookclusters/pkg/cluster"
	errs "github.com/matzehuels/bookclusters/pkg/errors"
)

// Defaults for Options.
const (
	DefaultDatabase   = "bookclusters"
	DefaultCollection = "isbn_cluster"
	DefaultBatchSize  = 10000
)

// Options configures Open.
type Options struct {
	URI        string
	Database   string
	Collection string
	BatchSize  int
}

func (o *Options) setDefaults() {
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.Collection == "" {
		o.Collection = DefaultCollection
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
}

// Store writes and reads cluster assignments.
type Store struct {
	client    *mongo.Client
	coll      *mongo.Collection
	batchSize int
}

// document is the stored shape of one assignment.
type document struct {
	Key   int64  `bson:"isbn_id"`
	Label int64  `bson:"cluster"`
	RunID string `bson:"run_id,omitempty"`
}

// Open connects to MongoDB and pings the server.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if err := errs.ValidateURL(opts.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	opts.setDefaults()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "ping mongo")
	}
	return &Store{
		client:    client,
		coll:      client.Database(opts.Database).Collection(opts.Collection),
		batchSize: opts.BatchSize,
	}, nil
}

// Save replaces the collection contents with as. runID is stored on every
// document when non-empty.
func (s *Store) Save(ctx context.Context, runID string, as []cluster.Assignment[int64]) error {
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s: %w", s.coll.Name(), err)
	}

	insert := options.InsertMany().SetOrdered(false)
	for _, b := range batches(len(as), s.batchSize) {
		docs := make([]any, 0, b[1]-b[0])
		for _, a := range as[b[0]:b[1]] {
			docs = append(docs, document{Key: a.Key, Label: a.Label, RunID: runID})
		}
		if _, err := s.coll.InsertMany(ctx, docs, insert); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", b[0], b[1], err)
		}
	}

	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "isbn_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("isbn_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "cluster", Value: 1}},
			Options: options.Index().SetName("cluster_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Lookup returns the stored assignment for key.
func (s *Store) Lookup(ctx context.Context, key int64) (cluster.Assignment[int64], bool, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.D{{Key: "isbn_id", Value: key}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return cluster.Assignment[int64]{}, false, nil
	}
	if err != nil {
		return cluster.Assignment[int64]{}, false, err
	}
	return cluster.Assignment[int64]{Key: doc.Key, Label: doc.Label}, true, nil
}

// Members returns the keys stored with the given cluster label, ascending.
func (s *Store) Members(ctx context.Context, label int64) ([]int64, error) {
	find := options.Find().SetSort(bson.D{{Key: "isbn_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{{Key: "cluster", Value: label}}, find)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var keys []int64
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cur.Err()
}

// Close disconnects from the server.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// batches splits [0, n) into half-open ranges of at most size elements.
func batches(n, size int) [][2]int {
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}
