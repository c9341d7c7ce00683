package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/i474232898/apod-api/internal/apod"
)

// apodDocument is the BSON shape of a record. Field names match the
// documents written by the earlier .NET service, so an existing collection
// can be reused as is.
type apodDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Copyright   string             `bson:"Copyright,omitempty"`
	Date        string             `bson:"Date"` // YYYY-MM-DD, unique
	Explanation string             `bson:"Explanation"`
	HDURL       string             `bson:"Hdurl,omitempty"`
	MediaType   string             `bson:"MediaType"`
	Title       string             `bson:"Title"`
	URL         string             `bson:"Url"`
}

func toDocument(r apod.Record) apodDocument {
	return apodDocument{
		Copyright:   r.Copyright,
		Date:        r.Date,
		Explanation: r.Explanation,
		HDURL:       r.HDURL,
		MediaType:   r.MediaType,
		Title:       r.Title,
		URL:         r.URL,
	}
}

func (d apodDocument) record() apod.Record {
	return apod.Record{
		ID:          d.ID.Hex(),
		Copyright:   d.Copyright,
		Date:        d.Date,
		Explanation: d.Explanation,
		HDURL:       d.HDURL,
		MediaType:   d.MediaType,
		Title:       d.Title,
		URL:         d.URL,
	}
}

// MongoStore keeps records in a MongoDB collection with a unique index on date.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri, pings the server and ensures the date index.
func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStore wraps an existing collection. The caller owns the client.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the unique index on date if it does not exist.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("date_unique"),
	})
	if err != nil {
		return fmt.Errorf("create date index: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByDate(ctx context.Context, date string) (apod.Record, error) {
	var doc apodDocument
	err := s.coll.FindOne(ctx, bson.M{"Date": date}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apod.Record{}, apod.ErrNotFound
	}
	if err != nil {
		return apod.Record{}, fmt.Errorf("find by date: %w", err)
	}
	return doc.record(), nil
}

func (s *MongoStore) FindRange(ctx context.Context, start, end string) ([]apod.Record, error) {
	filter := bson.M{"Date": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "Date", Value: -1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find range: %w", err)
	}

	var docs []apodDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode range: %w", err)
	}

	out := make([]apod.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}

func (s *MongoStore) Insert(ctx context.Context, rec apod.Record) (apod.Record, error) {
	doc := toDocument(rec)
	doc.ID = primitive.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apod.Record{}, apod.ErrDuplicate
		}
		return apod.Record{}, fmt.Errorf("insert: %w", err)
	}
	return doc.record(), nil
}

// Close disconnects the client when the store opened it.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
