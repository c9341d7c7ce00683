package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/i474232898/apod-api/internal/apod"
)

const mockNS = "apod.apod"

func apodDoc(id primitive.ObjectID, date, title string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "Date", Value: date},
		{Key: "Title", Value: title},
		{Key: "MediaType", Value: "image"},
		{Key: "Copyright", Value: "NASA"},
	}
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by date hit", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNS, mtest.FirstBatch, apodDoc(id, "2024-01-01", "Nebula")))

		rec, err := s.FindByDate(context.Background(), "2024-01-01")
		if err != nil {
			mt.Fatalf("FindByDate error: %v", err)
		}
		if rec.ID != id.Hex() || rec.Title != "Nebula" || rec.Copyright != "NASA" {
			mt.Fatalf("unexpected record: %+v", rec)
		}
	})

	mt.Run("find by date reads legacy documents", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		id := primitive.NewObjectID()
		legacy := bson.D{
			{Key: "_id", Value: id},
			{Key: "Copyright", Value: nil},
			{Key: "Date", Value: "2023-07-04"},
			{Key: "Explanation", Value: "Fireworks."},
			{Key: "Hdurl", Value: "https://apod.example/hd.jpg"},
			{Key: "MediaType", Value: "image"},
			{Key: "Title", Value: "Sky Show"},
			{Key: "Url", Value: "https://apod.example/sd.jpg"},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNS, mtest.FirstBatch, legacy))

		rec, err := s.FindByDate(context.Background(), "2023-07-04")
		if err != nil {
			mt.Fatalf("FindByDate error: %v", err)
		}
		if rec.Copyright != "" || rec.HDURL != "https://apod.example/hd.jpg" || rec.URL != "https://apod.example/sd.jpg" || rec.MediaType != "image" {
			mt.Fatalf("unexpected record: %+v", rec)
		}

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		if got := filter.Lookup("Date").StringValue(); got != "2023-07-04" {
			mt.Fatalf("filter Date = %q in %v", got, filter)
		}
	})

	mt.Run("find by date miss", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNS, mtest.FirstBatch))

		if _, err := s.FindByDate(context.Background(), "2024-01-01"); !errors.Is(err, apod.ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("find range", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNS, mtest.FirstBatch,
			apodDoc(primitive.NewObjectID(), "2024-01-02", "Two"),
			apodDoc(primitive.NewObjectID(), "2024-01-01", "One"),
		))

		recs, err := s.FindRange(context.Background(), "2024-01-01", "2024-01-02")
		if err != nil {
			mt.Fatalf("FindRange error: %v", err)
		}
		if len(recs) != 2 || recs[0].Date != "2024-01-02" || recs[1].Title != "One" {
			mt.Fatalf("unexpected records: %+v", recs)
		}
	})

	mt.Run("insert", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec, err := s.Insert(context.Background(), apod.Record{Date: "2024-01-01", Title: "Nebula"})
		if err != nil {
			mt.Fatalf("Insert error: %v", err)
		}
		if rec.ID == "" || rec.Date != "2024-01-01" {
			mt.Fatalf("unexpected record: %+v", rec)
		}
	})

	mt.Run("insert duplicate date", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: apod.apod index: date_unique",
		}))

		if _, err := s.Insert(context.Background(), apod.Record{Date: "2024-01-01"}); !errors.Is(err, apod.ErrDuplicate) {
			mt.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		s := NewMongoStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := s.EnsureIndexes(context.Background()); err != nil {
			mt.Fatalf("EnsureIndexes error: %v", err)
		}
	})
}
