package mongodoc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonwraymond/viewcache/docstore"
)

type session struct {
	id   string
	ms   mongo.Session
	coll *mongo.Collection
}

func (s *session) ID() string { return s.id }

// bind attaches the driver session to ctx.
func (s *session) bind(ctx context.Context) (context.Context, error) {
	if s.ms == nil {
		return nil, docstore.ErrSessionClosed
	}
	return mongo.NewSessionContext(ctx, s.ms), nil
}

func (s *session) Put(ctx context.Context, r docstore.Record) error {
	sctx, err := s.bind(ctx)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(sctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodoc: put %d: %w", r.ID, err)
	}
	return nil
}

func (s *session) Get(ctx context.Context, id int64) (docstore.Record, bool, error) {
	sctx, err := s.bind(ctx)
	if err != nil {
		return docstore.Record{}, false, err
	}
	var r docstore.Record
	err = s.coll.FindOne(sctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.Record{}, false, nil
	}
	if err != nil {
		return docstore.Record{}, false, fmt.Errorf("mongodoc: get %d: %w", id, err)
	}
	return r, true, nil
}

func (s *session) FindByType(ctx context.Context, tf int32) ([]docstore.Record, error) {
	return s.find(ctx, bson.M{"typeFingerprint": tf})
}

func (s *session) All(ctx context.Context) ([]docstore.Record, error) {
	return s.find(ctx, bson.M{})
}

func (s *session) find(ctx context.Context, filter bson.M) ([]docstore.Record, error) {
	sctx, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := s.coll.Find(sctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongodoc: find: %w", err)
	}
	var out []docstore.Record
	if err := cur.All(sctx, &out); err != nil {
		return nil, fmt.Errorf("mongodoc: decode: %w", err)
	}
	return out, nil
}

func (s *session) Delete(ctx context.Context, id int64) (bool, error) {
	sctx, err := s.bind(ctx)
	if err != nil {
		return false, err
	}
	res, err := s.coll.DeleteOne(sctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("mongodoc: delete %d: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

func (s *session) DeleteAll(ctx context.Context) (int64, error) {
	sctx, err := s.bind(ctx)
	if err != nil {
		return 0, err
	}
	res, err := s.coll.DeleteMany(sctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongodoc: delete all: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *session) CountByType(ctx context.Context) (map[int32]int64, error) {
	sctx, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := s.coll.Aggregate(sctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$typeFingerprint"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongodoc: count: %w", err)
	}
	var groups []struct {
		TypeFingerprint int32 `bson:"_id"`
		N               int64 `bson:"n"`
	}
	if err := cur.All(sctx, &groups); err != nil {
		return nil, fmt.Errorf("mongodoc: decode: %w", err)
	}
	counts := make(map[int32]int64, len(groups))
	for _, g := range groups {
		counts[g.TypeFingerprint] = g.N
	}
	return counts, nil
}

func (s *session) Close() error {
	if s.ms == nil {
		return nil
	}
	s.ms.EndSession(context.Background())
	s.ms = nil
	return nil
}
