package mg

import (
	"context"
	"fmt"
	"time"

	"mstat/metastat"
	"mstat/metastat/defs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	SamplesCollection = "samples"
	ReportsCollection = "reports"
)

type DocumentStore interface {
	DocByID(ctx context.Context, collection string, id interface{}, doc interface{}) error
	InsertIfNew(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
	Replace(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
}

type SampleStore interface {
	WriteSamples(ctx context.Context, ss []defs.Sample) (int, error)
	ReadSamples(ctx context.Context, start, end time.Time) ([]defs.Sample, error)
}

type ReportStore interface {
	WriteReport(ctx context.Context, r *metastat.Report) error
	ReadReport(ctx context.Context, id string) (*metastat.Report, error)
}

type MongoStore struct {
	Client *mongo.Client
	Logger *zap.Logger

	DBName string
}

func New(ctx context.Context, cfg defs.MongoConfig, dbName string, logger *zap.Logger) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	mongoClient, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MongoStore{
		Client: mongoClient,
		Logger: logger,
		DBName: dbName,
	}, nil
}

func (ms *MongoStore) collection(name string) *mongo.Collection {
	return ms.Client.Database(ms.DBName).Collection(name)
}

func (ms *MongoStore) DocByID(ctx context.Context, collection string, id interface{}, doc interface{}) error {
	sr := ms.collection(collection).FindOne(ctx, bson.M{"_id": id})
	return sr.Decode(doc)
}

func (ms *MongoStore) InsertIfNew(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"inserting document",
		zap.String("collection", collection),
		zap.Any("filter", filter),
	)

	res, err := ms.collection(collection).
		UpdateOne(ctx, filter,
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
	if err != nil {
		return nil, fmt.Errorf("unable to insert if new: %w", err)
	}

	return res, err
}

func (ms *MongoStore) Replace(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"replacing document",
		zap.String("collection", collection),
		zap.Any("filter", filter),
	)

	res, err := ms.collection(collection).
		ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		ms.Logger.Debug(
			"unable to replace document",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return nil, fmt.Errorf("unable to replace document: %w", err)
	}

	return res, err
}

func (ms *MongoStore) getEventsBetween(ctx context.Context, collection string, start, end time.Time, slicePtr interface{}) error {
	ms.Logger.Debug(
		"reading events",
		zap.String("collection", collection),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{primitive.E{Key: "time", Value: 1}})

	cur, err := ms.collection(collection).
		Find(ctx, bson.M{
			"time": bson.M{
				"$gte": primitive.NewDateTimeFromTime(start),
				"$lte": primitive.NewDateTimeFromTime(end),
			},
		}, findOptions)
	if err != nil {
		ms.Logger.Debug(
			"unable to read events",
			zap.String("collection", collection),
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Error(err),
		)
		return fmt.Errorf("unable to read events: %w", err)
	}

	return cur.All(ctx, slicePtr)
}

// WriteSamples stores the samples not seen before, keyed by time, category
// and source. It returns the number of new samples.
func (ms *MongoStore) WriteSamples(ctx context.Context, ss []defs.Sample) (int, error) {
	var inserted int
	for i := range ss {
		s := ss[i]
		filter := bson.M{"time": s.Time, "category": s.Category, "source": s.Source}
		res, err := ms.InsertIfNew(ctx, SamplesCollection, filter, &s)
		if err != nil {
			return inserted, fmt.Errorf("unable to write sample: %w", err)
		}
		inserted += int(res.UpsertedCount)
	}
	return inserted, nil
}

// ReadSamples returns the samples in [start, end] ordered by time.
func (ms *MongoStore) ReadSamples(ctx context.Context, start, end time.Time) ([]defs.Sample, error) {
	var ss []defs.Sample
	if err := ms.getEventsBetween(ctx, SamplesCollection, start, end, &ss); err != nil {
		return nil, fmt.Errorf("unable to read samples: %w", err)
	}
	return ss, nil
}

// WriteReport stores r under its run id, replacing an earlier version.
func (ms *MongoStore) WriteReport(ctx context.Context, r *metastat.Report) error {
	if _, err := ms.Replace(ctx, ReportsCollection, bson.M{"_id": r.ID}, r); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

func (ms *MongoStore) ReadReport(ctx context.Context, id string) (*metastat.Report, error) {
	var r metastat.Report
	if err := ms.DocByID(ctx, ReportsCollection, id, &r); err != nil {
		return nil, fmt.Errorf("unable to read report: %w", err)
	}
	return &r, nil
}

func (ms *MongoStore) Disconnect(ctx context.Context) error {
	return ms.Client.Disconnect(ctx)
}
