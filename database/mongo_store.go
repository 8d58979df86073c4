package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/inficom-solutions/portfolio-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps documents in one MongoDB collection.
type MongoStore[D models.Document] struct {
	coll   *mongo.Collection
	name   string
	newDoc func() D
}

func NewMongoStore[D models.Document](db *mongo.Database, schema models.Schema[D]) *MongoStore[D] {
	return &MongoStore[D]{
		coll:   db.Collection(schema.Collection),
		name:   schema.Name,
		newDoc: schema.New,
	}
}

// EnsureIndexes creates the createdAt index backing FindAll's sort.
func (r *MongoStore[D]) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *MongoStore[D]) FindAll(ctx context.Context) ([]D, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	docs := []D{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *MongoStore[D]) FindByID(ctx context.Context, id string) (D, error) {
	doc := r.newDoc()
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(doc); err != nil {
		var zero D
		return zero, r.wrap(id, err)
	}
	return doc, nil
}

func (r *MongoStore[D]) Add(ctx context.Context, doc D) error {
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *MongoStore[D]) Update(ctx context.Context, doc D) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.GetID()}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %s: %w", r.name, doc.GetID(), errs.ErrNotFound)
	}
	return nil
}

func (r *MongoStore[D]) Delete(ctx context.Context, id string) (D, error) {
	doc := r.newDoc()
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(doc); err != nil {
		var zero D
		return zero, r.wrap(id, err)
	}
	return doc, nil
}

func (r *MongoStore[D]) wrap(id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", r.name, id, errs.ErrNotFound)
	}
	return err
}
