package repository

import (
	"context"

	"teamplay/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResultRepo handles MongoDB operations for finished game results.
type ResultRepo interface {
	Insert(ctx context.Context, result model.GameResult) error
	ListByTeam(ctx context.Context, teamID string, limit int) ([]model.GameResult, error)
	Get(ctx context.Context, id string) (*model.GameResult, error)
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new result repository
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("game_results"),
	}
}

func (r *resultRepo) Insert(ctx context.Context, result model.GameResult) error {
	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *resultRepo) ListByTeam(ctx context.Context, teamID string, limit int) ([]model.GameResult, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "endedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"teamId": teamID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]model.GameResult, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepo) Get(ctx context.Context, id string) (*model.GameResult, error) {
	var result model.GameResult
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
