package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

const collectionRequirements = "requirements"

type RequirementRepository struct {
	col *mongo.Collection
}

func NewRequirementRepository(db *mongo.Database) *RequirementRepository {
	return &RequirementRepository{col: db.Collection(collectionRequirements)}
}

func (r *RequirementRepository) Create(ctx context.Context, req *domain.Requirement) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, req)
	if err != nil {
		return fmt.Errorf("insert requirement: %w", err)
	}
	req.ID = insertedHex(res.InsertedID)
	return nil
}

func (r *RequirementRepository) List(ctx context.Context, f ports.RequirementFilter) ([]*domain.Requirement, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "requirement_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Requirement, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode requirements: %w", err)
	}
	return out, nil
}

func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*domain.Requirement, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, domain.ErrRequirementNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.Requirement
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequirementNotFound
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	return &req, nil
}

func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return domain.ErrRequirementNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequirementNotFound
	}
	return nil
}

func (r *RequirementRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "requirement_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "priority", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
