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
)

const collectionAgentOutputs = "agent_outputs"

type AgentOutputRepository struct {
	col *mongo.Collection
}

func NewAgentOutputRepository(db *mongo.Database) *AgentOutputRepository {
	return &AgentOutputRepository{col: db.Collection(collectionAgentOutputs)}
}

func (r *AgentOutputRepository) Create(ctx context.Context, o *domain.AgentOutput) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert agent output: %w", err)
	}
	o.ID = insertedHex(res.InsertedID)
	return nil
}

// List returns agent outputs, optionally restricted to one document.
func (r *AgentOutputRepository) List(ctx context.Context, documentID string) ([]*domain.AgentOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if documentID != "" {
		filter["document_id"] = documentID
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list agent outputs: %w", err)
	}
	defer cur.Close(ctx)

	outputs := make([]*domain.AgentOutput, 0)
	if err := cur.All(ctx, &outputs); err != nil {
		return nil, fmt.Errorf("decode agent outputs: %w", err)
	}
	return outputs, nil
}

func (r *AgentOutputRepository) FindByID(ctx context.Context, id string) (*domain.AgentOutput, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, domain.ErrAgentOutputNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.AgentOutput
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAgentOutputNotFound
		}
		return nil, fmt.Errorf("find agent output: %w", err)
	}
	return &o, nil
}

func (r *AgentOutputRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return domain.ErrAgentOutputNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete agent output: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAgentOutputNotFound
	}
	return nil
}

func (r *AgentOutputRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "agent_output_id", Value: 1}}},
		{Keys: bson.D{{Key: "document_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
