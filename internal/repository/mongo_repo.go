package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"leke-chat/internal/models"
)

type conversationDoc struct {
	ID           string    `bson:"_id"`
	Seq          int64     `bson:"seq"`
	Timestamp    time.Time `bson:"timestamp"`
	Prompt       string    `bson:"prompt"`
	DocumentText string    `bson:"document_text"`
	Response     string    `bson:"response"`
	HasDocument  bool      `bson:"has_document"`
}

type MongoConversationRepo struct {
	coll *mongo.Collection
}

func NewMongoConversationRepo(db *mongo.Database) *MongoConversationRepo {
	return &MongoConversationRepo{coll: db.Collection("conversations")}
}

// EnsureIndexes creates the ordering index used by List.
func (r *MongoConversationRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "seq", Value: 1}},
	})
	return err
}

func (r *MongoConversationRepo) Append(ctx context.Context, c *models.Conversation) error {
	doc := conversationDoc{
		ID:           c.ID.String(),
		Seq:          c.Timestamp.UnixNano(),
		Timestamp:    c.Timestamp,
		Prompt:       c.Prompt,
		DocumentText: c.DocumentText,
		Response:     c.Response,
		HasDocument:  c.HasDocument,
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *MongoConversationRepo) List(ctx context.Context) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []conversationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	all := make([]models.Conversation, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("bad conversation id %q: %w", d.ID, err)
		}
		all = append(all, models.Conversation{
			ID:           id,
			Timestamp:    d.Timestamp,
			Prompt:       d.Prompt,
			DocumentText: d.DocumentText,
			Response:     d.Response,
			HasDocument:  d.HasDocument,
		})
	}
	return all, nil
}

func (r *MongoConversationRepo) Clear(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.D{})
	return err
}
