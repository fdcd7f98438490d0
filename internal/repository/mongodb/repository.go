package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultProfile = "default"

type tokenDocument struct {
	Profile   string    `bson:"_id"`
	Token     string    `bson:"token"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// TokenRepository persists the bearer token of one client profile in MongoDB.
type TokenRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	profile  string
}

// NewTokenRepository connects to MongoDB and verifies the connection.
func NewTokenRepository(ctx context.Context, uri, dbName, profile string) (*TokenRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if profile == "" {
		profile = defaultProfile
	}

	return &TokenRepository{
		client:   client,
		dbName:   dbName,
		collName: "sessions",
		profile:  profile,
	}, nil
}

func (r *TokenRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Load returns the stored token or an empty string when none exists.
func (r *TokenRepository) Load(ctx context.Context) (string, error) {
	var doc tokenDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": r.profile}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return doc.Token, nil
}

// Save upserts the token for the profile.
func (r *TokenRepository) Save(ctx context.Context, token string) error {
	doc := tokenDocument{Profile: r.profile, Token: token, UpdatedAt: time.Now().UTC()}
	_, err := r.collection().ReplaceOne(ctx, bson.M{"_id": r.profile}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear deletes the stored token.
func (r *TokenRepository) Clear(ctx context.Context) error {
	if _, err := r.collection().DeleteOne(ctx, bson.M{"_id": r.profile}); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *TokenRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
