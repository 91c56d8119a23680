package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/abdeliveries/abdeliveries/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user whose password_hash is a bcrypt digest of password.
// bcrypt.MinCost keeps the fixtures fast.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, phone, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// InsertRawUser inserts an arbitrary document into users, for legacy-shape tests.
func (f *Fixtures) InsertRawUser(ctx context.Context, doc bson.M) primitive.ObjectID {
	f.t.Helper()

	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert raw user: %v", err)
	}
	return doc["_id"].(primitive.ObjectID)
}
