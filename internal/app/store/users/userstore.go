// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/abdeliveries/abdeliveries/internal/app/system/normalize"
	"github.com/abdeliveries/abdeliveries/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "users"

var (
	// ErrNotFound is returned by the lookups when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned by Create when the email or phone is already taken.
	ErrDuplicate = errors.New("a user with this email/phone already exists")
)

type Store struct {
	c *mongo.Collection
}

// New returns a Store over the named collection (DefaultCollection when blank).
func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{c: db.Collection(collection)}
}

// GetByPhone looks up a user by exact phone match. Returns ErrNotFound if absent.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*Record, error) {
	return s.findOne(ctx, bson.M{"phone": phone})
}

// GetByEmail looks up a user by exact email match. Returns ErrNotFound if absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*Record, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// ExistsByEmailOrPhone reports whether any user already holds the email or the phone.
func (s *Store) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"phone": phone},
	}}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Create inserts a new user. Name, email and phone are trimmed, the ID and
// created_at are assigned here. A unique-index violation yields ErrDuplicate.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Phone = normalize.Phone(u.Phone)
	u.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// Count returns the number of user documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*Record, error) {
	var rec Record
	if err := s.c.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
