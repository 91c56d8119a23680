package accounts_test

import (
	"context"
	"sync"
	"time"

	userstore "github.com/abdeliveries/abdeliveries/internal/app/store/users"
	"github.com/abdeliveries/abdeliveries/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory UserStore with the same uniqueness rules as the
// users collection. Setting noCreatedAt returns records shaped like legacy
// documents stored without created_at.
type memStore struct {
	mu          sync.Mutex
	users       []models.User
	noCreatedAt bool
}

func (m *memStore) record(u models.User) *userstore.Record {
	rec := &userstore.Record{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
	if !m.noCreatedAt {
		typ, data, _ := bson.MarshalValue(u.CreatedAt)
		rec.CreatedAt = bson.RawValue{Type: typ, Value: data}
	}
	if u.Phone != "" {
		phone := u.Phone
		rec.Phone = &phone
	}
	return rec
}

func (m *memStore) GetByPhone(_ context.Context, phone string) (*userstore.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == phone {
			return m.record(u), nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*userstore.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return m.record(u), nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (m *memStore) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, u models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email || (u.Phone != "" && existing.Phone == u.Phone) {
			return models.User{}, userstore.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	m.users = append(m.users, u)
	return u, nil
}

func (m *memStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
