package accounts

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterInput is the body of POST /api/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginInput is the body of POST /api/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ToastInput is the body of POST /api/register-toast.
type ToastInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// UserLookup is the result of GetUser. A miss encodes as {"exists":false};
// a hit always carries every field, even when empty.
type UserLookup struct {
	Exists    bool   `json:"exists"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

// MarshalJSON drops the user fields on a miss.
func (u UserLookup) MarshalJSON() ([]byte, error) {
	if !u.Exists {
		return []byte(`{"exists":false}`), nil
	}
	type hit UserLookup
	return json.Marshal(hit(u))
}

// RegisterResult is the result of Register.
type RegisterResult struct {
	OK     bool               `json:"ok"`
	UserID primitive.ObjectID `json:"user_id"`
}

// LoginResult is the result of Login. UserID is for auditing and is not
// part of the response body.
type LoginResult struct {
	OK      bool               `json:"ok"`
	UserID  primitive.ObjectID `json:"-"`
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Phone   string             `json:"phone"`
	Message string             `json:"message"`
}

// ToastResult is the result of RegisterToast.
type ToastResult struct {
	OK    bool   `json:"ok"`
	Toast string `json:"toast"`
}
