package userstore

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is the read view of a user document.
//
// Phone and created_at are decoded loosely: documents written by older tools
// may lack a phone or carry created_at as something other than a BSON date.
type Record struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Phone        *string            `bson:"phone,omitempty"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    bson.RawValue      `bson:"created_at,omitempty"`
}

// PhoneOr returns the stored phone, or def when the document has none.
func (r *Record) PhoneOr(def string) string {
	if r.Phone == nil || *r.Phone == "" {
		return def
	}
	return *r.Phone
}

// CreatedAtString renders created_at as ISO-8601 when it is a BSON date and
// falls back to the raw value's string form otherwise.
func (r *Record) CreatedAtString() string {
	switch r.CreatedAt.Type {
	case 0, bson.TypeNull:
		return ""
	case bson.TypeDateTime:
		return r.CreatedAt.Time().UTC().Format(time.RFC3339Nano)
	case bson.TypeString:
		return r.CreatedAt.StringValue()
	case bson.TypeInt32:
		return strconv.FormatInt(int64(r.CreatedAt.Int32()), 10)
	case bson.TypeInt64:
		return strconv.FormatInt(r.CreatedAt.Int64(), 10)
	case bson.TypeDouble:
		return strconv.FormatFloat(r.CreatedAt.Double(), 'g', -1, 64)
	case bson.TypeBoolean:
		return strconv.FormatBool(r.CreatedAt.Boolean())
	default:
		return r.CreatedAt.String()
	}
}
