// Package model defines domain entities for the application.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered account.
// PasswordHash is excluded from JSON so it can never leak into a response.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
}

// Identity is the verified caller attached to a request context
// by the auth middleware. It is derived from token claims only;
// no database lookup backs it.
type Identity struct {
	UserID string
	Email  string
}
