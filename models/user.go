package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

// RoleAdmin is the only role; exactly one identity carries it.
const RoleAdmin Role = "admin"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Summary is the public view returned by the login endpoint.
func (u User) Summary() map[string]string {
	return map[string]string{
		"username": u.Username,
		"role":     string(u.Role),
	}
}
