package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account of the contact book. Password holds the bcrypt hash and
// never leaves the service; use ToResponse for anything sent to clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Surname   string             `bson:"surname" json:"surname"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Company   string             `bson:"company,omitempty" json:"company,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Phones    string             `bson:"phones,omitempty" json:"phones,omitempty"`
	IsAdmin   bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) GetID() primitive.ObjectID   { return u.ID }
func (u *User) SetID(id primitive.ObjectID) { u.ID = id }

// UserResponse is the public view of a user
type UserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Phones  string `json:"phones,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// ToResponse converts User to UserResponse (excludes the password hash)
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:      u.ID.Hex(),
		Name:    u.Name,
		Surname: u.Surname,
		Email:   u.Email,
		Company: u.Company,
		Address: u.Address,
		Phones:  u.Phones,
		IsAdmin: u.IsAdmin,
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}
