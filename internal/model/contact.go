package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is an entry of the contact book.
//
// Public makes the contact readable by every signed-in user. AdminVisible is
// the moderation switch an administrator flips on public contacts; it has no
// effect while Public is false and is kept as-is across private periods.
type Contact struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Surname      string             `bson:"surname" json:"surname"`
	Email        string             `bson:"email" json:"email"`
	Company      string             `bson:"company" json:"company"`
	Address      string             `bson:"address" json:"address"`
	Phones       string             `bson:"phones" json:"phones"`
	OwnerID      primitive.ObjectID `bson:"owner" json:"ownerId"`
	Public       bool               `bson:"public" json:"public"`
	AdminVisible bool               `bson:"adminVisible" json:"adminVisible"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Contact) GetID() primitive.ObjectID   { return c.ID }
func (c *Contact) SetID(id primitive.ObjectID) { c.ID = id }

// Clone returns a copy safe to mutate independently.
func (c *Contact) Clone() *Contact {
	cp := *c
	return &cp
}

// OwnerSummary is the owner reference embedded in contact views
type OwnerSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// ContactResponse is the public view of a contact
type ContactResponse struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Surname      string        `json:"surname"`
	Email        string        `json:"email"`
	Company      string        `json:"company"`
	Address      string        `json:"address"`
	Phones       string        `json:"phones"`
	OwnerID      string        `json:"ownerId"`
	Owner        *OwnerSummary `json:"owner,omitempty"`
	Public       bool          `json:"public"`
	AdminVisible bool          `json:"adminVisible"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ToResponse builds the contact view. owner may be nil when the owning
// account could not be loaded.
func (c *Contact) ToResponse(owner *User) ContactResponse {
	resp := ContactResponse{
		ID:           c.ID.Hex(),
		Name:         c.Name,
		Surname:      c.Surname,
		Email:        c.Email,
		Company:      c.Company,
		Address:      c.Address,
		Phones:       c.Phones,
		OwnerID:      c.OwnerID.Hex(),
		Public:       c.Public,
		AdminVisible: c.AdminVisible,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if owner != nil {
		resp.Owner = &OwnerSummary{ID: owner.ID.Hex(), Name: owner.Name, Surname: owner.Surname}
	}
	return resp
}
