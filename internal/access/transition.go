package access

import (
	"agenda/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility is the combined state of the two visibility flags.
type Visibility int

const (
	Private Visibility = iota
	PublicVisible
	PublicHidden
)

func (v Visibility) String() string {
	switch v {
	case PublicVisible:
		return "public-visible"
	case PublicHidden:
		return "public-hidden"
	default:
		return "private"
	}
}

// StateOf returns the visibility state of c.
func StateOf(c *model.Contact) Visibility {
	switch {
	case !c.Public:
		return Private
	case c.AdminVisible:
		return PublicVisible
	default:
		return PublicHidden
	}
}

// PrepareCreate stamps a new contact for r: owner is r, the contact starts
// private and admin-visible, and any identifier is cleared. Whatever the
// caller put in those fields is discarded.
func PrepareCreate(r Requester, c *model.Contact) error {
	if err := Authorize(r, OpCreate, nil); err != nil {
		return err
	}
	c.ID = primitive.NilObjectID
	c.OwnerID = r.id
	c.Public = false
	c.AdminVisible = true
	return nil
}

// TogglePublic flips the public flag. The admin-visible flag is kept.
func TogglePublic(c *model.Contact) {
	c.Public = !c.Public
}

// ToggleAdminVisible flips the admin-visible flag.
func ToggleAdminVisible(c *model.Contact) {
	c.AdminVisible = !c.AdminVisible
}
