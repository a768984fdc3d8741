package access

import (
	"fmt"

	"agenda/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is the closed set of requester kinds.
type Kind int

const (
	KindAnonymous Kind = iota
	KindUser
	KindAdmin
)

// Kinds lists every requester kind.
var Kinds = []Kind{KindAnonymous, KindUser, KindAdmin}

func (k Kind) String() string {
	switch k {
	case KindAnonymous:
		return "anonymous"
	case KindUser:
		return "user"
	case KindAdmin:
		return "admin"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Requester is the identity a decision is made for.
type Requester struct {
	kind Kind
	id   primitive.ObjectID
}

// Anonymous returns the requester without identity.
func Anonymous() Requester {
	return Requester{kind: KindAnonymous}
}

// ForUser returns the requester for u. A nil user is anonymous.
func ForUser(u *model.User) Requester {
	if u == nil {
		return Anonymous()
	}
	if u.IsAdmin {
		return Requester{kind: KindAdmin, id: u.ID}
	}
	return Requester{kind: KindUser, id: u.ID}
}

func (r Requester) Kind() Kind             { return r.kind }
func (r Requester) ID() primitive.ObjectID { return r.id }

// Owns reports whether c belongs to the requester. Anonymous owns nothing.
func (r Requester) Owns(c *model.Contact) bool {
	return r.kind != KindAnonymous && c != nil && c.OwnerID == r.id
}

func (r Requester) String() string {
	if r.kind == KindAnonymous {
		return r.kind.String()
	}
	return r.kind.String() + ":" + r.id.Hex()
}
