package access

import (
	"bytes"
	"sort"

	"agenda/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScopeKind is the shape of the readable set.
type ScopeKind int

const (
	// ScopeNone reads nothing.
	ScopeNone ScopeKind = iota
	// ScopeAll reads every contact.
	ScopeAll
	// ScopeOwnedOrPublic reads contacts owned by OwnerID plus public, admin-visible ones.
	ScopeOwnedOrPublic
)

// Scope describes which contacts a requester may read. Stores translate it
// into a query; Includes evaluates it against a single record.
type Scope struct {
	Kind    ScopeKind
	OwnerID primitive.ObjectID
}

// ListScope returns the readable set for r.
func ListScope(r Requester) Scope {
	switch r.kind {
	case KindAnonymous:
		return Scope{Kind: ScopeNone}
	case KindAdmin:
		return Scope{Kind: ScopeAll}
	case KindUser:
		return Scope{Kind: ScopeOwnedOrPublic, OwnerID: r.id}
	default:
		return Scope{Kind: ScopeNone}
	}
}

// Includes reports whether c belongs to the scope.
func (s Scope) Includes(c *model.Contact) bool {
	if c == nil {
		return false
	}
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeOwnedOrPublic:
		return c.OwnerID == s.OwnerID || (c.Public && c.AdminVisible)
	default:
		return false
	}
}

// CanRead reports whether r may read c.
func CanRead(r Requester, c *model.Contact) bool {
	return ListScope(r).Includes(c)
}

// Filter keeps the contacts r may read, preserving order.
func Filter(r Requester, contacts []*model.Contact) []*model.Contact {
	scope := ListScope(r)
	out := make([]*model.Contact, 0, len(contacts))
	for _, c := range contacts {
		if scope.Includes(c) {
			out = append(out, c)
		}
	}
	return out
}

// Less orders contacts by surname, then name, then identifier. Comparison is
// byte-wise; identifiers are ObjectIDs, so ties fall back to creation order.
func Less(a, b *model.Contact) bool {
	if a.Surname != b.Surname {
		return a.Surname < b.Surname
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// Sort orders contacts in place with Less.
func Sort(contacts []*model.Contact) {
	sort.SliceStable(contacts, func(i, j int) bool { return Less(contacts[i], contacts[j]) })
}
