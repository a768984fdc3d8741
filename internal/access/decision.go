package access

import (
	"fmt"

	"agenda/internal/common"
	"agenda/internal/model"
)

// Operation is an action on contacts.
type Operation int

const (
	OpList Operation = iota
	OpCreate
	OpUpdate
	OpDelete
	OpTogglePublic
	OpToggleAdminVisible
)

// Operations lists every operation.
var Operations = []Operation{OpList, OpCreate, OpUpdate, OpDelete, OpTogglePublic, OpToggleAdminVisible}

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpTogglePublic:
		return "toggle-public"
	case OpToggleAdminVisible:
		return "toggle-admin-visible"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Denial is a refused decision. It unwraps to one of the common sentinels
// (ErrUnauthenticated, ErrNotFound, ErrForbidden, ErrInvalidState).
type Denial struct {
	Op     Operation
	Reason string
	Err    error
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s denied: %s", d.Op, d.Reason)
}

func (d *Denial) Unwrap() error { return d.Err }

func deny(op Operation, err error, reason string) *Denial {
	return &Denial{Op: op, Reason: reason, Err: err}
}

// Authorize decides whether r may perform op. target is the stored contact
// for operations on a single record and nil when it does not exist; it is
// ignored for OpList and OpCreate. A nil result means allowed.
func Authorize(r Requester, op Operation, target *model.Contact) error {
	switch op {
	case OpList:
		// the readable set is narrowed by ListScope; an empty set is not an error
		return nil
	case OpCreate:
		if r.kind == KindAnonymous {
			return deny(op, common.ErrUnauthenticated, "sign in required")
		}
		return nil
	case OpUpdate, OpDelete:
		if err := requireVisibleTarget(r, op, target); err != nil {
			return err
		}
		switch r.kind {
		case KindAdmin:
			return nil
		case KindUser:
			if r.Owns(target) {
				return nil
			}
			return deny(op, common.ErrForbidden, "only the owner or an administrator may change this contact")
		default:
			return deny(op, common.ErrForbidden, "unknown requester kind "+r.kind.String())
		}
	case OpTogglePublic:
		if err := requireVisibleTarget(r, op, target); err != nil {
			return err
		}
		if r.Owns(target) {
			return nil
		}
		return deny(op, common.ErrForbidden, "only the owner may change public visibility")
	case OpToggleAdminVisible:
		if err := requireVisibleTarget(r, op, target); err != nil {
			return err
		}
		if r.kind != KindAdmin {
			return deny(op, common.ErrForbidden, "only an administrator may hide or show public contacts")
		}
		if !target.Public {
			return deny(op, common.ErrInvalidState, "contact is not public")
		}
		return nil
	default:
		return deny(op, common.ErrForbidden, "unknown operation")
	}
}

// requireVisibleTarget runs the identity and existence checks shared by all
// single-record operations.
func requireVisibleTarget(r Requester, op Operation, target *model.Contact) error {
	if r.kind == KindAnonymous {
		return deny(op, common.ErrUnauthenticated, "sign in required")
	}
	if target == nil || !CanRead(r, target) {
		return deny(op, common.ErrNotFound, "contact not found")
	}
	return nil
}
