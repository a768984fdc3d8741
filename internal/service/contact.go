package service

import (
	"context"
	"errors"
	"log/slog"

	"agenda/internal/access"
	"agenda/internal/common"
	"agenda/internal/events"
	"agenda/internal/model"
	"agenda/internal/observability/metrics"
	"agenda/internal/repository"
	"agenda/pkg/timer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactService applies access decisions to contact storage.
// Every operation loads what it needs, asks the access engine, and only then
// writes; refusals never reach the store.
type ContactService struct {
	contacts repository.IContactRepository
	users    repository.IUserRepository
	events   events.Publisher
	log      *slog.Logger
}

// NewContactService creates a new contact service. publisher may be nil.
func NewContactService(contacts repository.IContactRepository, users repository.IUserRepository, publisher events.Publisher, log *slog.Logger) *ContactService {
	return &ContactService{contacts: contacts, users: users, events: publisher, log: log}
}

// List returns the contacts r may read ordered by surname, then name.
func (s *ContactService) List(ctx context.Context, r access.Requester) (out []model.ContactResponse, err error) {
	defer timer.Track(s.log, "ContactService.List")()
	defer func() { s.observe(access.OpList, err) }()

	if err := access.Authorize(r, access.OpList, nil); err != nil {
		return nil, err
	}
	contacts, err := s.contacts.List(ctx, access.ListScope(r))
	if err != nil {
		return nil, err
	}
	access.Sort(contacts)

	owners := s.owners(ctx, contacts)
	out = make([]model.ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, c.ToResponse(owners[c.OwnerID]))
	}
	return out, nil
}

// Create stores a new private contact owned by r.
func (s *ContactService) Create(ctx context.Context, r access.Requester, req *model.ContactRequest) (resp *model.ContactResponse, err error) {
	defer func() { s.observe(access.OpCreate, err) }()

	if err := access.Authorize(r, access.OpCreate, nil); err != nil {
		s.audit(r, access.OpCreate, "", err)
		return nil, err
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	contact := &model.Contact{}
	req.ApplyTo(contact)
	if err := access.PrepareCreate(r, contact); err != nil {
		return nil, err
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	s.audit(r, access.OpCreate, contact.ID.Hex(), nil)

	view := s.view(ctx, contact)
	s.publish(events.Change{Type: events.Created, After: contact, View: view})
	return &view, nil
}

// Update replaces the editable fields of a contact. Owner, identifier and
// visibility are preserved.
func (s *ContactService) Update(ctx context.Context, r access.Requester, id string, req *model.ContactRequest) (resp *model.ContactResponse, err error) {
	defer func() { s.observe(access.OpUpdate, err) }()

	target, err := s.authorizeTarget(ctx, r, access.OpUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}
	updated := target.Clone()
	req.ApplyTo(updated)
	if err := s.contacts.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.audit(r, access.OpUpdate, id, nil)

	view := s.view(ctx, updated)
	s.publish(events.Change{Type: events.Updated, Before: target, After: updated, View: view})
	return &view, nil
}

// Delete removes a contact.
func (s *ContactService) Delete(ctx context.Context, r access.Requester, id string) (err error) {
	defer func() { s.observe(access.OpDelete, err) }()

	target, err := s.authorizeTarget(ctx, r, access.OpDelete, id)
	if err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(r, access.OpDelete, id, nil)

	s.publish(events.Change{Type: events.Deleted, Before: target, View: target.ToResponse(nil)})
	return nil
}

// TogglePublic flips between private and public. Only the owner may do it.
func (s *ContactService) TogglePublic(ctx context.Context, r access.Requester, id string) (*model.ContactResponse, error) {
	return s.toggle(ctx, r, access.OpTogglePublic, id, access.TogglePublic)
}

// ToggleAdminVisible hides or shows a public contact. Only an administrator
// may do it, and only while the contact is public.
func (s *ContactService) ToggleAdminVisible(ctx context.Context, r access.Requester, id string) (*model.ContactResponse, error) {
	return s.toggle(ctx, r, access.OpToggleAdminVisible, id, access.ToggleAdminVisible)
}

func (s *ContactService) toggle(ctx context.Context, r access.Requester, op access.Operation, id string, flip func(*model.Contact)) (resp *model.ContactResponse, err error) {
	defer func() { s.observe(op, err) }()

	target, err := s.authorizeTarget(ctx, r, op, id)
	if err != nil {
		return nil, err
	}
	updated := target.Clone()
	flip(updated)
	if err := s.contacts.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.log.Info("contact visibility changed",
		"contact_id", id,
		"requester", r.String(),
		"from", access.StateOf(target).String(),
		"to", access.StateOf(updated).String(),
	)
	s.audit(r, op, id, nil)

	view := s.view(ctx, updated)
	s.publish(events.Change{Type: events.Visibility, Before: target, After: updated, View: view})
	return &view, nil
}

// authorizeTarget loads the contact named by id and asks the engine whether
// r may perform op on it. Anonymous requesters are refused before any lookup.
func (s *ContactService) authorizeTarget(ctx context.Context, r access.Requester, op access.Operation, id string) (*model.Contact, error) {
	var target *model.Contact
	if r.Kind() != access.KindAnonymous {
		c, err := s.contacts.FindByID(ctx, id)
		switch {
		case err == nil:
			target = c
		case errors.Is(err, common.ErrNotFound):
		default:
			return nil, err
		}
	}
	if err := access.Authorize(r, op, target); err != nil {
		s.audit(r, op, id, err)
		return nil, err
	}
	return target, nil
}

// view renders c with its owner summary. A missing owner leaves the summary out.
func (s *ContactService) view(ctx context.Context, c *model.Contact) model.ContactResponse {
	owner, err := s.users.FindByID(ctx, c.OwnerID.Hex())
	if err != nil {
		s.log.Debug("owner lookup failed", "contact_id", c.ID.Hex(), "error", err)
		return c.ToResponse(nil)
	}
	return c.ToResponse(owner)
}

func (s *ContactService) owners(ctx context.Context, contacts []*model.Contact) map[primitive.ObjectID]*model.User {
	seen := make(map[primitive.ObjectID]struct{}, len(contacts))
	ids := make([]primitive.ObjectID, 0, len(contacts))
	for _, c := range contacts {
		if _, ok := seen[c.OwnerID]; ok {
			continue
		}
		seen[c.OwnerID] = struct{}{}
		ids = append(ids, c.OwnerID)
	}
	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("owner lookup failed", "error", err)
		return nil
	}
	return owners
}

func (s *ContactService) publish(change events.Change) {
	if s.events != nil {
		s.events.Publish(change)
	}
}

func (s *ContactService) observe(op access.Operation, err error) {
	metrics.ObserveContactOperation(op.String(), metrics.Outcome(err))
}

func (s *ContactService) audit(r access.Requester, op access.Operation, contactID string, err error) {
	if err == nil {
		s.log.Info("audit", "action", op.String(), "requester", r.String(), "contact_id", contactID, "outcome", "allowed")
		return
	}
	var denial *access.Denial
	reason := err.Error()
	if errors.As(err, &denial) {
		reason = denial.Reason
	}
	s.log.Warn("audit", "action", op.String(), "requester", r.String(), "contact_id", contactID, "outcome", "denied", "reason", reason)
}
