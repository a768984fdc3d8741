// Package repotest provides in-memory repositories for tests of the layers
// above the store.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agenda/internal/access"
	"agenda/internal/common"
	"agenda/internal/model"
	"agenda/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repository.IUserRepository    = (*Users)(nil)
	_ repository.IContactRepository = (*Contacts)(nil)
)

// Users is an in-memory IUserRepository. Setting Err makes every call fail
// with it, which is how tests simulate an unreachable store.
type Users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.User
	Err  error
}

func NewUsers() *Users {
	return &Users{byID: make(map[primitive.ObjectID]*model.User)}
}

func (r *Users) fail() error {
	return r.Err
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return fmt.Errorf("create user: %w", common.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", common.ErrNotFound)
	}
	u, ok := r.byID[oid]
	if !ok {
		return nil, fmt.Errorf("find user: %w", common.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return nil, err
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find user by email: %w", common.ErrNotFound)
}

func (r *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			cp := *u
			cp.Password = ""
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *Users) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	if _, ok := r.byID[user.ID]; !ok {
		return fmt.Errorf("update user: %w", common.ErrNotFound)
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *Users) EnsureIndexes(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fail()
}

// Put stores u as-is, bypassing Create. Used to seed fixtures such as admins.
func (r *Users) Put(u *model.User) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	r.byID[u.ID] = &cp
	return u
}

// Delete removes a user, for tests of tokens naming vanished accounts.
func (r *Users) Delete(id primitive.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Len returns the number of stored users.
func (r *Users) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Contacts is an in-memory IContactRepository.
type Contacts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*model.Contact
	Err  error
}

func NewContacts() *Contacts {
	return &Contacts{byID: make(map[primitive.ObjectID]*model.Contact)}
}

func (r *Contacts) List(_ context.Context, scope access.Scope) ([]*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*model.Contact, 0, len(r.byID))
	for _, c := range r.byID {
		if scope.Includes(c) {
			out = append(out, c.Clone())
		}
	}
	access.Sort(out)
	return out, nil
}

func (r *Contacts) FindByID(_ context.Context, id string) (*model.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", common.ErrNotFound)
	}
	c, ok := r.byID[oid]
	if !ok {
		return nil, fmt.Errorf("find contact: %w", common.ErrNotFound)
	}
	return c.Clone(), nil
}

func (r *Contacts) Create(_ context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	contact.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	contact.CreatedAt, contact.UpdatedAt = now, now
	r.byID[contact.ID] = contact.Clone()
	return nil
}

func (r *Contacts) Update(_ context.Context, contact *model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.byID[contact.ID]; !ok {
		return fmt.Errorf("update contact: %w", common.ErrNotFound)
	}
	contact.UpdatedAt = time.Now().UTC()
	r.byID[contact.ID] = contact.Clone()
	return nil
}

func (r *Contacts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", common.ErrNotFound)
	}
	if _, ok := r.byID[oid]; !ok {
		return fmt.Errorf("delete contact: %w", common.ErrNotFound)
	}
	delete(r.byID, oid)
	return nil
}

func (r *Contacts) EnsureIndexes(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Err
}

// Get returns the stored contact by ID, or nil.
func (r *Contacts) Get(id primitive.ObjectID) *model.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		return c.Clone()
	}
	return nil
}

// Len returns the number of stored contacts.
func (r *Contacts) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
