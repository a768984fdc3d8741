package repository

import (
	"context"
	"time"

	"agenda/internal/access"
	"agenda/internal/config"
	"agenda/internal/model"
	"agenda/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const contactsCollection = "contacts"

// IContactRepository defines contact persistence
type IContactRepository interface {
	List(ctx context.Context, scope access.Scope) ([]*model.Contact, error)
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

// ContactRepository implements contact persistence
type ContactRepository struct {
	base    *generic.MongoBaseRepository[*model.Contact]
	timeout time.Duration
}

func NewContactRepository(cfg *config.Config, db *mongo.Database) IContactRepository {
	return &ContactRepository{
		base:    generic.NewBaseRepository[*model.Contact](db.Collection(contactsCollection)),
		timeout: cfg.Mongo.Timeout,
	}
}

// sortOrder is surname, name, then _id. String comparison in MongoDB without a
// collation is binary, which matches access.Less.
var sortOrder = bson.D{{Key: "surname", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}}

// ScopeFilter translates a read scope into a query filter. ok is false when
// the scope matches nothing and no query should be issued.
func ScopeFilter(scope access.Scope) (filter bson.M, ok bool) {
	switch scope.Kind {
	case access.ScopeAll:
		return bson.M{}, true
	case access.ScopeOwnedOrPublic:
		return bson.M{"$or": bson.A{
			bson.M{"owner": scope.OwnerID},
			bson.M{"public": true, "adminVisible": true},
		}}, true
	default:
		return nil, false
	}
}

// List returns the contacts in scope, sorted.
func (r *ContactRepository) List(ctx context.Context, scope access.Scope) ([]*model.Contact, error) {
	filter, ok := ScopeFilter(scope)
	if !ok {
		return []*model.Contact{}, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	contacts, err := r.base.Find(ctx, filter, options.Find().SetSort(sortOrder))
	if err != nil {
		return nil, storeError("list contacts", err)
	}
	return contacts, nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	contact, err := r.base.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("find contact", err)
	}
	return contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	return storeError("create contact", r.base.Create(ctx, contact))
}

// Update replaces the stored contact. It is common.ErrNotFound when the
// contact was deleted in the meantime.
func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	contact.UpdatedAt = time.Now().UTC()
	return storeError("update contact", r.base.Update(ctx, contact))
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return storeError("delete contact", r.base.Delete(ctx, id))
}

// EnsureIndexes creates the owner and listing indexes.
func (r *ContactRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.base.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}, Options: options.Index().SetName("owner")},
		{Keys: bson.D{{Key: "public", Value: 1}, {Key: "adminVisible", Value: 1}}, Options: options.Index().SetName("visibility")},
		{Keys: sortOrder, Options: options.Index().SetName("listing_order")},
	})
	return storeError("ensure contact indexes", err)
}
