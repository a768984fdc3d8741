package repository

import (
	"context"
	"time"

	"agenda/internal/config"
	"agenda/internal/model"
	"agenda/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// IUserRepository defines user persistence
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	EnsureIndexes(ctx context.Context) error
}

// UserRepository implements user persistence
type UserRepository struct {
	base    *generic.MongoBaseRepository[*model.User]
	timeout time.Duration
}

func NewUserRepository(cfg *config.Config, db *mongo.Database) IUserRepository {
	return &UserRepository{
		base:    generic.NewBaseRepository[*model.User](db.Collection(usersCollection)),
		timeout: cfg.Mongo.Timeout,
	}
}

// Create inserts a new user. A taken email is common.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return storeError("create user", r.base.Create(ctx, user))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user, err := r.base.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", err)
	}
	return user, nil
}

// FindByEmail matches the email exactly as stored.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user, err := r.base.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, storeError("find user by email", err)
	}
	return user, nil
}

// FindByIDs loads the users with the given IDs. Missing IDs are absent from the result.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	out := make(map[primitive.ObjectID]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	projection := options.Find().SetProjection(bson.M{"password": 0})
	users, err := r.base.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, projection)
	if err != nil {
		return nil, storeError("find users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()
	return storeError("update user", r.base.Update(ctx, user))
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.base.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return storeError("ensure user indexes", err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
