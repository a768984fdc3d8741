package auth

import (
	"context"
	"errors"
	"log/slog"

	"agenda/internal/access"
	"agenda/internal/common"
	"agenda/internal/model"
)

// Status is the outcome of resolving a request's credentials.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticated
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusInvalid:
		return "invalid"
	default:
		return "anonymous"
	}
}

// Session is a resolved request identity. User is set only when authenticated.
type Session struct {
	Status Status
	User   *model.User
}

// Requester returns the access-control identity of the session.
// Invalid sessions carry no identity.
func (s Session) Requester() access.Requester {
	if s.Status != StatusAuthenticated {
		return access.Anonymous()
	}
	return access.ForUser(s.User)
}

// UserFinder loads the user a token names.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticator turns a bearer token into a Session.
type Authenticator struct {
	tokens *TokenManager
	users  UserFinder
	log    *slog.Logger
}

func NewAuthenticator(tokens *TokenManager, users UserFinder, log *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, log: log}
}

// Authenticate resolves token. An empty token is anonymous. A token that fails
// verification, has expired or names a user that no longer exists is invalid.
// The only error returned is a store failure while loading the user, which
// wraps common.ErrUnavailable.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{Status: StatusAnonymous}, nil
	}
	claims, err := a.tokens.ValidateToken(token)
	if err != nil {
		a.log.Debug("token rejected", "error", err)
		return Session{Status: StatusInvalid}, nil
	}
	user, err := a.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			return Session{Status: StatusInvalid}, err
		}
		a.log.Debug("token names unknown user", "user_id", claims.UserID(), "error", err)
		return Session{Status: StatusInvalid}, nil
	}
	return Session{Status: StatusAuthenticated, User: user}, nil
}

// AuthenticateHeader resolves an Authorization header value.
func (a *Authenticator) AuthenticateHeader(ctx context.Context, header string) (Session, error) {
	token, err := ExtractToken(header)
	if errors.Is(err, ErrMissingToken) {
		return Session{Status: StatusAnonymous}, nil
	}
	if err != nil {
		return Session{Status: StatusInvalid}, nil
	}
	return a.Authenticate(ctx, token)
}
