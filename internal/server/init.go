package server

import (
	"context"
	"log/slog"

	"agenda/internal/auth"
	"agenda/internal/config"
	"agenda/internal/events"
	"agenda/internal/handler"
	"agenda/internal/repository"
	"agenda/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories groups the persistence layer
type Repositories struct {
	Users    repository.IUserRepository
	Contacts repository.IContactRepository
}

// Services groups the business layer
type Services struct {
	Tokens        *auth.TokenManager
	Authenticator *auth.Authenticator
	Users         *service.UserService
	Contacts      *service.ContactService
	Hub           *events.Hub
}

// Handlers groups the HTTP layer
type Handlers struct {
	Auth    *handler.AuthHandler
	Contact *handler.ContactHandler
	Health  *handler.HealthHandler
	Events  *handler.EventsHandler
}

func InitRepositories(cfg *config.Config, db *mongo.Database) *Repositories {
	return &Repositories{
		Users:    repository.NewUserRepository(cfg, db),
		Contacts: repository.NewContactRepository(cfg, db),
	}
}

func InitServices(cfg *config.Config, log *slog.Logger, repos *Repositories) *Services {
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	hub := events.NewHub(events.DefaultBuffer, log)
	return &Services{
		Tokens:        tokens,
		Authenticator: auth.NewAuthenticator(tokens, repos.Users, log),
		Users:         service.NewUserService(repos.Users, tokens, cfg, log),
		Contacts:      service.NewContactService(repos.Contacts, repos.Users, hub, log),
		Hub:           hub,
	}
}

func InitHandlers(cfg *config.Config, log *slog.Logger, s *Services, checks map[string]handler.Pinger) *Handlers {
	return &Handlers{
		Auth:    handler.NewAuthHandler(s.Users),
		Contact: handler.NewContactHandler(s.Contacts),
		Health:  handler.NewHealthHandler(checks, cfg.Mongo.Timeout, log),
		Events:  handler.NewEventsHandler(s.Hub, cfg.Server.CORSOrigins, log),
	}
}

// PopulateInitialData creates indexes and the default administrator. Both
// steps are best effort: a store that is down at startup is logged and the
// process keeps serving, failing requests individually until it recovers.
func PopulateInitialData(ctx context.Context, cfg *config.Config, log *slog.Logger, repos *Repositories, s *Services) {
	if cfg.Mongo.EnsureIndexes {
		if err := repos.Users.EnsureIndexes(ctx); err != nil {
			log.Warn("could not ensure user indexes", "error", err)
		}
		if err := repos.Contacts.EnsureIndexes(ctx); err != nil {
			log.Warn("could not ensure contact indexes", "error", err)
		}
	}
	if _, err := s.Users.EnsureAdmin(ctx); err != nil {
		log.Warn("could not provision default admin", "error", err)
	}
}
