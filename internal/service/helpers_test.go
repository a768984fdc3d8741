package service

import (
	"sync"
	"testing"
	"time"

	"agenda/internal/access"
	"agenda/internal/auth"
	"agenda/internal/config"
	"agenda/internal/events"
	"agenda/internal/logger"
	"agenda/internal/model"
	"agenda/internal/repository/repotest"

	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			Issuer:     "agenda",
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		Admin: config.AdminConfig{
			Name:     config.DefaultAdminName,
			Surname:  config.DefaultAdminSurname,
			Email:    config.DefaultAdminEmail,
			Password: config.DefaultAdminPassword,
		},
	}
}

type recorder struct {
	mu      sync.Mutex
	changes []events.Change
}

func (r *recorder) Publish(c events.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) last() events.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes[len(r.changes)-1]
}

type env struct {
	cfg      *config.Config
	users    *repotest.Users
	contacts *repotest.Contacts
	events   *recorder
	tokens   *auth.TokenManager
	Users    *UserService
	Contacts *ContactService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := testConfig()
	e := &env{
		cfg:      cfg,
		users:    repotest.NewUsers(),
		contacts: repotest.NewContacts(),
		events:   &recorder{},
		tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
	}
	e.Users = NewUserService(e.users, e.tokens, cfg, logger.Discard())
	e.Contacts = NewContactService(e.contacts, e.users, e.events, logger.Discard())
	return e
}

func (e *env) member(name string) (*model.User, access.Requester) {
	u := e.users.Put(&model.User{Name: name, Surname: "Test", Email: name + "@example.com"})
	return u, access.ForUser(u)
}

func (e *env) admin() (*model.User, access.Requester) {
	u := e.users.Put(&model.User{Name: "Admin", Surname: "Sistema", Email: "root@example.com", IsAdmin: true})
	return u, access.ForUser(u)
}

func contactReq(name, surname string) *model.ContactRequest {
	return &model.ContactRequest{Name: name, Surname: surname, Email: name + "@example.com"}
}
