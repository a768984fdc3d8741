package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agenda/internal/auth"
	"agenda/internal/common"
	"agenda/internal/config"
	"agenda/internal/model"
	"agenda/internal/observability/metrics"
	"agenda/internal/repository"
	"agenda/pkg/util"
)

// UserService handles accounts and sessions
type UserService struct {
	repo   repository.IUserRepository
	tokens *auth.TokenManager
	cfg    *config.Config
	log    *slog.Logger

	// compared against when the email is unknown so a failed login takes the
	// same time whether or not the account exists
	dummyHash string
}

// NewUserService creates a new user service
func NewUserService(repo repository.IUserRepository, tokens *auth.TokenManager, cfg *config.Config, log *slog.Logger) *UserService {
	dummy, err := util.HashPassword("not-a-real-password", cfg.Auth.BcryptCost)
	if err != nil {
		log.Warn("dummy hash unavailable", "error", err)
	}
	return &UserService{repo: repo, tokens: tokens, cfg: cfg, log: log, dummyHash: dummy}
}

// Register creates a non-admin account and signs it in.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (resp *model.AuthResponse, err error) {
	defer func() { metrics.ObserveAuth("register", metrics.Outcome(err)) }()

	if err := req.Normalize(); err != nil {
		return nil, err
	}

	_, err = s.repo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("register %s: %w", req.Email, common.ErrConflict)
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	hash, err := util.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: hash,
		Company:  req.Company,
		Address:  req.Address,
		Phones:   req.Phones,
	}
	// the unique index still catches a concurrent registration of the same email
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID.Hex())

	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable: both are common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (resp *model.AuthResponse, err error) {
	defer func() { metrics.ObserveAuth("login", metrics.Outcome(err)) }()

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			util.VerifyPassword(req.Password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(req.Password, user.Password) {
		s.log.Info("login rejected", "user_id", user.ID.Hex())
		return nil, common.ErrInvalidCredentials
	}
	return s.issue(user)
}

// UpdateProfile changes the descriptive fields of user. Email, password and
// the admin flag are never touched here.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, req *model.ProfileRequest) (*model.User, error) {
	if user == nil {
		return nil, common.ErrUnauthenticated
	}
	updated := *user
	if err := req.Apply(&updated); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.log.Info("profile updated", "user_id", updated.ID.Hex())
	return &updated, nil
}

// EnsureAdmin provisions the configured administrator when no account uses
// its email. It is idempotent: an existing account is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context) (created bool, err error) {
	admin := s.cfg.Admin
	existing, err := s.repo.FindByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			s.log.Warn("admin email belongs to a regular account; not promoting", "email", admin.Email)
		}
		return false, nil
	case !errors.Is(err, common.ErrNotFound):
		return false, err
	}

	hash, err := util.HashPassword(admin.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return false, err
	}
	user := &model.User{
		Name:     admin.Name,
		Surname:  admin.Surname,
		Email:    admin.Email,
		Password: hash,
		IsAdmin:  true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// another instance won the race
			return false, nil
		}
		return false, err
	}
	s.log.Info("default admin created", "email", admin.Email)
	return true, nil
}

func (s *UserService) issue(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID.Hex(), s.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user.ToResponse()}, nil
}
