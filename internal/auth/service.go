// Package auth manages actor accounts: signup, login with bearer tokens,
// logout and account deletion.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jeonse-ledger-backend/internal/logger"
	"jeonse-ledger-backend/internal/model"
	"jeonse-ledger-backend/internal/store"
	"jeonse-ledger-backend/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SignupInput is the signup form.
type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"omitempty,max=150"`
	Password1 string `json:"password1" validate:"required,min=8,max=72"`
	Password2 string `json:"password2" validate:"required"`
}

// LoginInput is the login form. Login may be an email or a username.
type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service implements account operations.
type Service struct {
	store    store.Store
	hasher   *Hasher
	tokens   *Tokens
	validate *validation.Validator
}

// NewService creates an account service.
func NewService(s store.Store, hasher *Hasher, tokens *Tokens) *Service {
	return &Service{
		store:    s,
		hasher:   hasher,
		tokens:   tokens,
		validate: validation.New(),
	}
}

// Tokens returns the token issuer used by the service.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Signup registers a new actor and logs them in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*model.Actor, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, "", err
	}
	if in.Password1 != in.Password2 {
		return nil, "", validation.NewError("password2", "passwords do not match")
	}
	if in.Username == "" {
		in.Username = in.Email
	}

	if _, err := s.store.ActorByLogin(ctx, in.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}
	if _, err := s.store.ActorByLogin(ctx, in.Username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(in.Password1)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	actor := &model.Actor{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.store.CreateActor(ctx, actor); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	logger.WithField("actor_id", actor.ID).Infof("actor %q signed up", actor.Username)

	token, _, err := s.tokens.Issue(actor.ID)
	if err != nil {
		return nil, "", err
	}
	return actor, token, nil
}

// Login checks credentials and issues a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*model.Actor, string, error) {
	in.Login = strings.TrimSpace(in.Login)
	if strings.Contains(in.Login, "@") {
		in.Login = strings.ToLower(in.Login)
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, "", err
	}

	actor, err := s.store.ActorByLogin(ctx, in.Login)
	if err == nil && !s.hasher.Check(actor.PasswordHash, in.Password) {
		err = ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrInvalidCredentials) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	token, _, err := s.tokens.Issue(actor.ID)
	if err != nil {
		return nil, "", err
	}
	return actor, token, nil
}

// Authenticate resolves a bearer token to its actor.
func (s *Service) Authenticate(ctx context.Context, raw string) (*model.Actor, Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, Claims{}, err
	}
	actor, err := s.store.ActorByID(ctx, claims.ActorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, Claims{}, ErrInvalidToken
	}
	if err != nil {
		return nil, Claims{}, err
	}
	return actor, claims, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(claims Claims) {
	s.tokens.Revoke(claims)
}

// DeleteAccount removes the actor and all of its listings, then revokes the
// token used for the request.
func (s *Service) DeleteAccount(ctx context.Context, actor *model.Actor, claims Claims) error {
	if err := s.store.DeleteActor(ctx, actor.ID); err != nil {
		return fmt.Errorf("delete account %d: %w", actor.ID, err)
	}
	s.tokens.Revoke(claims)
	logger.WithField("actor_id", actor.ID).Infof("actor %q deleted", actor.Username)
	return nil
}
