package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	// ErrInvalidToken is returned for malformed, expired or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRevokedToken is returned for tokens that were logged out.
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims identifies the actor a token was issued to.
type Claims struct {
	ActorID   uint
	TokenID   string
	ExpiresAt time.Time
}

// Tokens issues and verifies HS256 bearer tokens. Logged-out token ids are
// held in memory until the token would have expired anyway.
type Tokens struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache
	now     func() time.Time
}

// NewTokens creates a token issuer signing with secret.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: cache.New(ttl, 10*time.Minute),
		now:     time.Now,
	}
}

// Issue signs a token for actorID.
func (t *Tokens) Issue(actorID uint) (string, Claims, error) {
	now := t.now()
	c := Claims{
		ActorID:   actorID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(actorID), 10),
		ID:        c.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, c, nil
}

// Parse verifies raw and returns its claims.
func (t *Tokens) Parse(raw string) (Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &rc, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(rc.Subject, 10, 64)
	if err != nil || id == 0 || rc.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	if _, found := t.revoked.Get(rc.ID); found {
		return Claims{}, ErrRevokedToken
	}

	return Claims{
		ActorID:   uint(id),
		TokenID:   rc.ID,
		ExpiresAt: rc.ExpiresAt.Time,
	}, nil
}

// Revoke rejects the token with the given claims from now on.
func (t *Tokens) Revoke(c Claims) {
	remaining := c.ExpiresAt.Sub(t.now())
	if remaining <= 0 {
		return
	}
	t.revoked.Set(c.TokenID, struct{}{}, remaining)
}
