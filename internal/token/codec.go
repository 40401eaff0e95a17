// Package token issues and verifies the bearer tokens handed to add-in
// clients. A Codec is a pure function of its secret, its clock and the
// claims it is given; it performs no I/O.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/duccv/contact-addin/internal/constant"
	"github.com/duccv/contact-addin/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

const DefaultExpiry = 24 * time.Hour

type Config struct {
	Secret   []byte
	Expiry   time.Duration
	Issuer   string
	Audience string
	// Now defaults to time.Now.
	Now func() time.Time
}

type Codec struct {
	secret   []byte
	expiry   time.Duration
	issuer   string
	audience string
	now      func() time.Time
	parser   *jwt.Parser
	validate *validator.Validate
}

func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	if cfg.Issuer == "" {
		cfg.Issuer = constant.TokenIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = constant.TokenAudience
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	c := &Codec{
		secret:   cfg.Secret,
		expiry:   cfg.Expiry,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      cfg.Now,
		validate: validator.New(),
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// ExpiresIn is the validity window of every issued token.
func (c *Codec) ExpiresIn() time.Duration {
	return c.expiry
}

// Issue signs a new token for the principal. Tokens are never re-signed or
// extended; a new login always produces a new token.
func (c *Codec) Issue(p model.Principal) (string, model.TokenClaims, error) {
	now := c.now().Truncate(time.Second)
	claims := model.TokenClaims{
		UserID: p.ID,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		},
	}
	if err := c.validate.Struct(claims); err != nil {
		return "", model.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", model.TokenClaims{}, fmt.Errorf("token signing failed: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm, issuer, audience and time window and
// returns the embedded claims. Errors wrap one of the Err* kinds.
func (c *Codec) Verify(tokenString string) (model.TokenClaims, error) {
	var claims model.TokenClaims
	_, err := c.parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return model.TokenClaims{}, classify(err)
	}

	if err := c.validate.Struct(claims); err != nil {
		return model.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", ErrNotYetValid, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}
