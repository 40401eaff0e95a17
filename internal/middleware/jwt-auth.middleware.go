package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/duccv/contact-addin/internal/constant"
	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/model/response"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/duccv/contact-addin/internal/token"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/duccv/contact-addin/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(tokenString string) (model.TokenClaims, error)
}

// PrincipalResolver confirms that the user named by a token still exists.
type PrincipalResolver interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
}

// JWTAuthMiddleware gates routes on a bearer token whose user still exists.
type JWTAuthMiddleware struct {
	verifier TokenVerifier
	users    PrincipalResolver
}

func NewJWTAuthMiddleware(verifier TokenVerifier, users PrincipalResolver) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		verifier: verifier,
		users:    users,
	}
}

type rejection struct {
	reason string
	status int
	body   response.ResponseData
	err    error
}

// Authenticate admits the request only when the token verifies and its
// user resolves. The fresh principal and the claims are stored on the
// context.
func (m *JWTAuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, claims, rej := m.authenticate(c)
		if rej != nil {
			m.reject(c, rej)
			return
		}

		setIdentity(c, principal, claims)
		logger.FromContext(c.Request.Context()).Debug("User authenticated successfully",
			zap.Int64("userId", principal.ID),
			zap.String("path", c.Request.URL.Path))
		c.Next()
	}
}

// Optional runs the same checks but never rejects. On any failure the
// request continues with no principal attached.
func (m *JWTAuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, claims, rej := m.authenticate(c)
		if rej != nil {
			if rej.reason != "missing_token" {
				logger.FromContext(c.Request.Context()).Debug("Optional authentication skipped",
					zap.String("reason", rej.reason), zap.Error(rej.err))
			}
			c.Next()
			return
		}
		setIdentity(c, principal, claims)
		c.Next()
	}
}

func (m *JWTAuthMiddleware) authenticate(c *gin.Context) (model.Principal, model.TokenClaims, *rejection) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return model.Principal{}, model.TokenClaims{}, &rejection{
			reason: "missing_token", status: http.StatusUnauthorized, body: constant.MISSING_TOKEN,
		}
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return model.Principal{}, model.TokenClaims{}, &rejection{
			reason: "empty_token", status: http.StatusUnauthorized, body: constant.EMPTY_TOKEN,
		}
	}

	claims, err := m.verifier.Verify(raw)
	if err != nil {
		return model.Principal{}, model.TokenClaims{}, verifyRejection(err)
	}

	user, err := m.users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Principal{}, model.TokenClaims{}, &rejection{
				reason: "user_not_found", status: http.StatusUnauthorized, body: constant.USER_NO_LONGER_EXISTS, err: err,
			}
		}
		return model.Principal{}, model.TokenClaims{}, &rejection{
			reason: "store_error", status: http.StatusInternalServerError, body: constant.AUTH_INTERNAL_ERROR, err: err,
		}
	}

	return user.Principal(), claims, nil
}

func verifyRejection(err error) *rejection {
	r := &rejection{status: http.StatusUnauthorized, err: err}
	switch {
	case errors.Is(err, token.ErrExpired):
		r.reason, r.body = "token_expired", constant.TOKEN_EXPIRED
	case errors.Is(err, token.ErrMalformed):
		r.reason, r.body = "malformed_token", constant.INVALID_TOKEN
	case errors.Is(err, token.ErrInvalidSignature):
		r.reason, r.body = "invalid_signature", constant.INVALID_TOKEN
	case errors.Is(err, token.ErrInvalidClaims):
		r.reason, r.body = "invalid_claims", constant.INVALID_TOKEN
	default:
		r.reason, r.body = "verification_failed", constant.UNAUTHORIZED
	}
	return r
}

func (m *JWTAuthMiddleware) reject(c *gin.Context, r *rejection) {
	metrics.Inc(metrics.AuthRejections, r.reason)

	log := logger.FromContext(c.Request.Context()).With(
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("ip", getClientIP(c)),
		zap.String("reason", r.reason),
	)
	if r.status >= http.StatusInternalServerError {
		log.Error("Authentication error", zap.Error(r.err))
	} else {
		log.Warn("Authentication failed", zap.Error(r.err))
	}

	c.AbortWithStatusJSON(r.status, r.body)
}

func setIdentity(c *gin.Context, p model.Principal, claims model.TokenClaims) {
	c.Set(constant.PrincipalKey, p)
	c.Set(constant.ClaimsKey, claims)
}

// PrincipalFrom returns the principal attached by the auth middleware.
func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(constant.PrincipalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}

func ClaimsFrom(c *gin.Context) (model.TokenClaims, bool) {
	v, ok := c.Get(constant.ClaimsKey)
	if !ok {
		return model.TokenClaims{}, false
	}
	claims, ok := v.(model.TokenClaims)
	return claims, ok
}
