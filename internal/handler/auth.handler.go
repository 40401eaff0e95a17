package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duccv/contact-addin/internal/constant"
	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/password"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/duccv/contact-addin/internal/validation"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/duccv/contact-addin/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type TokenIssuer interface {
	Issue(p model.Principal) (string, model.TokenClaims, error)
	ExpiresIn() time.Duration
}

type AuthHandler struct {
	users  store.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	debug  bool
}

func NewAuthHandler(users store.UserStore, hasher PasswordHasher, tokens TokenIssuer, debug bool) *AuthHandler {
	return &AuthHandler{users: users, hasher: hasher, tokens: tokens, debug: debug}
}

// RegisterRoutes mounts /auth on rg. limiter guards login and register;
// gate guards verify.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, gate *middleware.JWTAuthMiddleware, limiter gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/login", limiter, validation.Validate[model.LoginRequest, any](), h.Login)
	auth.POST("/register", limiter, validation.Validate[model.RegisterRequest, any](), h.Register)
	auth.POST("/verify", gate.Authenticate(), h.Verify)
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for a bearer token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		model.LoginRequest	true	"Credentials"
//	@Success		200		{object}	model.AuthResponse
//	@Failure		400		{object}	response.ResponseData
//	@Failure		401		{object}	response.ResponseData
//	@Failure		429		{object}	response.ResponseData
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := validation.Body[model.LoginRequest](c)
	email := normalizeEmail(req.Email)
	log := logger.FromContext(c.Request.Context()).With(zap.String("email", email))

	user, err := h.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Inc(metrics.LoginAttempts, "unknown_user")
			log.Warn("Login failed: unknown user")
			c.AbortWithStatusJSON(http.StatusUnauthorized, constant.INVALID_CREDENTIALS)
			return
		}
		internalError(c, err, "Internal server error during login", h.debug)
		return
	}

	if err := h.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			metrics.Inc(metrics.LoginAttempts, "bad_password")
			log.Warn("Login failed: bad password")
			c.AbortWithStatusJSON(http.StatusUnauthorized, constant.INVALID_CREDENTIALS)
			return
		}
		internalError(c, err, "Internal server error during login", h.debug)
		return
	}

	res, err := h.issue(user, false)
	if err != nil {
		internalError(c, err, "Internal server error during login", h.debug)
		return
	}
	res.Message = "Login successful"
	metrics.Inc(metrics.LoginAttempts, "success")
	log.Info("User logged in", zap.Int64("userId", user.ID))
	c.JSON(http.StatusOK, res)
}

// Register godoc
//
//	@Summary		Register
//	@Description	Creates an account and returns a bearer token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		model.RegisterRequest	true	"Credentials"
//	@Success		201		{object}	model.AuthResponse
//	@Failure		400		{object}	response.ResponseData
//	@Failure		409		{object}	response.ResponseData
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := validation.Body[model.RegisterRequest](c)
	email := normalizeEmail(req.Email)

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		internalError(c, err, "Internal server error during registration", h.debug)
		return
	}

	user, err := h.users.Create(c.Request.Context(), email, hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			c.AbortWithStatusJSON(http.StatusConflict, constant.USER_EXISTS)
			return
		}
		internalError(c, err, "Internal server error during registration", h.debug)
		return
	}

	res, err := h.issue(user, true)
	if err != nil {
		internalError(c, err, "Internal server error during registration", h.debug)
		return
	}
	res.Message = "User registered successfully"
	logger.FromContext(c.Request.Context()).Info("User registered", zap.Int64("userId", user.ID))
	c.JSON(http.StatusCreated, res)
}

// Verify godoc
//
//	@Summary		Verify token
//	@Description	Confirms the bearer token and returns its owner and validity window
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.VerifyResponse
//	@Failure		401	{object}	response.ResponseData
//	@Router			/auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)
	claims, _ := middleware.ClaimsFrom(c)

	res := model.VerifyResponse{
		Valid: true,
		User:  model.UserInfo{ID: p.ID, Email: p.Email},
	}
	if claims.IssuedAt != nil {
		res.TokenInfo.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		res.TokenInfo.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) issue(user model.User, withCreated bool) (model.AuthResponse, error) {
	tok, _, err := h.tokens.Issue(user.Principal())
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	info := model.UserInfo{ID: user.ID, Email: user.Email}
	if withCreated {
		created := user.CreatedAt
		info.CreatedAt = &created
	}
	return model.AuthResponse{
		Token:     tok,
		User:      info,
		ExpiresIn: formatExpiry(h.tokens.ExpiresIn()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func formatExpiry(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return d.String()
}
