package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/validation"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateEmpty State = iota
	StateRestoring
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "empty"
	}
}

// StateChange is published once per transition between authenticated and
// unauthenticated. Principal and Token are empty when Authenticated is false.
type StateChange struct {
	Authenticated bool
	Principal     *model.Principal
	Token         string
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authPayload struct {
	Token string          `json:"token"`
	User  model.Principal `json:"user"`
}

type verifyPayload struct {
	Valid bool             `json:"valid"`
	User  *model.Principal `json:"user"`
}

// Session owns the client's token and principal. All mutation goes
// through its methods.
type Session struct {
	cfg     Config
	storage Storage
	caller  *caller
	now     func() time.Time
	log     *zap.Logger

	mu            sync.RWMutex
	state         State
	token         string
	principal     *model.Principal
	loginAttempts int

	subMu  sync.Mutex
	subs   map[int]func(StateChange)
	nextID int

	verifyGroup singleflight.Group
}

func NewSession(cfg Config, storage Storage, opts ...Option) *Session {
	cfg = cfg.withDefaults()
	o := buildOptions(opts)
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Session{
		cfg:     cfg,
		storage: storage,
		caller:  &caller{baseURL: cfg.BaseURL, timeout: cfg.Timeout, http: o.httpClient, log: logger.WithComponent(o.log, "transport")},
		now:     o.now,
		log:     logger.WithComponent(o.log, "session"),
		subs:    make(map[int]func(StateChange)),
	}
}

// Subscribe registers fn for state changes and returns its cancel func.
// fn runs on the goroutine that caused the transition.
func (s *Session) Subscribe(fn func(StateChange)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) publish(change StateChange) {
	s.subMu.Lock()
	fns := make([]func(StateChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsLoggedIn reports whether the session is authenticated with both a token
// and a principal.
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.token != "" && s.principal != nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Principal() (model.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return model.Principal{}, false
	}
	return *s.principal, true
}

func (s *Session) LoginAttempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loginAttempts
}

// AuthHeaders returns the bearer header for the current token.
func (s *Session) AuthHeaders() (map[string]string, error) {
	tok := s.Token()
	if tok == "" {
		return nil, ErrAuthRequired
	}
	return map[string]string{"Authorization": "Bearer " + tok}, nil
}

// Initialize restores a persisted session and verifies it with the server.
// Any failure clears the persisted state. It reports whether the session
// ended up authenticated.
func (s *Session) Initialize(ctx context.Context) bool {
	tok, okTok, err := s.storage.Get(TokenKey)
	if err != nil {
		s.log.Warn("Error reading persisted session", zap.Error(err))
		s.clear()
		return false
	}
	rawUser, okUser, err := s.storage.Get(UserKey)
	if err != nil {
		s.log.Warn("Error reading persisted session", zap.Error(err))
		s.clear()
		return false
	}
	if !okTok && !okUser {
		return false
	}
	if !okTok || !okUser || tok == "" {
		s.log.Info("Discarding incomplete persisted session")
		s.clear()
		return false
	}

	var p model.Principal
	if err := json.Unmarshal([]byte(rawUser), &p); err != nil {
		s.log.Warn("Discarding unreadable persisted user", zap.Error(err))
		s.clear()
		return false
	}

	s.mu.Lock()
	s.state = StateRestoring
	s.token = tok
	s.principal = &p
	s.mu.Unlock()

	valid, err := s.Verify(ctx)
	if err != nil || !valid {
		s.log.Info("Persisted session rejected", zap.Bool("valid", valid), zap.Error(err))
		s.clearToken(tok)
		return false
	}

	s.mu.Lock()
	if s.token != tok {
		// A login or logout won the race; its own notification stands.
		s.mu.Unlock()
		return s.IsLoggedIn()
	}
	s.state = StateAuthenticated
	change := s.changeLocked()
	s.mu.Unlock()

	s.publish(change)
	return true
}

// InitializeAsync runs Initialize in the background. The channel yields
// its result once.
func (s *Session) InitializeAsync(ctx context.Context) <-chan bool {
	done := make(chan bool, 1)
	go func() {
		done <- s.Initialize(ctx)
		close(done)
	}()
	return done
}

// Login authenticates with the server. After MaxLoginAttempts rejected
// attempts it fails locally with ErrTooManyAttempts until a login succeeds
// or the process restarts.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.mu.RLock()
	locked := s.loginAttempts >= s.cfg.MaxLoginAttempts
	s.mu.RUnlock()
	if locked {
		return ErrTooManyAttempts
	}

	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if details := validation.Struct(in); details != nil {
		return validationError(details)
	}

	raw, err := s.caller.do(ctx, http.MethodPost, EndpointLogin, nil, in)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status > 0 {
			s.mu.Lock()
			s.loginAttempts++
			s.mu.Unlock()
		}
		return err
	}
	return s.establish(raw)
}

// Register creates an account and signs in. It does not consult the login
// lockout.
func (s *Session) Register(ctx context.Context, email, password string) error {
	in := model.RegisterRequest{Email: strings.TrimSpace(email), Password: password}
	if details := validation.Struct(in); details != nil {
		return validationError(details)
	}

	raw, err := s.caller.do(ctx, http.MethodPost, EndpointRegister, nil, in)
	if err != nil {
		return err
	}
	return s.establish(raw)
}

func (s *Session) establish(raw json.RawMessage) error {
	var res authPayload
	if err := json.Unmarshal(raw, &res); err != nil || res.Token == "" {
		return newError(KindUnknown, "Unexpected authentication response", err)
	}

	user, err := json.Marshal(res.User)
	if err != nil {
		return newError(KindUnknown, "", err)
	}
	s.mu.Lock()
	if err := s.storage.Set(map[string]string{TokenKey: res.Token, UserKey: string(user)}); err != nil {
		s.log.Warn("Could not persist session", zap.Error(err))
	}
	s.token = res.Token
	p := res.User
	s.principal = &p
	s.state = StateAuthenticated
	s.loginAttempts = 0
	change := s.changeLocked()
	s.mu.Unlock()

	s.log.Info("Signed in", zap.String("email", p.Email))
	s.publish(change)
	return nil
}

// Logout clears the persisted and in-memory session and always publishes an
// unauthenticated change.
func (s *Session) Logout() {
	s.clear()
	s.publish(StateChange{Authenticated: false})
	s.log.Info("Signed out")
}

// clear drops the persisted and in-memory session. Storage is only touched
// under mu so the two keys always change together.
func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// clearToken is clear for a session still holding tok.
func (s *Session) clearToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == tok {
		s.resetLocked()
	}
}

func (s *Session) resetLocked() {
	if err := s.storage.Delete(TokenKey, UserKey); err != nil {
		s.log.Warn("Could not clear persisted session", zap.Error(err))
	}
	s.token = ""
	s.principal = nil
	s.state = StateEmpty
}

func (s *Session) changeLocked() StateChange {
	change := StateChange{Authenticated: s.state == StateAuthenticated, Token: s.token}
	if s.principal != nil {
		p := *s.principal
		change.Principal = &p
	}
	return change
}

// Verify asks the server whether the current token is still valid and
// refreshes the principal when it is. A rejected token yields (false, nil);
// transport failures yield an error. It never clears the session.
// Concurrent calls for the same token share one request.
func (s *Session) Verify(ctx context.Context) (bool, error) {
	tok := s.Token()
	if tok == "" {
		return false, nil
	}

	// The shared call must outlive any one caller; the transport still
	// bounds it with the configured timeout.
	ch := s.verifyGroup.DoChan(tok, func() (any, error) {
		return s.verifyRemote(context.WithoutCancel(ctx), tok)
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

func (s *Session) verifyRemote(ctx context.Context, tok string) (bool, error) {
	raw, err := s.caller.do(ctx, http.MethodPost, EndpointVerify,
		map[string]string{"Authorization": "Bearer " + tok}, nil)
	if err != nil {
		if errors.Is(err, ErrAuthentication) {
			return false, nil
		}
		return false, err
	}

	var res verifyPayload
	if err := json.Unmarshal(raw, &res); err != nil {
		return false, newError(KindUnknown, "Unexpected verification response", err)
	}
	if !res.Valid {
		return false, nil
	}

	if res.User != nil {
		p := *res.User
		user, err := json.Marshal(p)
		if err != nil {
			return false, newError(KindUnknown, "", err)
		}
		s.mu.Lock()
		// A logout or a new login while the call was in flight owns the
		// session now.
		if s.token == tok {
			s.principal = &p
			if err := s.storage.Set(map[string]string{UserKey: string(user)}); err != nil {
				s.log.Warn("Could not persist refreshed user", zap.Error(err))
			}
		}
		s.mu.Unlock()
	}
	return true, nil
}

// ShouldRefresh reads the token's exp claim without checking the signature.
// It is true when expiry is within RefreshThreshold or the token cannot be
// decoded, and false when there is no token.
func (s *Session) ShouldRefresh() bool {
	tok := s.Token()
	if tok == "" {
		return false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < s.cfg.RefreshThreshold
}

// AutoRefresh re-verifies a logged-in session nearing expiry and logs out
// when the server rejects the token. Transport errors leave the session
// alone.
func (s *Session) AutoRefresh(ctx context.Context) {
	if !s.IsLoggedIn() || !s.ShouldRefresh() {
		return
	}
	s.log.Debug("Token approaching expiry, verifying")
	valid, err := s.Verify(ctx)
	if err != nil {
		s.log.Warn("Token verification failed", zap.Error(err))
		return
	}
	if !valid {
		s.log.Info("Token no longer valid, signing out")
		s.Logout()
	}
}

// RunRefreshLoop calls AutoRefresh every interval (RefreshInterval when
// zero) until ctx is done.
func (s *Session) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.cfg.RefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.AutoRefresh(ctx)
		}
	}
}
