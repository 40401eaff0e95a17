package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/duccv/contact-addin/internal/handler"
	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/internal/password"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/duccv/contact-addin/internal/store/memory"
	"github.com/duccv/contact-addin/internal/token"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// apiServer runs the real auth and contact handlers over in-memory stores
// and counts requests per path.
type apiServer struct {
	srv   *httptest.Server
	users *memory.UserStore

	mu   sync.Mutex
	hits map[string]int
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	a := &apiServer{users: memory.NewUserStore(), hits: make(map[string]int)}

	codec, err := token.NewCodec(token.Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	gate := middleware.NewJWTAuthMiddleware(codec, a.users)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		a.mu.Lock()
		a.hits[c.Request.URL.Path]++
		a.mu.Unlock()
		c.Next()
	})
	api := r.Group("/api")
	api.GET("/health", handler.NewHealthHandler("test", nil).Health)
	handler.NewAuthHandler(a.users, password.NewHasher(bcrypt.MinCost), codec, true).
		RegisterRoutes(api, gate, func(c *gin.Context) { c.Next() })
	handler.NewContactHandler(memory.NewContactStore(store.DemoContacts()...), true).
		RegisterRoutes(api, gate)

	a.srv = httptest.NewServer(r)
	t.Cleanup(a.srv.Close)
	return a
}

func (a *apiServer) hitCount(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits["/api"+path]
}

func (a *apiServer) config() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = a.srv.URL + "/api"
	return cfg
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Now()} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type notices struct {
	mu   sync.Mutex
	list []string
}

func (n *notices) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, string(level)+": "+message)
}

func (n *notices) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.list...)
}

type clientFixture struct {
	api     *apiServer
	clock   *clock
	storage *MemoryStorage
	session *Session
	gateway *Gateway
	notices *notices
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()
	f := &clientFixture{
		api:     newAPIServer(t),
		clock:   newClock(),
		storage: NewMemoryStorage(),
		notices: &notices{},
	}
	opts := []Option{WithHTTPClient(f.api.srv.Client()), WithClock(f.clock.Now)}
	f.session = NewSession(f.api.config(), f.storage, opts...)
	f.gateway = NewGateway(f.session, f.notices, opts...)
	t.Cleanup(f.gateway.Close)
	return f
}

func TestRegisterScenario(t *testing.T) {
	f := newClientFixture(t)

	var changes []StateChange
	f.session.Subscribe(func(c StateChange) { changes = append(changes, c) })

	if err := f.session.Register(context.Background(), "alice@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !f.session.IsLoggedIn() || f.session.Token() == "" {
		t.Fatal("expected an authenticated session with a token")
	}
	p, ok := f.session.Principal()
	if !ok || p.Email != "alice@example.com" {
		t.Fatalf("principal = %+v", p)
	}
	if len(changes) != 1 || !changes[0].Authenticated || changes[0].Principal.Email != "alice@example.com" {
		t.Fatalf("changes = %+v", changes)
	}
	if tok, ok, _ := f.storage.Get(TokenKey); !ok || tok != f.session.Token() {
		t.Fatal("token was not persisted")
	}
	if _, ok, _ := f.storage.Get(UserKey); !ok {
		t.Fatal("user was not persisted")
	}
}

func TestRegisterValidatesLocally(t *testing.T) {
	f := newClientFixture(t)

	for _, pw := range []string{"", "Ab1", "password1", "PASSWORD1", "Password"} {
		err := f.session.Register(context.Background(), "alice@example.com", pw)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("password %q: err = %v, want validation error", pw, err)
		}
	}
	if err := f.session.Register(context.Background(), "not-an-email", "Password1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad email: err = %v", err)
	}
	if n := f.api.hitCount(EndpointRegister); n != 0 {
		t.Fatalf("register hit the server %d times", n)
	}
}

func TestDuplicateRegistrationIsConflict(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "alice@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	f.session.Logout()

	err := f.session.Register(ctx, "alice@example.com", "Password1")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "User with this email already exists" {
		t.Fatalf("message = %v", err)
	}
}

func TestLoginLockoutScenario(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "bob@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	f.session.Logout()

	for i := 1; i <= 5; i++ {
		err := f.session.Login(ctx, "bob@example.com", "WrongPass1")
		if !errors.Is(err, ErrAuthentication) {
			t.Fatalf("attempt %d: err = %v, want authentication error", i, err)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "Invalid credentials" {
			t.Fatalf("attempt %d: message = %q", i, apiErr.Message)
		}
	}

	err := f.session.Login(ctx, "bob@example.com", "Password1")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("sixth attempt err = %v, want lockout", err)
	}
	if n := f.api.hitCount(EndpointLogin); n != 5 {
		t.Fatalf("login reached the server %d times, want 5", n)
	}
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "bob@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	f.session.Logout()

	_ = f.session.Login(ctx, "bob@example.com", "WrongPass1")
	_ = f.session.Login(ctx, "bob@example.com", "WrongPass1")
	if f.session.LoginAttempts() != 2 {
		t.Fatalf("attempts = %d, want 2", f.session.LoginAttempts())
	}
	if err := f.session.Login(ctx, "BOB@example.com", "Password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if f.session.LoginAttempts() != 0 || !f.session.IsLoggedIn() {
		t.Fatal("successful login should reset attempts and authenticate")
	}
}

func TestProtectedCallWithoutSession(t *testing.T) {
	f := newClientFixture(t)

	_, err := f.gateway.EnrichContact(context.Background(), "john.doe@company.com")
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
	if n := f.api.hitCount(EndpointEnrich); n != 0 {
		t.Fatalf("server was called %d times", n)
	}

	health, err := f.gateway.Health(context.Background())
	if err != nil || health.Status != "healthy" {
		t.Fatalf("Health = %+v, %v", health, err)
	}
}

func TestEnrichCaching(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "alice@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	enrich := func() {
		t.Helper()
		res, err := f.gateway.EnrichContact(ctx, "john.doe@company.com")
		if err != nil {
			t.Fatalf("EnrichContact: %v", err)
		}
		if !res.Data.Enriched || res.Data.ContactInfo.FullName != "John Doe" {
			t.Fatalf("unexpected enrichment %+v", res.Data)
		}
	}

	enrich()
	enrich()
	if n := f.api.hitCount(EndpointEnrich); n != 1 {
		t.Fatalf("two calls within TTL made %d requests, want 1", n)
	}

	f.clock.Advance(DefaultCacheTTL)
	enrich()
	if n := f.api.hitCount(EndpointEnrich); n != 2 {
		t.Fatalf("call after TTL made %d total requests, want 2", n)
	}

	f.session.Logout()
	if f.gateway.CacheLen() != 0 {
		t.Fatal("logout should empty the cache")
	}
	if err := f.session.Login(ctx, "alice@example.com", "Password1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	enrich()
	if n := f.api.hitCount(EndpointEnrich); n != 3 {
		t.Fatalf("call after logout made %d total requests, want 3", n)
	}

	f.gateway.ClearCache(EnrichKey("john.doe@company.com"))
	enrich()
	if n := f.api.hitCount(EndpointEnrich); n != 4 {
		t.Fatalf("call after ClearCache made %d total requests, want 4", n)
	}
}

func TestDeletedUserScenario(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "carol@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.gateway.Stats(ctx); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if f.gateway.CacheLen() == 0 {
		t.Fatal("stats should be cached")
	}

	p, _ := f.session.Principal()
	if err := f.api.users.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := f.gateway.SearchContacts(ctx, "engineer")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "User no longer exists" {
		t.Fatalf("err = %v, want 401 User no longer exists", err)
	}
	if f.session.IsLoggedIn() || f.session.State() != StateEmpty {
		t.Fatal("session should be logged out")
	}
	if f.gateway.CacheLen() != 0 {
		t.Fatal("cache should be purged")
	}
	got := f.notices.all()
	if len(got) != 1 || got[0] != "warning: Session expired. Please log in again." {
		t.Fatalf("notices = %v", got)
	}
	if _, ok, _ := f.storage.Get(TokenKey); ok {
		t.Fatal("token should be removed from storage")
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "dave@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tok := f.session.Token()

	for i := 0; i < 2; i++ {
		valid, err := f.session.Verify(ctx)
		if err != nil || !valid {
			t.Fatalf("Verify #%d = %v, %v", i+1, valid, err)
		}
	}
	if f.session.Token() != tok {
		t.Fatal("verify must not change the token")
	}
}

func TestVerifyFailureKeepsState(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "dave@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	p, _ := f.session.Principal()
	_ = f.api.users.Delete(ctx, p.ID)

	valid, err := f.session.Verify(ctx)
	if err != nil || valid {
		t.Fatalf("Verify = %v, %v; want false, nil", valid, err)
	}
	if !f.session.IsLoggedIn() {
		t.Fatal("Verify alone must not log out")
	}
}

func TestLogoutLeavesNothingToRestore(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "erin@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	restored := NewSession(f.api.config(), f.storage, WithHTTPClient(f.api.srv.Client()))
	var changes []StateChange
	restored.Subscribe(func(c StateChange) { changes = append(changes, c) })
	if !<-restored.InitializeAsync(ctx) {
		t.Fatal("persisted session should restore")
	}
	if len(changes) != 1 || !changes[0].Authenticated {
		t.Fatalf("changes = %+v", changes)
	}

	restored.Logout()
	again := NewSession(f.api.config(), f.storage, WithHTTPClient(f.api.srv.Client()))
	if again.Initialize(ctx) {
		t.Fatal("nothing should be restored after logout")
	}
	if n := f.api.hitCount(EndpointVerify); n != 1 {
		t.Fatalf("verify calls = %d, want 1", n)
	}
}

func TestInitializeClearsRejectedSession(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	_ = f.storage.Set(map[string]string{TokenKey: "not.a.token", UserKey: `{"id":1,"email":"x@example.com"}`})

	if f.session.Initialize(ctx) {
		t.Fatal("a rejected token must not restore")
	}
	if f.session.State() != StateEmpty {
		t.Fatalf("state = %v", f.session.State())
	}
	if _, ok, _ := f.storage.Get(TokenKey); ok {
		t.Fatal("rejected token should be cleared")
	}
}

func TestShouldRefresh(t *testing.T) {
	f := newClientFixture(t)
	if f.session.ShouldRefresh() {
		t.Fatal("no token means no refresh")
	}
	if err := f.session.Register(context.Background(), "fay@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if f.session.ShouldRefresh() {
		t.Fatal("fresh 24h token should not need refresh")
	}

	f.clock.Advance(24*time.Hour - 4*time.Minute)
	if !f.session.ShouldRefresh() {
		t.Fatal("token within 5 minutes of expiry should refresh")
	}

	f.session.mu.Lock()
	f.session.token = "garbage"
	f.session.mu.Unlock()
	if !f.session.ShouldRefresh() {
		t.Fatal("undecodable token should refresh")
	}
}

func TestAutoRefreshLogsOutRejectedToken(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "gus@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	f.session.AutoRefresh(ctx)
	if n := f.api.hitCount(EndpointVerify); n != 0 {
		t.Fatalf("fresh token verified %d times", n)
	}

	p, _ := f.session.Principal()
	_ = f.api.users.Delete(ctx, p.ID)
	f.clock.Advance(24*time.Hour - time.Minute)
	f.session.AutoRefresh(ctx)
	if f.session.IsLoggedIn() {
		t.Fatal("auto refresh should log out a rejected token")
	}
}

func TestBatchReportsErrorsInline(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	if err := f.session.Register(ctx, "hal@example.com", "Password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	results := f.gateway.Batch(ctx, []BatchRequest{
		{Endpoint: EnrichKey("jane.smith@company.com")},
		{Endpoint: "/contacts/missing"},
		{Endpoint: SearchKey("x")},
		{Endpoint: EndpointStats},
	})
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Err != nil || results[3].Err != nil {
		t.Fatalf("unexpected errors: %v / %v", results[0].Err, results[3].Err)
	}
	if !errors.Is(results[1].Err, ErrNotFound) {
		t.Fatalf("missing endpoint err = %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, ErrValidation) {
		t.Fatalf("short query err = %v", results[2].Err)
	}
}
