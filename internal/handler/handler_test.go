package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/internal/model"
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

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type apiFixture struct {
	router   *gin.Engine
	users    *memory.UserStore
	contacts *memory.ContactStore
	codec    *token.Codec
}

type failingContacts struct {
	store.ContactStore
	err error
}

func (f failingContacts) Lookup(context.Context, string) (model.Contact, error) {
	return model.Contact{}, f.err
}

func (f failingContacts) Stats(context.Context) (model.ContactStats, error) {
	return model.ContactStats{}, f.err
}

func newAPIFixture(t *testing.T, contacts store.ContactStore, debug bool) *apiFixture {
	t.Helper()
	f := &apiFixture{users: memory.NewUserStore()}
	if contacts == nil {
		demo := store.DemoContacts()
		for i := range demo {
			demo[i].UpdatedAt = fixedNow.Add(-72 * time.Hour)
		}
		f.contacts = memory.NewContactStore(demo...)
		contacts = f.contacts
	}

	codec, err := token.NewCodec(token.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Now:    func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	f.codec = codec

	gate := middleware.NewJWTAuthMiddleware(codec, f.users)
	pass := func(c *gin.Context) { c.Next() }

	r := gin.New()
	api := r.Group("/api")
	NewAuthHandler(f.users, password.NewHasher(bcrypt.MinCost), codec, debug).RegisterRoutes(api, gate, pass)
	ch := NewContactHandler(contacts, debug)
	ch.now = func() time.Time { return fixedNow }
	ch.RegisterRoutes(api, gate)
	f.router = r
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (f *apiFixture) register(t *testing.T, email, pw string) string {
	t.Helper()
	w, body := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": pw}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	return body["token"].(string)
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestRegisterLoginVerify(t *testing.T) {
	f := newAPIFixture(t, nil, false)

	w, body := f.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "New.User@Example.com", "password": "Secret123"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	if body["message"] != "User registered successfully" || body["expiresIn"] != "24h" {
		t.Fatalf("unexpected register body %v", body)
	}
	user := body["user"].(map[string]any)
	if user["email"] != "new.user@example.com" || user["createdAt"] == nil {
		t.Fatalf("unexpected user %v", user)
	}

	w, body = f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "NEW.USER@example.com", "password": "Secret123"}, nil)
	if w.Code != http.StatusOK || body["message"] != "Login successful" {
		t.Fatalf("login status = %d, body %v", w.Code, body)
	}
	if _, ok := body["user"].(map[string]any)["createdAt"]; ok {
		t.Fatal("login response must not carry createdAt")
	}
	tok := body["token"].(string)

	w, body = f.do(t, http.MethodPost, "/api/auth/verify", nil, bearer(tok))
	if w.Code != http.StatusOK || body["valid"] != true {
		t.Fatalf("verify status = %d, body %v", w.Code, body)
	}
	info := body["tokenInfo"].(map[string]any)
	if info["issuedAt"] != fixedNow.Format(time.RFC3339) {
		t.Fatalf("issuedAt = %v", info["issuedAt"])
	}
	if info["expiresAt"] != fixedNow.Add(24*time.Hour).Format(time.RFC3339) {
		t.Fatalf("expiresAt = %v", info["expiresAt"])
	}
}

func TestRegisterRejections(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	f.register(t, "taken@example.com", "Secret123")

	tests := []struct {
		name   string
		body   map[string]string
		status int
		errMsg string
	}{
		{"duplicate email", map[string]string{"email": "TAKEN@example.com", "password": "Secret123"}, http.StatusConflict, "User with this email already exists"},
		{"bad email", map[string]string{"email": "not-an-email", "password": "Secret123"}, http.StatusBadRequest, "Validation failed"},
		{"short password", map[string]string{"email": "a@example.com", "password": "Ab1"}, http.StatusBadRequest, "Validation failed"},
		{"weak password", map[string]string{"email": "a@example.com", "password": "alllowercase1"}, http.StatusBadRequest, "Validation failed"},
		{"missing fields", map[string]string{}, http.StatusBadRequest, "Validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, http.MethodPost, "/api/auth/register", tt.body, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if body["error"] != tt.errMsg {
				t.Fatalf("error = %v, want %q", body["error"], tt.errMsg)
			}
		})
	}
}

func TestLoginDoesNotRevealWhichPartFailed(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	f.register(t, "user@example.com", "Secret123")

	wrongPass, b1 := f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "user@example.com", "password": "Wrong123"}, nil)
	unknown, b2 := f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "ghost@example.com", "password": "Secret123"}, nil)

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401", wrongPass.Code, unknown.Code)
	}
	if b1["error"] != b2["error"] {
		t.Fatalf("errors differ: %v vs %v", b1["error"], b2["error"])
	}
}

func TestContactRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	for _, path := range []string{
		"/api/contacts/enrich?email=john.doe@company.com",
		"/api/contacts/search?q=jo",
		"/api/contacts/directory",
		"/api/contacts/stats",
	} {
		w, _ := f.do(t, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", path, w.Code)
		}
	}
}

func TestEnrichHitAndMiss(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	tok := f.register(t, "user@example.com", "Secret123")

	w, body := f.do(t, http.MethodGet, "/api/contacts/enrich?email=JOHN.DOE@company.com", nil, bearer(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if body["requestedBy"] != "user@example.com" {
		t.Fatalf("requestedBy = %v", body["requestedBy"])
	}
	data := body["data"].(map[string]any)
	if data["enriched"] != true || data["email"] != "john.doe@company.com" {
		t.Fatalf("unexpected data %v", data)
	}
	info := data["contactInfo"].(map[string]any)
	if info["fullName"] != "John Doe" || info["department"] != "Engineering" {
		t.Fatalf("unexpected contactInfo %v", info)
	}
	meta := data["metadata"].(map[string]any)
	if meta["dataAge"] != float64(3) || meta["dataSource"] != "Internal Database" {
		t.Fatalf("unexpected metadata %v", meta)
	}

	w, body = f.do(t, http.MethodGet, "/api/contacts/enrich?email=nobody@company.com", nil, bearer(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("miss status = %d", w.Code)
	}
	data = body["data"].(map[string]any)
	if data["enriched"] != false || data["contactInfo"] != nil {
		t.Fatalf("unexpected miss data %v", data)
	}
	if len(data["suggestions"].([]any)) != 3 {
		t.Fatalf("suggestions = %v", data["suggestions"])
	}
}

func TestEnrichValidation(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	tok := f.register(t, "user@example.com", "Secret123")

	for _, path := range []string{"/api/contacts/enrich", "/api/contacts/enrich?email=nope"} {
		w, body := f.do(t, http.MethodGet, path, nil, bearer(tok))
		if w.Code != http.StatusBadRequest || body["error"] != "Validation failed" {
			t.Fatalf("%s: status = %d body %v", path, w.Code, body)
		}
	}
}

func TestEnrichETag(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	tok := f.register(t, "user@example.com", "Secret123")
	path := "/api/contacts/enrich?email=jane.smith@company.com"

	w, _ := f.do(t, http.MethodGet, path, nil, bearer(tok))
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	h := bearer(tok)
	h["If-None-Match"] = etag
	w, _ = f.do(t, http.MethodGet, path, nil, h)
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Fatalf("status = %d, body %q; want empty 304", w.Code, w.Body.String())
	}
}

func TestSearchRanksAndValidates(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	tok := f.register(t, "user@example.com", "Secret123")

	w, body := f.do(t, http.MethodGet, "/api/contacts/search?q=engineer", nil, bearer(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["query"] != "engineer" || body["totalFound"] != float64(2) {
		t.Fatalf("unexpected body %v", body)
	}

	w, _ = f.do(t, http.MethodGet, "/api/contacts/search?q=j", nil, bearer(tok))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("single-character query status = %d, want 400", w.Code)
	}
}

func TestDirectoryPagination(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	tok := f.register(t, "user@example.com", "Secret123")

	w, body := f.do(t, http.MethodGet, "/api/contacts/directory?page=2&limit=2", nil, bearer(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	p := body["pagination"].(map[string]any)
	if p["currentPage"] != float64(2) || p["totalPages"] != float64(3) || p["totalContacts"] != float64(5) {
		t.Fatalf("unexpected pagination %v", p)
	}
	if p["hasNext"] != true || p["hasPrev"] != true {
		t.Fatalf("unexpected paging flags %v", p)
	}
	contacts := body["data"].(map[string]any)["contacts"].([]any)
	if len(contacts) != 2 {
		t.Fatalf("page size = %d, want 2", len(contacts))
	}

	w, body = f.do(t, http.MethodGet, "/api/contacts/directory", nil, bearer(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p = body["pagination"].(map[string]any)
	if p["limit"] != float64(50) || p["hasNext"] != false || p["hasPrev"] != false {
		t.Fatalf("unexpected default pagination %v", p)
	}
	grouped := body["data"].(map[string]any)["contactsByDepartment"].(map[string]any)
	if len(grouped["Engineering"].([]any)) != 2 {
		t.Fatalf("engineering group = %v", grouped["Engineering"])
	}

	w, _ = f.do(t, http.MethodGet, "/api/contacts/directory?limit=500", nil, bearer(tok))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized limit status = %d, want 400", w.Code)
	}
}

func TestStats(t *testing.T) {
	f := newAPIFixture(t, nil, false)
	tok := f.register(t, "user@example.com", "Secret123")

	w, body := f.do(t, http.MethodGet, "/api/contacts/stats", nil, bearer(tok))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	stats := body["statistics"].(map[string]any)
	if stats["totalContacts"] != float64(5) || stats["departmentCount"] != float64(4) {
		t.Fatalf("unexpected stats %v", stats)
	}
	first := stats["departmentBreakdown"].([]any)[0].(map[string]any)
	if first["department"] != "Engineering" || first["contactCount"] != float64(2) {
		t.Fatalf("unexpected first department %v", first)
	}
}

func TestStoreFailureHidesDetailsOutsideDebug(t *testing.T) {
	broken := failingContacts{err: errors.New("connection refused")}

	for _, debug := range []bool{false, true} {
		f := newAPIFixture(t, broken, debug)
		tok := f.register(t, "user@example.com", "Secret123")

		w, body := f.do(t, http.MethodGet, "/api/contacts/stats", nil, bearer(tok))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
		if body["error"] != "Internal server error during stats retrieval" {
			t.Fatalf("error = %v", body["error"])
		}
		wantMsg := "Please try again later"
		if debug {
			wantMsg = "connection refused"
		}
		if body["msg"] != wantMsg {
			t.Fatalf("debug=%v msg = %v, want %q", debug, body["msg"], wantMsg)
		}
	}
}

type staticChecker map[string]string

func (s staticChecker) HealthCheck(context.Context) map[string]string { return s }

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		checker HealthChecker
		status  int
		want    string
	}{
		{"shallow", "", staticChecker{"postgres": "connection refused"}, http.StatusOK, "healthy"},
		{"deep ok", "?deep=true", staticChecker{"postgres": "ok"}, http.StatusOK, "healthy"},
		{"deep failing", "?deep=true", staticChecker{"postgres": "connection refused"}, http.StatusServiceUnavailable, "degraded"},
		{"deep without databases", "?deep=true", nil, http.StatusOK, "healthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("1.0.0", tt.checker)
			r := gin.New()
			r.GET("/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health"+tt.query, nil))
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body model.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.want || body.Version != "1.0.0" {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
