package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock) *Codec {
	t.Helper()
	c, err := NewCodec(Config{Secret: testSecret, Now: clock.Now})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestIssueThenVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tok, issued, err := c.Issue(model.Principal{ID: 7, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got := issued.ExpiresAt.Sub(issued.IssuedAt.Time); got != 24*time.Hour {
		t.Fatalf("expiry window = %v, want 24h", got)
	}

	claims, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "a@b.co" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != "outlook-addin-api" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "outlook-addin-client" {
		t.Fatalf("audience = %v", claims.Audience)
	}

	clock.Advance(24*time.Hour - time.Second)
	if _, err := c.Verify(tok); err != nil {
		t.Fatalf("Verify just before expiry: %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tok, _, err := c.Issue(model.Principal{ID: 1, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.Advance(24*time.Hour + time.Second)

	if _, err := c.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyBeforeIssuedAt(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tok, _, err := c.Issue(model.Principal{ID: 1, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.Advance(-time.Hour)

	_, err = c.Verify(tok)
	if !errors.Is(err, ErrNotYetValid) {
		t.Fatalf("expected ErrNotYetValid, got %v", err)
	}
	if errors.Is(err, ErrExpired) || errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("not-yet-valid must be its own kind, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newTestCodec(t, clock)
	other, err := NewCodec(Config{Secret: []byte("another-secret-another-secret-xx"), Now: clock.Now})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, _, err := issuer.Issue(model.Principal{ID: 1, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	tok, _, err := c.Issue(model.Principal{ID: 1, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	forged, _, err := c.Issue(model.Principal{ID: 2, Email: "evil@b.co"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Splice the forged payload onto the original signature.
	orig := strings.Split(tok, ".")
	parts := strings.Split(forged, ".")
	tampered := orig[0] + "." + parts[1] + "." + orig[2]

	if _, err := c.Verify(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	c := newTestCodec(t, &fakeClock{t: time.Now()})

	for _, in := range []string{"", "abc", "a.b", "not.a.jwt"} {
		if _, err := c.Verify(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%q) = %v, want ErrMalformed", in, err)
		}
	}
}

func TestVerifyRejectsForeignIssuerAndAudience(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	sign := func(iss, aud string) string {
		now := clock.Now()
		claims := model.TokenClaims{
			UserID: 1,
			Email:  "a@b.co",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    iss,
				Audience:  jwt.ClaimStrings{aud},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	if _, err := c.Verify(sign("someone-else", "outlook-addin-client")); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("wrong issuer: got %v", err)
	}
	if _, err := c.Verify(sign("outlook-addin-api", "other-client")); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("wrong audience: got %v", err)
	}
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	now := clock.Now()
	claims := model.TokenClaims{
		Email: "a@b.co",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "outlook-addin-api",
			Audience:  jwt.ClaimStrings{"outlook-addin-client"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(tok); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := newTestCodec(t, clock)

	now := clock.Now()
	claims := model.TokenClaims{
		UserID: 1,
		Email:  "a@b.co",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "outlook-addin-api",
			Audience:  jwt.ClaimStrings{"outlook-addin-client"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(tok); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec(Config{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
