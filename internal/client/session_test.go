package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/duccv/contact-addin/internal/model"
)

// blockingHandler holds the first request until release is closed.
type blockingHandler struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	respond func(w http.ResponseWriter, r *http.Request)
}

func newBlockingHandler(respond func(w http.ResponseWriter, r *http.Request)) *blockingHandler {
	return &blockingHandler{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		respond: respond,
	}
}

func (b *blockingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if b.calls.Add(1) == 1 {
		b.entered <- struct{}{}
		<-b.release
	}
	b.respond(w, r)
}

func (b *blockingHandler) unblock() { b.once.Do(func() { close(b.release) }) }

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func TestCacheDropsResponseFromEndedSession(t *testing.T) {
	h := newBlockingHandler(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"requestedBy":"` + bearer(r) + `"}`))
	})
	g, s := newFakeAPI(t, h.ServeHTTP)
	defer h.unblock()
	signInAs(s, "alice-token", model.Principal{ID: 1, Email: "alice@example.com"})

	done := make(chan error, 1)
	go func() {
		_, err := g.Stats(context.Background())
		done <- err
	}()
	<-h.entered

	s.Logout()
	signInAs(s, "bob-token", model.Principal{ID: 2, Email: "bob@example.com"})
	h.unblock()
	if err := <-done; err != nil {
		t.Fatalf("in-flight Stats: %v", err)
	}
	if g.CacheLen() != 0 {
		t.Fatal("a response from an ended session must not be cached")
	}

	res, err := g.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if res.RequestedBy != "bob-token" {
		t.Fatalf("requestedBy = %q, want bob's own response", res.RequestedBy)
	}
	if n := h.calls.Load(); n != 2 {
		t.Fatalf("server calls = %d, want 2", n)
	}
}

func TestCacheKeepsResponseFromSameSession(t *testing.T) {
	var calls atomic.Int32
	g, s := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	signIn(s)

	for i := 0; i < 2; i++ {
		if _, err := g.Stats(context.Background()); err != nil {
			t.Fatalf("Stats: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("server calls = %d, want 1", calls.Load())
	}
}

func TestVerifyDoesNotPersistUserAfterLogout(t *testing.T) {
	h := newBlockingHandler(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":true,"user":{"id":1,"email":"renamed@example.com"}}`))
	})
	_, s := newFakeAPI(t, h.ServeHTTP)
	defer h.unblock()
	_ = s.storage.Set(map[string]string{TokenKey: "t", UserKey: `{"id":1,"email":"a@b.co"}`})
	signIn(s)

	done := make(chan error, 1)
	go func() {
		_, err := s.Verify(context.Background())
		done <- err
	}()
	<-h.entered

	s.Logout()
	h.unblock()
	if err := <-done; err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, ok, _ := s.storage.Get(UserKey); ok {
		t.Fatal("user key written back without its token")
	}
	if _, ok := s.Principal(); ok {
		t.Fatal("principal restored after logout")
	}
}

func TestVerifyPersistsRefreshedUser(t *testing.T) {
	_, s := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":true,"user":{"id":1,"email":"renamed@example.com"}}`))
	})
	_ = s.storage.Set(map[string]string{TokenKey: "t", UserKey: `{"id":1,"email":"a@b.co"}`})
	signIn(s)

	if valid, err := s.Verify(context.Background()); err != nil || !valid {
		t.Fatalf("Verify = %v, %v", valid, err)
	}
	raw, ok, _ := s.storage.Get(UserKey)
	if !ok || !strings.Contains(raw, "renamed@example.com") {
		t.Fatalf("persisted user = %q", raw)
	}
}

func TestInitializeDiscardsHalfSession(t *testing.T) {
	tests := map[string]map[string]string{
		"token only":  {TokenKey: "t"},
		"user only":   {UserKey: `{"id":1,"email":"a@b.co"}`},
		"empty token": {TokenKey: "", UserKey: `{"id":1,"email":"a@b.co"}`},
	}
	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			_, s := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			})
			_ = s.storage.Set(stored)

			if s.Initialize(context.Background()) {
				t.Fatal("half a session must not restore")
			}
			for _, key := range []string{TokenKey, UserKey} {
				if _, ok, _ := s.storage.Get(key); ok {
					t.Fatalf("%s left in storage", key)
				}
			}
			if calls.Load() != 0 {
				t.Fatalf("server called %d times", calls.Load())
			}
		})
	}
}

func TestVerifySurvivesCancelledCaller(t *testing.T) {
	h := newBlockingHandler(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":true,"user":{"id":1,"email":"a@b.co"}}`))
	})
	_, s := newFakeAPI(t, h.ServeHTTP)
	defer h.unblock()
	signIn(s)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := s.Verify(ctx)
		first <- err
	}()
	<-h.entered

	type result struct {
		valid bool
		err   error
	}
	second := make(chan result, 1)
	go func() {
		valid, err := s.Verify(context.Background())
		second <- result{valid, err}
	}()

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller err = %v", err)
	}

	// Let the second caller join the pending call before it completes.
	time.Sleep(20 * time.Millisecond)
	h.unblock()

	res := <-second
	if res.err != nil || !res.valid {
		t.Fatalf("second caller = %v, %v; want true, nil", res.valid, res.err)
	}
}
