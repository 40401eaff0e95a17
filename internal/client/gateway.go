package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/duccv/contact-addin/pkg/cache"
	"github.com/duccv/contact-addin/pkg/logger"
	"go.uber.org/zap"
)

const sessionExpiredNotice = "Session expired. Please log in again."

var publicEndpoints = map[string]struct{}{
	EndpointLogin:    {},
	EndpointRegister: {},
	EndpointHealth:   {},
}

func isProtected(endpoint string) bool {
	path, _, _ := strings.Cut(endpoint, "?")
	_, public := publicEndpoints[path]
	return !public
}

type RequestOptions struct {
	Method  string
	Headers map[string]string
	// Body is JSON-encoded unless it is already []byte. Ignored for GET
	// and HEAD.
	Body any
}

// Gateway sends every API call on behalf of a Session. It injects the
// bearer token, enforces the per-call timeout, classifies failures and
// caches idempotent reads until the session ends.
type Gateway struct {
	session  *Session
	caller   *caller
	notifier Notifier
	cache    *cache.LRUCache
	cfg      Config
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.Logger

	// gen counts session changes. A response is cached only if no change
	// happened while it was in flight.
	mu  sync.Mutex
	gen uint64

	unsubscribe func()
}

func NewGateway(session *Session, notifier Notifier, opts ...Option) *Gateway {
	o := buildOptions(opts)
	if notifier == nil {
		notifier = LogNotifier{Log: o.log}
	}
	g := &Gateway{
		session:  session,
		caller:   session.caller,
		notifier: notifier,
		cache: cache.NewLRUCache(session.cfg.CacheCapacity, session.cfg.CacheTTL,
			cache.WithClock(o.now), cache.WithSweepInterval(0)),
		cfg:   session.cfg,
		sleep: o.sleep,
		log:   logger.WithComponent(o.log, "gateway"),
	}
	g.unsubscribe = session.Subscribe(func(change StateChange) {
		g.mu.Lock()
		g.gen++
		if !change.Authenticated {
			g.cache.Clear()
		}
		g.mu.Unlock()
	})
	return g
}

// Close detaches the gateway from its session.
func (g *Gateway) Close() {
	g.unsubscribe()
	g.cache.Stop()
}

// Request performs one call. Protected endpoints fail with ErrAuthRequired
// before any network traffic when the session is not logged in. A 401 seen
// by a logged-in session logs it out and tells the user.
func (g *Gateway) Request(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	protected := isProtected(endpoint)
	loggedIn := g.session.IsLoggedIn()
	if protected && !loggedIn {
		return nil, ErrAuthRequired
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if protected {
		auth, err := g.session.AuthHeaders()
		if err != nil {
			return nil, err
		}
		for k, v := range auth {
			headers[k] = v
		}
	}

	raw, err := g.caller.do(ctx, opts.Method, endpoint, headers, opts.Body)
	if err != nil {
		if errors.Is(err, ErrAuthentication) && g.session.IsLoggedIn() {
			g.log.Info("Authentication expired, signing out", zap.String("endpoint", endpoint))
			g.session.Logout()
			g.notifier.Notify(LevelWarning, sessionExpiredNotice)
		}
		return nil, err
	}
	return raw, nil
}

// cachedGet serves endpoint (path plus query, which is also the cache key)
// from the cache while it is fresh, otherwise fetches and stores it.
func (g *Gateway) cachedGet(ctx context.Context, endpoint string) (json.RawMessage, error) {
	key := endpoint
	if v, ok := g.cache.Get(key); ok {
		g.log.Debug("Using cached response", zap.String("key", key))
		return v.(json.RawMessage), nil
	}

	g.mu.Lock()
	gen, tok := g.gen, g.session.Token()
	g.mu.Unlock()

	raw, err := g.Request(ctx, endpoint, RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != gen || g.session.Token() != tok || !g.session.IsLoggedIn() {
		g.log.Debug("Session changed during request, not caching", zap.String("key", key))
		return raw, nil
	}
	g.cache.Set(key, raw)
	return raw, nil
}

// ClearCache drops the given keys, or everything when none are given.
func (g *Gateway) ClearCache(keys ...string) {
	if len(keys) == 0 {
		g.cache.Clear()
		return
	}
	for _, k := range keys {
		g.cache.Delete(k)
	}
}

// CacheLen counts cached responses.
func (g *Gateway) CacheLen() int {
	return g.cache.Len()
}
