package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/civicwatch/civicwatch/internal/rest/middleware/identity"
	"github.com/civicwatch/civicwatch/internal/setup/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	errBlocked    = "temporarily blocked for repeated rate limit violations"
	errRateLimit  = "rate limit exceeded"
	headerRetryAt = "Retry-After"
)

type limiterState struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	strikes      int       // Number of times client has violated rate limit
	blockedUntil time.Time // Time until client is blocked for repeated violations
}

// Middleware implements per-client rate limiting for API requests.
// Clients are keyed by caller id when known, otherwise by remote address.
type Middleware struct {
	limiters *gocache.Cache
	config   *config.RateLimit
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a new rate limiting middleware.
func New(config *config.RateLimit, logger *zap.Logger) *Middleware {
	// Keep idle limiters at least as long as a block lasts
	ttl := time.Second * time.Duration(max(config.BurstSize*2, config.BlockDuration*2, 1))

	return &Middleware{
		limiters: gocache.New(ttl, ttl),
		config:   config,
		now:      time.Now,
		logger:   logger.Named("ratelimit"),
	}
}

// AsRESTMiddleware returns a bunrouter middleware handler for rate limiting.
func (m *Middleware) AsRESTMiddleware(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		client := clientKey(req)
		if allowed, retryAfter, msg := m.checkRateLimit(client); !allowed {
			if retryAfter > 0 {
				w.Header().Set(headerRetryAt, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			}
			http.Error(w, msg, http.StatusTooManyRequests)
			return nil
		}
		return next(w, req)
	}
}

// getLimiter returns the limiter state for the client, creating it if needed.
func (m *Middleware) getLimiter(client string) *limiterState {
	if state, ok := m.limiters.Get(client); ok {
		m.limiters.SetDefault(client, state)
		return state.(*limiterState)
	}

	state := &limiterState{
		limiter: rate.NewLimiter(rate.Limit(m.config.RequestsPerSecond), m.config.BurstSize),
	}
	if err := m.limiters.Add(client, state, gocache.DefaultExpiration); err != nil {
		// Another request created it first
		if existing, ok := m.limiters.Get(client); ok {
			return existing.(*limiterState)
		}
	}
	return state
}

// checkRateLimit checks if the request should be allowed and updates violation tracking.
func (m *Middleware) checkRateLimit(client string) (bool, time.Duration, string) {
	state := m.getLimiter(client)

	state.mu.Lock()
	defer state.mu.Unlock()

	now := m.now()
	if !state.blockedUntil.IsZero() && now.Before(state.blockedUntil) {
		return false, state.blockedUntil.Sub(now).Round(time.Second), errBlocked
	}

	if state.limiter.AllowN(now, 1) {
		state.strikes = 0
		return true, 0, ""
	}

	state.strikes++
	if state.strikes >= m.config.StrikeLimit {
		blockDuration := time.Duration(m.config.BlockDuration) * time.Second
		state.blockedUntil = now.Add(blockDuration)
		state.strikes = 0

		m.logger.Debug("Client exceeded strike limit and is now blocked",
			zap.String("client", client),
			zap.Duration("blockDuration", blockDuration))

		return false, blockDuration, errBlocked
	}

	m.logger.Debug("Rate limit exceeded",
		zap.String("client", client),
		zap.Int("strikes", state.strikes))

	delay := time.Duration(float64(time.Second) / max(m.config.RequestsPerSecond, 0.001))
	return false, delay, errRateLimit
}

// clientKey identifies the caller for rate limiting.
func clientKey(req bunrouter.Request) string {
	if actor, err := identity.FromContext(req.Context()); err == nil {
		return "user:" + actor.ID.String()
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	return "ip:" + host
}
