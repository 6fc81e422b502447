package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/drawpoint/authd/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig describes a token-bucket limit as requests per window.
type RateLimitConfig struct {
	// RequestsPerWindow is how many requests the window admits.
	RequestsPerWindow int
	// Window is the period the request count applies to.
	Window time.Duration
	// Burst is how many requests may arrive back to back.
	Burst int
}

// Shared limit profiles. Each can be overridden at startup through
// RATELIMIT_{PROFILE}_REQUESTS, RATELIMIT_{PROFILE}_WINDOW_SEC and
// RATELIMIT_{PROFILE}_BURST environment variables.
var (
	// StrictLimit guards credential-bearing endpoints against brute force.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit covers authenticated operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit covers low-sensitivity endpoints like health checks.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_* environment variables
// on top of def. Unset or malformed values keep the default. Mainly useful
// for loosening limits in test environments.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def

	if n, ok := envPositiveInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := envPositiveInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := envPositiveInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}

	return cfg
}

func envPositiveInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor derives the bucket key for a request, e.g. the caller's IP
// or a client identifier from the body.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys by client IP, preferring X-Forwarded-For then
// X-Real-IP so limits survive a reverse proxy.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// FormFieldKeyExtractor keys by a form field value, for form and query
// parameters alike.
func FormFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if err := r.ParseForm(); err != nil {
			return ""
		}
		return r.FormValue(field)
	}
}

// CompositeKeyExtractor joins the non-empty results of several extractors
// with sep, so a limit can key on IP plus client_id at once.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// bucketSet holds one rate.Limiter per key with periodic eviction of idle
// buckets.
type bucketSet struct {
	buckets sync.Map
	limit   rate.Limit
	burst   int

	mu        sync.Mutex
	lastEvict time.Time
}

func (b *bucketSet) get(key string) *rate.Limiter {
	if lim, ok := b.buckets.Load(key); ok {
		return lim.(*rate.Limiter)
	}

	lim, _ := b.buckets.LoadOrStore(key, rate.NewLimiter(b.limit, b.burst))
	b.evictIdle()
	return lim.(*rate.Limiter)
}

// evictIdle drops buckets that have refilled completely, at most once every
// five minutes. A full bucket means the key has been quiet long enough that
// recreating it later loses nothing.
func (b *bucketSet) evictIdle() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.lastEvict) < 5*time.Minute {
		return
	}
	b.lastEvict = time.Now()

	b.buckets.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(b.burst) {
			b.buckets.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware enforces config per key, answering 429 with a
// Retry-After header once a bucket is drained. Requests whose key cannot be
// extracted pass through with a warning rather than sharing one global
// bucket.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	perSecond := float64(config.RequestsPerWindow) / config.Window.Seconds()

	buckets := &bucketSet{
		limit:     rate.Limit(perSecond),
		burst:     config.Burst,
		lastEvict: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			lim := buckets.get(key)
			if lim.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			// Peek at when the next token arrives without consuming it.
			res := lim.Reserve()
			delay := res.Delay()
			res.Cancel()

			retryAfter := max(int(delay.Seconds()), 1)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", config.Window.String())

			log.Warn("rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP limits by caller IP alone.
func RateLimitByIP(config RateLimitConfig) Middleware {
	return RateLimitMiddleware(config, IPKeyExtractor)
}

// RateLimitByIPAndFormField limits by caller IP combined with a form field,
// typically client_id, so one noisy client cannot exhaust the budget of a
// whole NAT.
func RateLimitByIPAndFormField(config RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		IPKeyExtractor,
		FormFieldKeyExtractor(field),
	))
}
