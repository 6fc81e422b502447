package httpx

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	tokensIssuedTotal   *prometheus.CounterVec
	tokensRevokedTotal  prometheus.Counter
	introspectionsTotal *prometheus.CounterVec
	grantFailuresTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the HTTP and token metrics and returns the
// handler to mount at /metrics. Safe to call more than once.
func RegisterMetrics(registry prometheus.Registerer) (http.Handler, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "In-flight requests by method and path",
		}, []string{"method", "path"})

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authd_tokens_issued_total",
			Help: "Tokens issued by grant type",
		}, []string{"grant_type"})

		tokensRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authd_tokens_revoked_total",
			Help: "Tokens revoked via the revocation endpoint",
		})

		introspectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authd_introspections_total",
			Help: "Introspection calls by outcome",
		}, []string{"active"})

		grantFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authd_grant_failures_total",
			Help: "Rejected grant requests by OAuth2 error code",
		}, []string{"error"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal,
			httpRequestDuration,
			httpInflight,
			tokensIssuedTotal,
			tokensRevokedTotal,
			introspectionsTotal,
			grantFailuresTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	return promhttp.Handler(), nil
}

// WithMetrics instruments HTTP requests with counters, latency and inflight
// gauges. A nop when RegisterMetrics has not run.
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordTokenIssued counts a successful token issuance for the grant type.
func RecordTokenIssued(grantType string) {
	if tokensIssuedTotal != nil {
		tokensIssuedTotal.WithLabelValues(grantType).Inc()
	}
}

// RecordTokenRevoked counts a token revocation.
func RecordTokenRevoked() {
	if tokensRevokedTotal != nil {
		tokensRevokedTotal.Inc()
	}
}

// RecordIntrospection counts an introspection call and its outcome.
func RecordIntrospection(active bool) {
	if introspectionsTotal != nil {
		introspectionsTotal.WithLabelValues(strconv.FormatBool(active)).Inc()
	}
}

// RecordGrantFailure counts a rejected grant by OAuth2 error code.
func RecordGrantFailure(code string) {
	if grantFailuresTotal != nil {
		grantFailuresTotal.WithLabelValues(code).Inc()
	}
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

var (
	ulidSegmentRE  = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Za-hjkmnp-tv-z]{26}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// normalizePath collapses dynamic path segments (IDs, tokens) so label
// cardinality stays bounded.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := strings.SplitN(p, "?", 2)[0]
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if ulidSegmentRE.MatchString(seg) {
		return true
	}
	if tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
