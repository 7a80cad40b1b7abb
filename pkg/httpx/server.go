package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// OrgIDHeader carries the organization ID when session auth is disabled.
const OrgIDHeader = "X-Org-Id"

const (
	defaultRateLimit      = 100
	defaultBodyLimit      = 1 << 20
	defaultHandlerTimeout = 30 * time.Second
)

// ServerConfig holds the options for NewRouter.
type ServerConfig struct {
	ServiceName   string
	IsDevelopment bool
	// Comma-separated; "*" allows every origin.
	CORSAllowedOrigins string
	RateLimitPerMinute int
	BodyLimitBytes     int64
	HandlerTimeout     time.Duration
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = defaultRateLimit
	}
	if c.BodyLimitBytes <= 0 {
		c.BodyLimitBytes = defaultBodyLimit
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = defaultHandlerTimeout
	}
	return c
}

// Middlewares are the application-specific handlers NewRouter places ahead of
// the shared stack. Nil entries are skipped.
type Middlewares struct {
	Recovery func(http.Handler) http.Handler
	Sentry   func(http.Handler) http.Handler
	Tracing  func(http.Handler) http.Handler
	Logging  func(http.Handler) http.Handler
}

// NewRouter returns a chi.Mux with the shared middleware stack installed.
//
// Order, outermost first: recovery, sentry, request id, tracing, logging,
// real ip, rate limit, cors, body limit, timeout, security headers.
// Recovery sits outside sentry so panics sentry re-raises still become a 500.
func NewRouter(cfg ServerConfig, mw Middlewares) *chi.Mux {
	cfg = cfg.withDefaults()

	stack := make([]func(http.Handler) http.Handler, 0, 11)
	stack = appendNonNil(stack, mw.Recovery, mw.Sentry)
	stack = append(stack, middleware.RequestID)
	stack = appendNonNil(stack, mw.Tracing, mw.Logging)
	stack = append(stack,
		middleware.RealIP,
		rateLimiter(cfg.RateLimitPerMinute),
		CORSMiddleware(cfg.CORSAllowedOrigins),
		RequestBodyLimit(cfg.BodyLimitBytes),
		middleware.Timeout(cfg.HandlerTimeout),
		securityHeaders(cfg.IsDevelopment),
	)

	r := chi.NewRouter()
	r.Use(stack...)
	return r
}

func appendNonNil(dst []func(http.Handler) http.Handler, mws ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler {
	for _, m := range mws {
		if m != nil {
			dst = append(dst, m)
		}
	}
	return dst
}

// rateLimiter buckets by client IP and organization, so tenants behind one
// gateway address do not share a budget.
func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, keyByOrg),
	)
}

func keyByOrg(r *http.Request) (string, error) {
	return strings.TrimSpace(r.Header.Get(OrgIDHeader)), nil
}

func securityHeaders(dev bool) func(http.Handler) http.Handler {
	return secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		IsDevelopment:         dev,
	}).Handler
}

// CORSMiddleware allows the editing surfaces listed in allowedOrigins to call
// the API with either a session cookie or the org header.
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: splitOrigins(allowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, OrgIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})
}

func splitOrigins(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit caps request bodies at maxBytes. Reads past the cap fail
// with *http.MaxBytesError, which handlers turn into a 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer wraps handler in an *http.Server whose write timeout leaves room
// for the router's handler timeout to answer first.
func NewServer(addr string, handler http.Handler, handlerTimeout time.Duration) *http.Server {
	if handlerTimeout <= 0 {
		handlerTimeout = defaultHandlerTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      handlerTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}
