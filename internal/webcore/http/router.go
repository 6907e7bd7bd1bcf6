package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/pkg/httpx"
	"github.com/altostack/webcore/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	serviceName string
	startTime   time.Time
	logger      *slog.Logger

	store          store.Store
	TokenService   *service.TokenService
	AccountService *service.AccountService
	UserService    *service.UserService
	LogService     *service.LogService
}

func NewRouter(serviceName string, st store.Store, logger *slog.Logger, allowedOrigins []string) *Router {
	r := &Router{
		Mux:         http.NewServeMux(),
		serviceName: serviceName,
		startTime:   time.Now(),
		store:       st,
		logger:      logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(httpx.CORSConfig{AllowedOrigins: allowedOrigins}),
		httpx.PrometheusMetrics(serviceName),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerProfile()
	r.registerLogs()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	registerHandler := &RegisterHandler{AccountService: r.AccountService}

	// POST /register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /v1/accounts/register",
		httpx.Chain(http.HandlerFunc(registerHandler.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("PATCH /v1/accounts/register/verify",
		httpx.Chain(http.HandlerFunc(registerHandler.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	loginHandler := &LoginHandler{AccountService: r.AccountService}

	// POST /login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/accounts/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/accounts/logout",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLogout),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	passwordHandler := &PasswordHandler{AccountService: r.AccountService}

	r.Mux.Handle("POST /v1/accounts/reset-password",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleResetRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("PATCH /v1/accounts/reset-password/verify",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleResetVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	otpHandler := &OTPHandler{AccountService: r.AccountService}

	// POST /otp - strict rate limit by IP (code resend is a mail-sending endpoint)
	r.Mux.Handle("POST /v1/accounts/otp",
		httpx.Chain(http.HandlerFunc(otpHandler.HandleResend),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProfile() {
	meHandler := &MeHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/accounts/me",
		httpx.Chain(http.HandlerFunc(meHandler.HandleGet),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PUT /v1/accounts/me",
		httpx.Chain(http.HandlerFunc(meHandler.HandleUpdate),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	passwordHandler := &PasswordHandler{AccountService: r.AccountService}

	r.Mux.Handle("PATCH /v1/accounts/me/password",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleChange),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	emailHandler := &EmailHandler{AccountService: r.AccountService}

	r.Mux.Handle("POST /v1/accounts/me/email",
		httpx.Chain(http.HandlerFunc(emailHandler.HandleChange),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("PATCH /v1/accounts/me/email/verify",
		httpx.Chain(http.HandlerFunc(emailHandler.HandleVerify),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	usersHandler := &UsersHandler{UserService: r.UserService}

	// Admin read of arbitrary users. Registered after /me so the literal
	// segment wins over the {id} wildcard.
	r.Mux.Handle("GET /v1/accounts/{id}",
		httpx.Chain(http.HandlerFunc(usersHandler.HandleGet),
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerLogs() {
	h := &LogsHandler{LogService: r.LogService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.TokenService),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/logs", secured(h.HandleList))
	r.Mux.Handle("GET /v1/logs/ip/{ip}", secured(h.HandleByIP))
	r.Mux.Handle("GET /v1/logs/date/{date}", secured(h.HandleByDate))
	r.Mux.Handle("GET /v1/logs/date-range", secured(h.HandleByDateRange))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.serviceName, r.startTime))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
