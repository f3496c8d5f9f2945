package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"edu-games-subscription/internal/infra/metrics"
	"edu-games-subscription/internal/infra/redis"
	"edu-games-subscription/internal/usecase"
)

// ReconcileTrigger is the slice of the expiry worker the admin endpoint needs.
type ReconcileTrigger interface {
	RunOnce(ctx context.Context) (*usecase.ReconcileResult, error)
}

type Server struct {
	entitlements usecase.EntitlementUseCase
	purchases    usecase.PurchaseUseCase
	pricing      usecase.PricingUseCase
	admin        usecase.SubscriptionAdminUseCase
	trigger      ReconcileTrigger
	auth         *AuthManager
	limiter      *redis.RateLimiter
	rateLimit    int
	rateWindow   time.Duration
	log          *zerolog.Logger

	server *http.Server
}

func NewServer(
	entitlements usecase.EntitlementUseCase,
	purchases usecase.PurchaseUseCase,
	pricing usecase.PricingUseCase,
	admin usecase.SubscriptionAdminUseCase,
	trigger ReconcileTrigger,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		entitlements: entitlements,
		purchases:    purchases,
		pricing:      pricing,
		admin:        admin,
		trigger:      trigger,
		auth:         auth,
		limiter:      limiter,
		rateLimit:    rateLimit,
		rateWindow:   rateWindow,
		log:          &l,
	}
}

// RegisterRoutes sets up routing for the payment and admin APIs.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/payment/", http.HandlerFunc(s.paymentRouter))

	adminRouter := s.auth.Middleware(http.HandlerFunc(s.subscriptionsRouter))
	mux.Handle("/subscriptions/", adminRouter)

	mux.HandleFunc("/admin/session", s.handleAdminSession)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// paymentRouter dispatches /payment/* routes.
func (s *Server) paymentRouter(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/payment/"), "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "verify-payment" && r.Method == http.MethodPost:
		s.handleVerifyPayment(w, r)
	case len(parts) == 2 && parts[0] == "subscriptions" && r.Method == http.MethodGet:
		s.handleListSubscriptions(w, r, parts[1])
	case len(parts) == 3 && parts[0] == "check-subscription" && r.Method == http.MethodGet:
		s.handleCheckSubscription(w, r, parts[1], parts[2])
	case len(parts) == 3 && parts[0] == "upgrade-quote" && r.Method == http.MethodGet:
		s.handleUpgradeQuote(w, r, parts[1], parts[2])
	default:
		http.NotFound(w, r)
	}
}

// subscriptionsRouter dispatches the admin /subscriptions/* routes.
func (s *Server) subscriptionsRouter(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/subscriptions/"), "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "check-expired" && r.Method == http.MethodPost:
		s.handleCheckExpired(w, r)
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		s.handleSetStatus(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "extend" && r.Method == http.MethodPatch:
		s.handleExtend(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

// Start blocks serving HTTP until Shutdown or failure.
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: Chain(mux, TraceID(), RequestLog(s.log), Recover(s.log)),
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
