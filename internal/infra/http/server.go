package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"qrdine-billing/internal/config"
	"qrdine-billing/internal/domain/ports/adapter"
	"qrdine-billing/internal/domain/ports/repository"
	red "qrdine-billing/internal/infra/redis"
	"qrdine-billing/internal/usecase"
)

// Server wires the billing API: order creation, the two payment confirmation
// paths, and the small read surface around them.
type Server struct {
	orderUC     usecase.OrderUseCase
	reconcileUC usecase.ReconcileUseCase
	couponUC    usecase.CouponUseCase
	subUC       usecase.SubscriptionUseCase
	plans       repository.PlanRepository
	gateway     adapter.PaymentGateway
	auth        *AuthManager
	limiter     *red.RateLimiter

	keySecret       string
	webhookSecret   string
	ordersPerMinute int

	log    *zerolog.Logger
	server *http.Server
}

func NewServer(
	cfg *config.Config,
	orderUC usecase.OrderUseCase,
	reconcileUC usecase.ReconcileUseCase,
	couponUC usecase.CouponUseCase,
	subUC usecase.SubscriptionUseCase,
	plans repository.PlanRepository,
	gateway adapter.PaymentGateway,
	auth *AuthManager,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		orderUC:         orderUC,
		reconcileUC:     reconcileUC,
		couponUC:        couponUC,
		subUC:           subUC,
		plans:           plans,
		gateway:         gateway,
		auth:            auth,
		limiter:         limiter,
		keySecret:       cfg.Payment.Razorpay.KeySecret,
		webhookSecret:   cfg.Payment.Razorpay.WebhookSecret,
		ordersPerMinute: cfg.RateLimit.OrdersPerMinute,
		log:             logger,
		server:          &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTP.Port)},
	}
}

// Router builds the chi route tree. Exposed separately so handler tests can
// drive it through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhook/razorpay", s.handleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", s.handleListPlans)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAuth)
			r.Post("/orders", s.handleCreateOrder)
			r.Post("/payments/verify", s.handleVerifyPayment)
			r.Post("/coupons/validate", s.handleValidateCoupon)
			r.Get("/subscription", s.handleGetSubscription)
		})
	})

	return r
}

func (s *Server) Start() error {
	s.server.Handler = s.Router()
	s.log.Info().Str("addr", s.server.Addr).Msg("billing API listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ----- response helpers -----

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

const handlerTimeout = 15 * time.Second
