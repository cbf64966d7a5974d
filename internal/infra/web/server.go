package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"promo-platform/internal/infra/logging"
	"promo-platform/internal/infra/metrics"
	"promo-platform/internal/infra/redis"
	"promo-platform/internal/usecase"
)

// Server wires the HTTP API onto the use cases.
type Server struct {
	users      usecase.UserUseCase
	companies  usecase.CompanyUseCase
	promos     usecase.PromoUseCase
	engagement usecase.EngagementUseCase
	redemption usecase.RedemptionUseCase
	auth       *AuthManager
	limiter    *redis.RateLimiter // nil disables activation rate limiting
	rateLimit  int
	log        *zerolog.Logger
}

func NewServer(
	users usecase.UserUseCase,
	companies usecase.CompanyUseCase,
	promos usecase.PromoUseCase,
	engagement usecase.EngagementUseCase,
	redemption usecase.RedemptionUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	rateLimit int,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		users:      users,
		companies:  companies,
		promos:     promos,
		engagement: engagement,
		redemption: redemption,
		auth:       auth,
		limiter:    limiter,
		rateLimit:  rateLimit,
		log:        logger,
	}
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.traceID)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/auth/sign-up", s.handleUserSignUp)
		r.Post("/auth/sign-in", s.handleUserSignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware(AudienceUser))
			r.Get("/profile", s.handleUserProfile)
			r.Patch("/profile", s.handleUserPatch)
			r.Get("/feed", s.handleFeed)
			r.Get("/promo/history", s.handleHistory)
			r.Get("/promo/{promoID}", s.handlePromoDetail)
			r.With(s.activationRateLimit).Post("/promo/{promoID}/activate", s.handleActivate)
			r.Post("/promo/{promoID}/like", s.handleLike)
			r.Delete("/promo/{promoID}/like", s.handleUnlike)
			r.Get("/promo/{promoID}/comments", s.handleCommentList)
			r.Post("/promo/{promoID}/comments", s.handleCommentAdd)
			r.Get("/promo/{promoID}/comments/{commentID}", s.handleCommentGet)
			r.Put("/promo/{promoID}/comments/{commentID}", s.handleCommentEdit)
			r.Delete("/promo/{promoID}/comments/{commentID}", s.handleCommentDelete)
		})
	})

	r.Route("/api/business", func(r chi.Router) {
		r.Post("/auth/sign-up", s.handleCompanySignUp)
		r.Post("/auth/sign-in", s.handleCompanySignIn)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware(AudienceCompany))
			r.Post("/promo", s.handlePromoCreate)
			r.Get("/promo", s.handlePromoList)
			r.Get("/promo/{promoID}", s.handlePromoGet)
			r.Patch("/promo/{promoID}", s.handlePromoPatch)
			r.Get("/promo/{promoID}/stat", s.handlePromoStat)
		})
	})

	return r
}

func (s *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, r.Method, ww.Status(), float64(elapsed.Milliseconds()))
		logging.With(r.Context(), s.log).Info().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

// activationRateLimit caps activation attempts per user per minute. Redis
// failures fail open: a broken limiter must not take redemptions down.
func (s *Server) activationRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || s.rateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		key := redis.ActivationKey(Subject(r.Context()))
		allowed, err := s.limiter.Allow(r.Context(), key, s.rateLimit, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"detail": "too many activation attempts"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
