package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wordsanctuary/training-portal/internal/application/bootstrap"
	"github.com/wordsanctuary/training-portal/internal/application/form"
	"github.com/wordsanctuary/training-portal/internal/application/session"
	"github.com/wordsanctuary/training-portal/internal/application/transfer"
	"github.com/wordsanctuary/training-portal/internal/config"
	"github.com/wordsanctuary/training-portal/internal/pkg/inflight"
	"github.com/wordsanctuary/training-portal/internal/transport/http/handler"
	appmiddleware "github.com/wordsanctuary/training-portal/internal/transport/http/middleware"
	"github.com/wordsanctuary/training-portal/internal/transport/http/view"
	"golang.org/x/time/rate"
)

const warmTimeout = 10 * time.Second

// NewRouter builds and returns the portal router.
func NewRouter(cfg *config.Config, deps *Deps, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	sessionOpts := session.Options{MaxAge: cfg.CredentialMaxAge, Secure: cfg.Production(), Logger: logger}
	guard := inflight.New()
	channel := transfer.New(cfg.TransferMaxAge)

	var (
		transitions bootstrap.TransitionObserver
		cacheObs    form.CacheObserver
	)
	if deps.Observer != nil {
		transitions, cacheObs = deps.Observer, deps.Observer
	}

	loader := form.NewLoader(deps.Training, form.LoaderOptions{
		CacheSize:   cfg.SchemaCacheSize,
		CacheTTL:    cfg.SchemaCacheTTL,
		WarmTimeout: warmTimeout,
		Observer:    cacheObs,
		Logger:      logger,
	})
	bootstrapSvc := bootstrap.NewService(bootstrap.ServiceDeps{
		Central:   deps.Central,
		Registrar: deps.Training,
		Transfer:  channel,
		Guard:     guard,
		Observer:  transitions,
		Logger:    logger,
		Routes: bootstrap.Routes{
			CentralFrontendURL: cfg.CentralFrontendURL,
			PublicURL:          cfg.PublicURL,
			SignIn:             cfg.SignInPath,
			Verification:       "/verification",
			Default:            cfg.DefaultRoute,
			Interview:          cfg.InterviewRoute,
			PacingDelay:        cfg.PacingDelay,
			SignInDelay:        cfg.SignInDelay,
		},
	})
	formSvc := form.NewService(form.ServiceDeps{
		Loader:      loader,
		Submitter:   deps.Training,
		Attachments: deps.Attachments,
		Guard:       guard,
		Logger:      logger,
	})

	views := view.MustNew()
	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(bootstrapSvc, views, sessionOpts, cfg.SignInPath)
	receiverH := handler.NewReceiverHandler(channel, logger)
	interviewH := handler.NewInterviewHandler(formSvc, views)
	pageH := handler.NewPageHandler(views)

	// 5 requests/second, burst of 10, on the endpoints that reach the
	// central system.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	receiverCORS := appmiddleware.ReceiverCORS(cfg.CentralFrontendURL)

	r.Get("/health-check/{action}", healthH.Ping)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Inbound handoff from the central frontend. Preflight is answered by
	// the CORS middleware.
	r.With(receiverCORS, sensitiveRL.Limit).Post("/api/data-receiver", receiverH.Receive)
	r.With(receiverCORS).Options("/api/data-receiver", func(http.ResponseWriter, *http.Request) {})

	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Session(sessionOpts, loader.Warm))
		r.Use(appmiddleware.RouteGuard(appmiddleware.GuardConfig{
			Protected:    cfg.ProtectedPrefixes,
			SignIn:       cfg.SignInPath,
			DefaultRoute: cfg.DefaultRoute,
		}))

		r.Get("/", authH.Continue)
		r.With(sensitiveRL.Limit).Get("/continue", authH.Continue)
		r.Get(cfg.SignInPath, authH.SignInPage)
		r.With(sensitiveRL.Limit).Post(cfg.SignInPath, authH.SignIn)
		r.Get("/verification", authH.VerificationPage)
		r.With(sensitiveRL.Limit).Post("/verification", authH.Verify)
		r.With(sensitiveRL.Limit).Post("/verification/resend", authH.Resend)
		r.Get("/data-receiver", authH.DataReceiver)
		r.Post("/logout", authH.Logout)

		r.Get("/trainee", pageH.Trainee)
		r.Get(cfg.InterviewRoute, interviewH.Show)
		r.Post(cfg.InterviewRoute, interviewH.Submit)
		r.Get("/trainee/assessments", pageH.Assessments)
		r.Get("/training-executive/dashboard", pageH.Executive)
		r.Get("/supreme/dashboard", pageH.Supreme)
		r.NotFound(pageH.NotFound)
	})

	return r
}
