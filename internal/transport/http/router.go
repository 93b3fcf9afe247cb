package http

import (
	"net/http"

	"github.com/go-auth-nosql/internal/application/finance"
	"github.com/go-auth-nosql/internal/application/lifecycle"
	"github.com/go-auth-nosql/internal/application/recovery"
	"github.com/go-auth-nosql/internal/application/user"
	"github.com/go-auth-nosql/internal/application/verification"
	"github.com/go-auth-nosql/internal/config"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	"github.com/go-auth-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo        UserRepository
	TokenRepo       TokenRepository
	CategoryRepo    CategoryRepository
	TransactionRepo TransactionRepository
	Hasher          SecretHasher
	Notifier        LinkNotifier
	Publisher       lifecycle.Publisher // optional
	JWTProvider     *jwtinfra.Provider  // optional; finance routes are public without it
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := func(next http.Handler) http.Handler { return next }
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	}

	// 5 requests/second, burst of 10, per client IP on the token and credential routes.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	windows := lifecycle.Windows{Verification: cfg.VerificationTTL, Reset: cfg.ResetTTL}
	verificationSvc := verification.NewService(verification.ServiceDeps{
		Tokens:    deps.TokenRepo,
		Accounts:  deps.UserRepo,
		Hasher:    deps.Hasher,
		Notifier:  deps.Notifier,
		Publisher: deps.Publisher,
		Windows:   windows,
		BaseURL:   cfg.AppBaseURL,
	})
	recoverySvc := recovery.NewService(recovery.ServiceDeps{
		Tokens:    deps.TokenRepo,
		Accounts:  deps.UserRepo,
		Hasher:    deps.Hasher,
		Notifier:  deps.Notifier,
		Publisher: deps.Publisher,
		Windows:   windows,
	})
	userDeps := user.ServiceDeps{
		UserRepo:     deps.UserRepo,
		Hasher:       deps.Hasher,
		Verification: verificationSvc,
	}
	if deps.JWTProvider != nil {
		userDeps.JWTProvider = deps.JWTProvider
	}
	userSvc := user.NewService(userDeps)
	financeSvc := finance.NewService(deps.CategoryRepo, deps.TransactionRepo)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc, verificationSvc, recoverySvc)
	financeH := handler.NewFinanceHandler(financeSvc)

	r.Get("/health", healthH.Check)

	r.Route("/user", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/signup", userH.SignUp)
		r.With(sensitiveRL.Limit).Post("/signin", userH.SignIn)
		r.With(sensitiveRL.Limit).Get("/verify/{userId}/{uniqueString}", userH.Verify)
		r.Get("/verified", userH.Verified)
		r.With(sensitiveRL.Limit).Post("/requestPasswordReset", userH.RequestPasswordReset)
		r.With(sensitiveRL.Limit).Post("/resetPassword", userH.ResetPassword)
	})

	r.Route("/finances", func(r chi.Router) {
		r.Use(authMw)

		r.Post("/categories", financeH.CreateCategory)
		r.Get("/categories", financeH.ListCategories)
		r.Get("/categories/{id}", financeH.GetCategory)
		r.Put("/categories/{id}", financeH.UpdateCategory)
		r.Delete("/categories/{id}", financeH.DeleteCategory)

		r.Post("/transactions", financeH.CreateTransaction)
		r.Get("/transactions", financeH.ListTransactions)
		r.Get("/transactions/{id}", financeH.GetTransaction)
		r.Delete("/transactions/{id}", financeH.DeleteTransaction)
	})

	return r
}
