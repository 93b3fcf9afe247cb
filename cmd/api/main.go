package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-auth-nosql/internal/application/lifecycle"
	"github.com/go-auth-nosql/internal/application/notification"
	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/infrastructure/awsconf"
	"github.com/go-auth-nosql/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-auth-nosql/internal/infrastructure/jwt"
	sesinfra "github.com/go-auth-nosql/internal/infrastructure/ses"
	"github.com/go-auth-nosql/internal/infrastructure/smtp"
	"github.com/go-auth-nosql/internal/infrastructure/sns"
	"github.com/go-auth-nosql/internal/pkg/secret"
	transporthttp "github.com/go-auth-nosql/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	// JWT provider (optional; finance routes stay public without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	notifier := notification.NewService(mailer)
	verifyCtx, cancelVerify := context.WithTimeout(ctx, 15*time.Second)
	if err := notifier.Verify(verifyCtx); err != nil {
		log.Printf("WARN: mail transport not reachable (driver=%s): %v", cfg.MailDriver, err)
	} else {
		log.Printf("Mail transport ready (driver=%s)", cfg.MailDriver)
	}
	cancelVerify()

	// SNS event publisher (optional).
	var publisher lifecycle.Publisher = lifecycle.NopPublisher{}
	if cfg.SNSTopicARN != "" {
		awsCfg, err := awsconf.Load(ctx, cfg, cfg.SNSRegion)
		if err != nil {
			log.Printf("WARN: SNS publisher not available: %v", err)
		} else {
			publisher = sns.NewPublisher(awsCfg, awsconf.EndpointOverride(cfg), cfg.SNSTopicARN)
		}
	}

	deps := &transporthttp.Deps{
		UserRepo:        dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		TokenRepo:       dynamo.NewTokenRepo(dynamoClient, cfg.DynamoTables.AccountTokens),
		CategoryRepo:    dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories),
		TransactionRepo: dynamo.NewTransactionRepo(dynamoClient, cfg.DynamoTables.Transactions),
		Hasher:          secret.NewHasher(cfg.BcryptCost),
		Notifier:        notifier,
		Publisher:       publisher,
		JWTProvider:     jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// newMailer selects the mail transport named by MAIL_DRIVER.
func newMailer(ctx context.Context, cfg *config.Config) (notification.Mailer, error) {
	switch cfg.MailDriver {
	case "smtp":
		return smtp.NewMailer(cfg), nil
	case "ses":
		awsCfg, err := awsconf.Load(ctx, cfg, cfg.SESRegion)
		if err != nil {
			return nil, err
		}
		return sesinfra.NewSender(awsCfg, awsconf.EndpointOverride(cfg), cfg.MailFrom), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q (want smtp or ses)", cfg.MailDriver)
	}
}
