package main

import (
	"context"
	"device-auth-server/config"
	_ "device-auth-server/docs"
	"device-auth-server/internal/handler"
	"device-auth-server/internal/notifier"
	"device-auth-server/internal/repository"
	"device-auth-server/internal/security"
	"device-auth-server/internal/service"
	"device-auth-server/internal/util"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Device-auth-server
// @version 1.0
// @description REST API аутентификации по устройствам: пара opaque секретов на каждое устройство

// @host localhost:8080

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	clock := util.SystemClock{}

	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)

	window, err := time.ParseDuration(cfg.RateLimit.Window)
	if err != nil {
		window = time.Minute
	}
	rateLimiter := repository.NewRateLimitRepository(redisClient, cfg.RateLimit.MaxAttempts, window)

	imageService, err := service.NewProfileImageService(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	issuer, err := service.NewIssuerService(credRepo, &cfg.Credentials, clock)
	if err != nil {
		log.Fatalf("Ошибка создания issuer сервиса: %v", err)
	}
	revoker := service.NewRevokerService(credRepo)

	tokenService := security.NewVerificationTokenService(&cfg.Verification)
	webhookNotifier := notifier.NewWebhookNotifier(&cfg.Webhook)
	verificationService := service.NewVerificationService(userRepo, tokenService, webhookNotifier)

	sessionService := service.NewSessionService(userRepo, credRepo, issuer, revoker, clock)
	policyService := service.NewPolicyService(userRepo, credRepo, rateLimiter)
	userService := service.NewUserService(userRepo, revoker, verificationService, imageService)

	authHandler := handler.NewAuthenticationHandler(sessionService, policyService)
	userHandler := handler.NewUserHandler(userService, verificationService, imageService)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, credRepo, clock)
	setupUserRoutes(router, userHandler, credRepo, clock)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, credRepo *repository.CredentialRepository, clock util.Clock) {
	r.Post("/api/v1/login", h.Login)
	r.Post("/api/v1/refresh-token", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(security.AccessMiddleware(credRepo, clock))
		r.Post("/api/v1/logout", h.Logout)
		r.Post("/api/v1/logout-from-all-devices", h.LogoutAll)
		r.Get("/api/v1/logged-in-devices", h.ListDevices)
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, credRepo *repository.CredentialRepository, clock util.Clock) {
	r.Post("/api/v1/user", h.RegisterUser)
	r.Post("/api/v1/email/verification-notification", h.SendVerification)
	r.Post("/api/v1/email/verify", h.VerifyEmail)

	r.Route("/api/v1/user/{uuid}", func(r chi.Router) {
		r.Use(security.AccessMiddleware(credRepo, clock))
		r.Get("/", h.GetUser)
		r.Put("/", h.UpdateUser)
		r.Put("/password", h.UpdatePassword)
		r.Post("/image", h.PrepareImageUpload)
		r.Delete("/", h.DeleteUser)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
