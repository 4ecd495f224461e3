package main

import (
	"context"
	"net/http"
	"time"

	_ "bankelig/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"bankelig/internal/auth"
	"bankelig/internal/cache"
	"bankelig/internal/config"
	"bankelig/internal/db"
	"bankelig/internal/handler"
	"bankelig/internal/logger"
	"bankelig/internal/mail"
	"bankelig/internal/middleware"
	"bankelig/internal/model"
	"bankelig/internal/repository"
	"bankelig/internal/router"
	"bankelig/internal/service"
)

// @title Bank Eligibility Admin API
// @version 1.0
// @description Internal admin API for bank loan eligibility records with cookie-session authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		// Missing JWT_SECRET lands here: refuse to start.
		boot := logger.New("production")
		boot.Fatal().Err(err).Msg("configuration error")
	}

	log := logger.New(cfg.Environment)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.Bank{},
		&model.BankHistory{},
		&model.EmailVerification{},
		&model.AuthAuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate failed")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	signer, err := auth.NewTokenSigner(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("token signer init failed")
	}

	throttle := auth.NewLoginThrottle()
	limiter := auth.NewFixedWindowLimiter(10, time.Minute)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	bankRepo := repository.NewBankRepository(gormDB)
	historyRepo := repository.NewBankHistoryRepository(gormDB)
	verificationRepo := repository.NewEmailVerificationRepository(gormDB)
	auditRepo := repository.NewAuditLogRepository(gormDB)

	// Services
	mailer := mail.New(cfg.Mail, cfg.AppURL, !cfg.IsProduction(), log)
	sessions := service.NewSessionManager(sessionRepo, userRepo, signer, log)
	authService := service.NewAuthService(userRepo, verificationRepo, auditRepo, sessions, throttle, mailer, log)
	bankService := service.NewBankService(bankRepo, historyRepo, cacheClient, log)
	userService := service.NewUserService(userRepo, sessions, log)

	// Middleware + handlers
	gate := middleware.NewSessionGate(sessions, cfg.IsProduction(), log)
	authHandler := handler.NewAuthHandler(authService, sessions, gate)
	bankHandler := handler.NewBankHandler(bankService)
	userHandler := handler.NewUserHandler(userService, authService)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, gate, limiter, authHandler, bankHandler, userHandler)

	log.Info().
		Str("port", cfg.ServerPort).
		Str("env", cfg.Environment).
		Bool("redis", cacheClient.Ping(context.Background())).
		Msg("starting server")

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server start failed")
	}
}
