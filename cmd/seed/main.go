package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bankelig/internal/config"
	"bankelig/internal/db"
	"bankelig/internal/logger"
	"bankelig/internal/model"
	"bankelig/internal/repository"
	"bankelig/internal/service"
)

// Seeds the admin user and a couple of sample bank records. Safe to run
// repeatedly; existing rows are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
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

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	bankRepo := repository.NewBankRepository(gormDB)
	historyRepo := repository.NewBankHistoryRepository(gormDB)
	banks := service.NewBankService(bankRepo, historyRepo, nil, log)

	adminEmail := getenv("SEED_ADMIN_EMAIL", "admin@bankelig.local")
	adminPassword := getenv("SEED_ADMIN_PASSWORD", "Adm1n!pass")

	admin, err := userRepo.FindByEmail(ctx, adminEmail)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal().Err(err).Msg("admin lookup failed")
	}
	if admin == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
		if err != nil {
			log.Fatal().Err(err).Msg("hash admin password failed")
		}
		admin = &model.User{
			Email:           adminEmail,
			Username:        "admin",
			PasswordHash:    string(hash),
			Role:            model.RoleAdmin,
			IsActive:        true,
			IsEmailVerified: true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("create admin failed")
		}
		log.Info().Str("email", adminEmail).Msg("admin user created")
	} else {
		log.Info().Str("email", adminEmail).Msg("admin user already present")
	}

	existing, err := bankRepo.List(ctx, true)
	if err != nil {
		log.Fatal().Err(err).Msg("bank listing failed")
	}
	if len(existing) > 0 {
		log.Info().Int("count", len(existing)).Msg("banks already seeded")
		return
	}

	samples := []struct {
		name           string
		classification string
		eligibility    string
		maxPL, maxBL   float64
	}{
		{"First National", "A", `{"minSalary": 5000, "minAge": 21, "maxAge": 60}`, 500000, 2000000},
		{"Metro Commercial", "B", `{"minSalary": 3500, "minAge": 23, "maxAge": 58}`, 300000, 1500000},
	}
	for _, s := range samples {
		name := s.name
		classification := s.classification
		maxPL := s.maxPL
		maxBL := s.maxBL
		_, err := banks.Create(ctx, service.BankInput{
			BankName:        &name,
			Classification:  &classification,
			EligibilityData: datatypes.JSON(s.eligibility),
			MaximumPLAmount: &maxPL,
			MaximumBLAmount: &maxBL,
		}, admin.ID)
		if err != nil {
			log.Fatal().Err(err).Str("bank", s.name).Msg("seed bank failed")
		}
		log.Info().Str("bank", s.name).Msg("bank seeded")
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
