package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	mathrand "math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	authpkg "bankelig/internal/auth"
	apperrors "bankelig/internal/errors"
	"bankelig/internal/model"
	"bankelig/internal/repository"
)

const (
	bcryptCost         = 12
	resetTokenExpiry   = time.Hour
	verificationExpiry = 24 * time.Hour
	minNotFoundDelay   = 200 * time.Millisecond
)

var (
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasDigit   = regexp.MustCompile(`\d`)
	hasSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Mailer sends the transactional mails the auth flows need.
type Mailer interface {
	SendPasswordReset(email, token string) error
	SendEmailVerification(email, token string) error
}

// RegisterInput carries validated registration data.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

// AuthService orchestrates login, registration and credential recovery.
type AuthService interface {
	Login(ctx context.Context, email, password, fingerprint, clientIP string) (token string, user *model.User, err error)
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type authService struct {
	userRepo         repository.UserRepository
	verificationRepo repository.EmailVerificationRepository
	auditRepo        repository.AuditLogRepository
	sessions         SessionManager
	throttle         *authpkg.LoginThrottle
	mailer           Mailer
	log              zerolog.Logger
	sleep            func(time.Duration)
}

// NewAuthService creates the authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	verificationRepo repository.EmailVerificationRepository,
	auditRepo repository.AuditLogRepository,
	sessions SessionManager,
	throttle *authpkg.LoginThrottle,
	mailer Mailer,
	log zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		auditRepo:        auditRepo,
		sessions:         sessions,
		throttle:         throttle,
		mailer:           mailer,
		log:              log.With().Str("component", "auth").Logger(),
		sleep:            time.Sleep,
	}
}

// Login runs the full credential check: throttle, user lookup, password
// verify, session creation. Unknown users and wrong passwords both collapse
// into ErrInvalidCredentials; only inactive accounts get a distinct message.
func (s *authService) Login(ctx context.Context, email, password, fingerprint, clientIP string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log := s.log.With().Str("email", truncateEmail(email)).Str("ip", clientIP).Logger()

	if allowed, retryAfter := s.throttle.Check(email); !allowed {
		log.Warn().Dur("retry_after", retryAfter).Msg("login rejected: account temporarily locked")
		s.audit(ctx, "", model.AuditLockout, map[string]any{"email": email, "ip": clientIP})
		return "", nil, &apperrors.LockoutError{RetryAfter: retryAfter}
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Msg("login: user lookup failed")
			return "", nil, fmt.Errorf("find user: %w", err)
		}
		log.Warn().Msg("login failed: user not found")
		s.throttle.Record(email, false)
		// Randomized delay so the not-found path is not distinguishable by
		// timing from the bcrypt-compare path.
		s.sleep(minNotFoundDelay + time.Duration(mathrand.Intn(500))*time.Millisecond)
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("user_id", user.ID).Msg("login failed: account inactive")
		return "", nil, apperrors.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("user_id", user.ID).Msg("login failed: invalid password")
		s.throttle.Record(email, false)
		s.audit(ctx, user.ID, model.AuditLoginFailure, map[string]any{"ip": clientIP})
		return "", nil, apperrors.ErrInvalidCredentials
	}

	s.throttle.Record(email, true)

	token, err := s.sessions.Create(ctx, user.ID, fingerprint)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("login: session creation failed")
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login successful")
	s.audit(ctx, user.ID, model.AuditLoginSuccess, map[string]any{"ip": clientIP})

	return token, user, nil
}

// Register creates a new user with a hashed password and issues an email
// verification token.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if err := checkPasswordStrength(input.Password); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if existing, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, apperrors.ErrUsernameTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hashed),
		Role:         model.RoleUser,
		IsActive:     true,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := randomToken()
	if err == nil {
		verification := &model.EmailVerification{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: time.Now().Add(verificationExpiry),
		}
		if err := s.verificationRepo.Upsert(ctx, verification); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("store verification token failed")
		} else if err := s.mailer.SendEmailVerification(user.Email, token); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("send verification mail failed")
		}
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// ForgotPassword issues a reset token when the email belongs to a user. It
// always reports success so callers cannot enumerate accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info().Str("email", truncateEmail(email)).Msg("forgot password: unknown email, reporting success")
			return nil
		}
		s.log.Error().Err(err).Msg("forgot password: lookup failed")
		return nil
	}

	token, err := randomToken()
	if err != nil {
		s.log.Error().Err(err).Msg("forgot password: token generation failed")
		return nil
	}

	expiry := time.Now().Add(resetTokenExpiry)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("forgot password: save token failed")
		return nil
	}

	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("forgot password: mail failed")
	}
	return nil
}

// ResetPassword sets a new password from a valid reset token and revokes
// every existing session of the user.
func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if err := checkPasswordStrength(password); err != nil {
		return err
	}

	user, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return fmt.Errorf("find reset token: %w", err)
	}
	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return apperrors.ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.sessions.DeleteAllForUser(ctx, user.ID)
	s.audit(ctx, user.ID, model.AuditPasswordReset, nil)
	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// VerifyEmail marks the user verified from a valid verification token.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	verification, err := s.verificationRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidVerificationToken
		}
		return fmt.Errorf("find verification: %w", err)
	}
	if verification.ExpiresAt.Before(time.Now()) {
		return apperrors.ErrInvalidVerificationToken
	}

	user, err := s.userRepo.FindByID(ctx, verification.UserID)
	if err != nil {
		return apperrors.ErrInvalidVerificationToken
	}

	user.IsEmailVerified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	if err := s.verificationRepo.DeleteByToken(ctx, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("delete verification token failed")
	}
	return nil
}

// ChangePassword verifies the current password before setting the new one
// and revokes every existing session.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	if err := checkPasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.sessions.DeleteAllForUser(ctx, user.ID)
	s.audit(ctx, user.ID, model.AuditPasswordChange, nil)
	return nil
}

// audit writes an auth event; failures are logged and swallowed.
func (s *authService) audit(ctx context.Context, userID, event string, data map[string]any) {
	payload, _ := json.Marshal(data)
	entry := &model.AuthAuditLog{
		UserID: userID,
		Event:  event,
		Data:   datatypes.JSON(payload),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("audit write failed")
	}
}

// checkPasswordStrength enforces the registration password rules: at least
// 8 characters with uppercase, lowercase, digit and special character.
func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return apperrors.ErrWeakPassword
	}
	if !hasUpper.MatchString(password) || !hasLower.MatchString(password) ||
		!hasDigit.MatchString(password) || !hasSpecial.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}

// truncateEmail keeps logs useful without writing full addresses into them.
func truncateEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 3 {
		return email
	}
	return email[:3] + "..." + email[at:]
}

// randomToken returns 32 random bytes hex-encoded.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
