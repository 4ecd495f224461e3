package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"bankelig/internal/auth"
	apperrors "bankelig/internal/errors"
	"bankelig/internal/model"
	"bankelig/internal/repository"
)

// ValidateOutcome names why a session validation succeeded or failed. The
// HTTP surface collapses every non-OK outcome into "unauthenticated"; the
// distinction exists for logs and tests.
type ValidateOutcome int

const (
	ValidateOK ValidateOutcome = iota
	ValidateInvalidToken
	ValidateFingerprintMismatch
	ValidateNotFound
	ValidateExpired
	ValidateUserInactive
	ValidateStoreError
)

func (o ValidateOutcome) String() string {
	switch o {
	case ValidateOK:
		return "ok"
	case ValidateInvalidToken:
		return "invalid_token"
	case ValidateFingerprintMismatch:
		return "fingerprint_mismatch"
	case ValidateNotFound:
		return "not_found"
	case ValidateExpired:
		return "expired"
	case ValidateUserInactive:
		return "user_inactive"
	case ValidateStoreError:
		return "store_error"
	default:
		return "unknown"
	}
}

// SessionManager mediates the full session lifecycle: token issuance backed
// by a persisted row, validation, sliding expiry and revocation. Store
// failures degrade to nil/false results with a logged error; callers never
// see a raw store error from this layer.
type SessionManager interface {
	Create(ctx context.Context, userID, fingerprint string) (string, error)
	Validate(ctx context.Context, token, fingerprint string) (*model.User, ValidateOutcome)
	Delete(ctx context.Context, token string) bool
	DeleteAllForUser(ctx context.Context, userID string) bool
	Extend(ctx context.Context, token string) bool
}

type sessionManager struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	signer      *auth.TokenSigner
	log         zerolog.Logger
	now         func() time.Time
}

// NewSessionManager creates a session manager.
func NewSessionManager(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	signer *auth.TokenSigner,
	log zerolog.Logger,
) SessionManager {
	return &sessionManager{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		signer:      signer,
		log:         log.With().Str("component", "sessions").Logger(),
		now:         time.Now,
	}
}

// Create issues a signed token for the user and persists a session row with
// the same 7-day expiry. Multiple concurrent sessions per user are allowed.
func (m *sessionManager) Create(ctx context.Context, userID, fingerprint string) (string, error) {
	user, err := m.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			m.log.Warn().Str("user_id", userID).Msg("create session: user not found")
			return "", apperrors.ErrUserNotFound
		}
		m.log.Error().Err(err).Str("user_id", userID).Msg("create session: user lookup failed")
		return "", apperrors.ErrUserNotFound
	}
	if !user.IsActive {
		m.log.Warn().Str("user_id", userID).Msg("create session: user inactive")
		return "", apperrors.ErrAccountInactive
	}

	token, err := m.signer.Generate(user, fingerprint)
	if err != nil {
		m.log.Error().Err(err).Str("user_id", userID).Msg("create session: token signing failed")
		return "", err
	}

	session := &model.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: m.now().Add(auth.SessionTokenExpiry),
	}
	if err := m.sessionRepo.Create(ctx, session); err != nil {
		m.log.Error().Err(err).Str("user_id", userID).Msg("create session: persist failed")
		return "", err
	}

	return token, nil
}

// Validate checks the token signature and claim expiry first, so forged or
// stale tokens never touch the store. A fingerprint bound at issuance that
// no longer matches is treated as a hijack signal: the session is deleted.
// Expired rows and rows owned by a missing or inactive user are removed on
// sight.
func (m *sessionManager) Validate(ctx context.Context, token, fingerprint string) (*model.User, ValidateOutcome) {
	if token == "" {
		return nil, ValidateInvalidToken
	}

	claims, err := m.signer.Validate(token)
	if err != nil {
		return nil, ValidateInvalidToken
	}

	if fingerprint != "" && claims.Fingerprint != "" && fingerprint != claims.Fingerprint {
		m.log.Warn().Str("user_id", claims.UserID).Msg("session fingerprint mismatch, possible hijacking attempt")
		m.Delete(ctx, token)
		return nil, ValidateFingerprintMismatch
	}

	session, err := m.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ValidateNotFound
		}
		m.log.Error().Err(err).Msg("validate session: lookup failed")
		return nil, ValidateStoreError
	}

	if session.Expired(m.now()) {
		if err := m.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
			m.log.Error().Err(err).Str("session_id", session.ID).Msg("validate session: expired row cleanup failed")
		}
		return nil, ValidateExpired
	}

	user, err := m.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			m.log.Error().Err(err).Str("user_id", session.UserID).Msg("validate session: user lookup failed")
			return nil, ValidateStoreError
		}
		user = nil
	}
	if user == nil || !user.IsActive {
		if err := m.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
			m.log.Error().Err(err).Str("session_id", session.ID).Msg("validate session: stale row cleanup failed")
		}
		return nil, ValidateUserInactive
	}

	return user, ValidateOK
}

// Delete removes every session row carrying the token. The result reports
// whether the delete operation itself succeeded, not whether a row existed.
func (m *sessionManager) Delete(ctx context.Context, token string) bool {
	if err := m.sessionRepo.DeleteByToken(ctx, token); err != nil {
		m.log.Error().Err(err).Msg("delete session failed")
		return false
	}
	return true
}

// DeleteAllForUser removes every session of the user. Used on account-level
// security actions such as password reset and deactivation.
func (m *sessionManager) DeleteAllForUser(ctx context.Context, userID string) bool {
	if err := m.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		m.log.Error().Err(err).Str("user_id", userID).Msg("delete user sessions failed")
		return false
	}
	return true
}

// Extend pushes the persisted expiry out by a fresh 7-day window. The signed
// token's own expiry is unchanged; the stricter of the two still wins.
func (m *sessionManager) Extend(ctx context.Context, token string) bool {
	if err := m.sessionRepo.UpdateExpiry(ctx, token, m.now().Add(auth.SessionTokenExpiry)); err != nil {
		m.log.Error().Err(err).Msg("extend session failed")
		return false
	}
	return true
}
