package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authpkg "bankelig/internal/auth"
	apperrors "bankelig/internal/errors"
	"bankelig/internal/model"
)

type authServiceFixture struct {
	userRepo         *MockUserRepository
	verificationRepo *MockEmailVerificationRepository
	auditRepo        *MockAuditLogRepository
	sessions         *MockSessionManager
	mailer           *MockMailer
	throttle         *authpkg.LoginThrottle
	svc              *authService
}

func newAuthServiceFixture() *authServiceFixture {
	f := &authServiceFixture{
		userRepo:         new(MockUserRepository),
		verificationRepo: new(MockEmailVerificationRepository),
		auditRepo:        new(MockAuditLogRepository),
		sessions:         new(MockSessionManager),
		mailer:           new(MockMailer),
		throttle:         authpkg.NewLoginThrottle(),
	}
	f.svc = &authService{
		userRepo:         f.userRepo,
		verificationRepo: f.verificationRepo,
		auditRepo:        f.auditRepo,
		sessions:         f.sessions,
		throttle:         f.throttle,
		mailer:           f.mailer,
		log:              zerolog.Nop(),
		sleep:            func(time.Duration) {},
	}
	return f
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	user := &model.User{
		ID:           "u-1",
		Email:        "a@b.com",
		PasswordHash: hashOf(t, "P@ssw0rd1"),
		Role:         model.RoleUser,
		IsActive:     true,
	}
	f.userRepo.On("FindByEmail", ctx, "a@b.com").Return(user, nil)
	f.sessions.On("Create", ctx, "u-1", "fp").Return("signed-token", nil)
	f.auditRepo.On("Create", ctx, mock.AnythingOfType("*model.AuthAuditLog")).Return(nil)

	token, got, err := f.svc.Login(ctx, "A@B.com", "P@ssw0rd1", "fp", "127.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, user.ID, got.ID)
}

func TestLogin_UnknownUserGetsGenericError(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	f.userRepo.On("FindByEmail", ctx, "ghost@b.com").Return(nil, gorm.ErrRecordNotFound)

	token, got, err := f.svc.Login(ctx, "ghost@b.com", "whatever", "", "127.0.0.1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, got)
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_InactiveAccountGetsDistinctError(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	user := &model.User{
		ID:           "u-2",
		Email:        "a@b.com",
		PasswordHash: hashOf(t, "P@ssw0rd1"),
		IsActive:     false,
	}
	f.userRepo.On("FindByEmail", ctx, "a@b.com").Return(user, nil)

	// Correct password, inactive account: the error is not the generic one
	// and no session is created.
	token, got, err := f.svc.Login(ctx, "a@b.com", "P@ssw0rd1", "", "127.0.0.1")
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, got)
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_BadPasswordGetsGenericError(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	user := &model.User{
		ID:           "u-3",
		Email:        "a@b.com",
		PasswordHash: hashOf(t, "P@ssw0rd1"),
		IsActive:     true,
	}
	f.userRepo.On("FindByEmail", ctx, "a@b.com").Return(user, nil)
	f.auditRepo.On("Create", ctx, mock.AnythingOfType("*model.AuthAuditLog")).Return(nil)

	_, _, err := f.svc.Login(ctx, "a@b.com", "wrong", "", "127.0.0.1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	user := &model.User{
		ID:           "u-4",
		Email:        "a@b.com",
		PasswordHash: hashOf(t, "P@ssw0rd1"),
		IsActive:     true,
	}
	f.userRepo.On("FindByEmail", ctx, "a@b.com").Return(user, nil)
	f.auditRepo.On("Create", ctx, mock.AnythingOfType("*model.AuthAuditLog")).Return(nil)

	for i := 0; i < authpkg.MaxLoginAttempts; i++ {
		_, _, err := f.svc.Login(ctx, "a@b.com", "wrong", "", "127.0.0.1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	// Sixth attempt is rejected before any credential check.
	_, _, err := f.svc.Login(ctx, "a@b.com", "P@ssw0rd1", "", "127.0.0.1")
	var lockout *apperrors.LockoutError
	assert.ErrorAs(t, err, &lockout)
	assert.Positive(t, lockout.RetryAfter)
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	existing := &model.User{ID: "u-5", Email: "taken@b.com"}
	f.userRepo.On("FindByEmail", ctx, "taken@b.com").Return(existing, nil)

	_, err := f.svc.Register(ctx, RegisterInput{
		Email:    "taken@b.com",
		Username: "newuser",
		Password: "Str0ng!pass",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	f := newAuthServiceFixture()

	for _, password := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSpecial11"} {
		_, err := f.svc.Register(context.Background(), RegisterInput{
			Email:    "new@b.com",
			Username: "newuser",
			Password: password,
		})
		assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "password %q should be rejected", password)
	}
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_CreatesUserAndVerification(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	f.userRepo.On("FindByEmail", ctx, "new@b.com").Return(nil, gorm.ErrRecordNotFound)
	f.userRepo.On("FindByUsername", ctx, "newuser").Return(nil, gorm.ErrRecordNotFound)
	f.userRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = "u-new"
		}).
		Return(nil)
	f.verificationRepo.On("Upsert", ctx, mock.AnythingOfType("*model.EmailVerification")).Return(nil)
	f.mailer.On("SendEmailVerification", "new@b.com", mock.AnythingOfType("string")).Return(nil)

	user, err := f.svc.Register(ctx, RegisterInput{
		Email:    "new@b.com",
		Username: "newuser",
		Password: "Str0ng!pass",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsEmailVerified)
	f.mailer.AssertCalled(t, "SendEmailVerification", "new@b.com", mock.AnythingOfType("string"))
}

func TestForgotPassword_UnknownEmailStillSucceeds(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	f.userRepo.On("FindByEmail", ctx, "ghost@b.com").Return(nil, gorm.ErrRecordNotFound)

	err := f.svc.ForgotPassword(ctx, "ghost@b.com")
	assert.NoError(t, err)
	f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything)
}

func TestResetPassword_RevokesAllSessions(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	expiry := time.Now().Add(30 * time.Minute)
	token := "reset-token"
	user := &model.User{
		ID:               "u-6",
		Email:            "a@b.com",
		PasswordHash:     hashOf(t, "OldP@ss1"),
		IsActive:         true,
		ResetToken:       &token,
		ResetTokenExpiry: &expiry,
	}
	f.userRepo.On("FindByResetToken", ctx, token).Return(user, nil)
	f.userRepo.On("Update", ctx, user).Return(nil)
	f.sessions.On("DeleteAllForUser", ctx, "u-6").Return(true)
	f.auditRepo.On("Create", ctx, mock.AnythingOfType("*model.AuthAuditLog")).Return(nil)

	err := f.svc.ResetPassword(ctx, token, "NewStr0ng!pass")
	assert.NoError(t, err)
	assert.Nil(t, user.ResetToken)
	assert.Nil(t, user.ResetTokenExpiry)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("NewStr0ng!pass")))
	f.sessions.AssertCalled(t, "DeleteAllForUser", ctx, "u-6")
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()

	expiry := time.Now().Add(-time.Minute)
	token := "stale-token"
	user := &model.User{
		ID:               "u-7",
		ResetToken:       &token,
		ResetTokenExpiry: &expiry,
	}
	f.userRepo.On("FindByResetToken", ctx, token).Return(user, nil)

	err := f.svc.ResetPassword(ctx, token, "NewStr0ng!pass")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}
