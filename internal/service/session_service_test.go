package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"bankelig/internal/auth"
	"bankelig/internal/model"
)

func newTestSigner(t *testing.T) *auth.TokenSigner {
	t.Helper()
	signer, err := auth.NewTokenSigner("test-secret")
	assert.NoError(t, err)
	return signer
}

func newTestSessionManager(sessionRepo *MockSessionRepository, userRepo *MockUserRepository, signer *auth.TokenSigner) *sessionManager {
	return &sessionManager{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		signer:      signer,
		log:         zerolog.Nop(),
		now:         time.Now,
	}
}

func activeUser() *model.User {
	return &model.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Email:    "a@b.com",
		Username: "abuser",
		Role:     model.RoleUser,
		IsActive: true,
	}
}

func TestSessionManager_CreateThenValidate(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	signer := newTestSigner(t)
	m := newTestSessionManager(sessionRepo, userRepo, signer)

	user := activeUser()
	ctx := context.Background()

	var persisted *model.Session
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	sessionRepo.On("Create", ctx, mock.AnythingOfType("*model.Session")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*model.Session)
		}).
		Return(nil)

	token, err := m.Create(ctx, user.ID, "device-fp")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, persisted.Token)
	assert.WithinDuration(t, time.Now().Add(auth.SessionTokenExpiry), persisted.ExpiresAt, time.Minute)

	sessionRepo.On("FindByToken", ctx, token).Return(persisted, nil)

	got, outcome := m.Validate(ctx, token, "device-fp")
	assert.Equal(t, ValidateOK, outcome)
	assert.Equal(t, user.Email, got.Email)
}

func TestSessionManager_CreateRejectsInactiveUser(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	m := newTestSessionManager(sessionRepo, userRepo, newTestSigner(t))

	user := activeUser()
	user.IsActive = false
	ctx := context.Background()
	userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

	token, err := m.Create(ctx, user.ID, "")
	assert.Error(t, err)
	assert.Empty(t, token)
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionManager_FingerprintMismatchInvalidatesSession(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	signer := newTestSigner(t)
	m := newTestSessionManager(sessionRepo, userRepo, signer)

	user := activeUser()
	ctx := context.Background()

	token, err := signer.Generate(user, "fp-original")
	assert.NoError(t, err)

	sessionRepo.On("DeleteByToken", ctx, token).Return(nil)

	got, outcome := m.Validate(ctx, token, "fp-stolen")
	assert.Nil(t, got)
	assert.Equal(t, ValidateFingerprintMismatch, outcome)
	sessionRepo.AssertCalled(t, "DeleteByToken", ctx, token)

	// The row is gone, so even the legitimate fingerprint no longer works.
	sessionRepo.On("FindByToken", ctx, token).Return(nil, gorm.ErrRecordNotFound)
	got, outcome = m.Validate(ctx, token, "fp-original")
	assert.Nil(t, got)
	assert.Equal(t, ValidateNotFound, outcome)
}

func TestSessionManager_ExpiredRowIsRemoved(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	signer := newTestSigner(t)
	m := newTestSessionManager(sessionRepo, userRepo, signer)

	user := activeUser()
	ctx := context.Background()

	token, err := signer.Generate(user, "")
	assert.NoError(t, err)

	session := &model.Session{
		ID:        "sess-1",
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	sessionRepo.On("FindByToken", ctx, token).Return(session, nil)
	sessionRepo.On("DeleteByID", ctx, session.ID).Return(nil)

	got, outcome := m.Validate(ctx, token, "")
	assert.Nil(t, got)
	assert.Equal(t, ValidateExpired, outcome)
	sessionRepo.AssertCalled(t, "DeleteByID", ctx, session.ID)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSessionManager_InactiveOwnerIsRemoved(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	signer := newTestSigner(t)
	m := newTestSessionManager(sessionRepo, userRepo, signer)

	user := activeUser()
	ctx := context.Background()

	token, err := signer.Generate(user, "")
	assert.NoError(t, err)

	session := &model.Session{
		ID:        "sess-2",
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	deactivated := *user
	deactivated.IsActive = false

	sessionRepo.On("FindByToken", ctx, token).Return(session, nil)
	userRepo.On("FindByID", ctx, user.ID).Return(&deactivated, nil)
	sessionRepo.On("DeleteByID", ctx, session.ID).Return(nil)

	got, outcome := m.Validate(ctx, token, "")
	assert.Nil(t, got)
	assert.Equal(t, ValidateUserInactive, outcome)
	sessionRepo.AssertCalled(t, "DeleteByID", ctx, session.ID)
}

func TestSessionManager_DeleteThenValidate(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	signer := newTestSigner(t)
	m := newTestSessionManager(sessionRepo, userRepo, signer)

	user := activeUser()
	ctx := context.Background()

	token, err := signer.Generate(user, "")
	assert.NoError(t, err)

	sessionRepo.On("DeleteByToken", ctx, token).Return(nil)
	assert.True(t, m.Delete(ctx, token))

	sessionRepo.On("FindByToken", ctx, token).Return(nil, gorm.ErrRecordNotFound)
	got, outcome := m.Validate(ctx, token, "")
	assert.Nil(t, got)
	assert.Equal(t, ValidateNotFound, outcome)
}

func TestSessionManager_TamperedTokenFailsWithoutStoreLookup(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	m := newTestSessionManager(sessionRepo, userRepo, newTestSigner(t))

	otherSigner, err := auth.NewTokenSigner("a-different-secret")
	assert.NoError(t, err)
	token, err := otherSigner.Generate(activeUser(), "")
	assert.NoError(t, err)

	got, outcome := m.Validate(context.Background(), token, "")
	assert.Nil(t, got)
	assert.Equal(t, ValidateInvalidToken, outcome)
	sessionRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
}

func TestSessionManager_StoreFailureDegradesToStoreError(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	userRepo := new(MockUserRepository)
	signer := newTestSigner(t)
	m := newTestSessionManager(sessionRepo, userRepo, signer)

	token, err := signer.Generate(activeUser(), "")
	assert.NoError(t, err)

	ctx := context.Background()
	sessionRepo.On("FindByToken", ctx, token).Return(nil, assert.AnError)

	got, outcome := m.Validate(ctx, token, "")
	assert.Nil(t, got)
	assert.Equal(t, ValidateStoreError, outcome)
}
