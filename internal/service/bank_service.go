package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bankelig/internal/cache"
	apperrors "bankelig/internal/errors"
	"bankelig/internal/model"
	"bankelig/internal/repository"
)

const (
	bankListCacheKey = "banks:list:active"
	bankCacheTTL     = time.Minute
)

// BankInput carries the writable fields of a bank record. Pointer fields
// left nil on update mean "unchanged".
type BankInput struct {
	BankName        *string
	Classification  *string
	LogoURL         *string
	EligibilityData datatypes.JSON
	MaximumPLAmount *float64
	MaximumBLAmount *float64
	ProcessingFees  datatypes.JSON
}

// BankService handles bank eligibility records and their change history.
type BankService interface {
	List(ctx context.Context, includeDeleted bool) ([]model.Bank, error)
	Get(ctx context.Context, id string) (*model.Bank, error)
	Create(ctx context.Context, input BankInput, userID string) (*model.Bank, error)
	Update(ctx context.Context, id string, input BankInput, userID string) (*model.Bank, error)
	SoftDelete(ctx context.Context, id, userID string) (*model.Bank, error)
	Restore(ctx context.Context, id, userID string) (*model.Bank, error)
	History(ctx context.Context, bankID string) ([]model.BankHistory, error)
}

type bankService struct {
	bankRepo    repository.BankRepository
	historyRepo repository.BankHistoryRepository
	cache       *cache.Client
	log         zerolog.Logger
}

// NewBankService creates a bank service.
func NewBankService(
	bankRepo repository.BankRepository,
	historyRepo repository.BankHistoryRepository,
	cacheClient *cache.Client,
	log zerolog.Logger,
) BankService {
	return &bankService{
		bankRepo:    bankRepo,
		historyRepo: historyRepo,
		cache:       cacheClient,
		log:         log.With().Str("component", "banks").Logger(),
	}
}

// List returns banks ordered by name. The active-only listing is served
// from cache when possible.
func (s *bankService) List(ctx context.Context, includeDeleted bool) ([]model.Bank, error) {
	if !includeDeleted {
		if data, _ := s.cache.Get(ctx, bankListCacheKey); data != nil {
			var cached []model.Bank
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	banks, err := s.bankRepo.List(ctx, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}

	if !includeDeleted {
		if payload, err := json.Marshal(banks); err == nil {
			_ = s.cache.Set(ctx, bankListCacheKey, payload, bankCacheTTL)
		}
	}
	return banks, nil
}

// Get returns a single bank by id.
func (s *bankService) Get(ctx context.Context, id string) (*model.Bank, error) {
	bank, err := s.bankRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankNotFound
		}
		return nil, fmt.Errorf("find bank: %w", err)
	}
	return bank, nil
}

// Create inserts a new bank and its CREATE history entry.
func (s *bankService) Create(ctx context.Context, input BankInput, userID string) (*model.Bank, error) {
	bank := &model.Bank{
		BankName:        deref(input.BankName),
		Classification:  deref(input.Classification),
		LogoURL:         input.LogoURL,
		EligibilityData: input.EligibilityData,
		MaximumPLAmount: input.MaximumPLAmount,
		MaximumBLAmount: input.MaximumBLAmount,
		ProcessingFees:  input.ProcessingFees,
		CreatedBy:       nilIfEmpty(userID),
	}

	if err := s.bankRepo.Create(ctx, bank); err != nil {
		return nil, fmt.Errorf("create bank: %w", err)
	}

	s.recordHistory(ctx, bank, model.ChangeCreate, []string{"ALL"}, userID)
	s.invalidate(ctx)

	s.log.Info().Str("bank_id", bank.ID).Str("bank_name", bank.BankName).Msg("bank created")
	return bank, nil
}

// Update applies the changed fields and writes an UPDATE history entry
// naming exactly those fields. A no-op update writes no history.
func (s *bankService) Update(ctx context.Context, id string, input BankInput, userID string) (*model.Bank, error) {
	bank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := applyChanges(bank, input)
	if len(changed) == 0 {
		return bank, nil
	}

	bank.UpdatedBy = nilIfEmpty(userID)
	if err := s.bankRepo.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("update bank: %w", err)
	}

	s.recordHistory(ctx, bank, model.ChangeUpdate, changed, userID)
	s.invalidate(ctx)
	return bank, nil
}

// SoftDelete marks the bank deleted and writes a DELETE history entry.
func (s *bankService) SoftDelete(ctx context.Context, id, userID string) (*model.Bank, error) {
	bank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	bank.IsDeleted = true
	bank.DeletedAt = &now
	bank.DeletedBy = nilIfEmpty(userID)
	if err := s.bankRepo.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("soft delete bank: %w", err)
	}

	s.recordHistory(ctx, bank, model.ChangeDelete, []string{"isDeleted"}, userID)
	s.invalidate(ctx)
	return bank, nil
}

// Restore undoes a soft delete. Restoring a live bank is a no-op.
func (s *bankService) Restore(ctx context.Context, id, userID string) (*model.Bank, error) {
	bank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bank.IsDeleted {
		return bank, nil
	}

	bank.IsDeleted = false
	bank.DeletedAt = nil
	bank.DeletedBy = nil
	if err := s.bankRepo.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("restore bank: %w", err)
	}

	s.recordHistory(ctx, bank, model.ChangeRestore, []string{"isDeleted"}, userID)
	s.invalidate(ctx)
	return bank, nil
}

// History returns the change history of a bank, newest first.
func (s *bankService) History(ctx context.Context, bankID string) ([]model.BankHistory, error) {
	if _, err := s.Get(ctx, bankID); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByBankID(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("bank history: %w", err)
	}
	return entries, nil
}

// recordHistory snapshots the bank into a history row. History write
// failures are logged but do not fail the change that produced them.
func (s *bankService) recordHistory(ctx context.Context, bank *model.Bank, changeType model.ChangeType, changedFields []string, userID string) {
	entry := &model.BankHistory{
		BankID:          bank.ID,
		BankName:        bank.BankName,
		EligibilityData: bank.EligibilityData,
		MaximumPLAmount: bank.MaximumPLAmount,
		MaximumBLAmount: bank.MaximumBLAmount,
		ProcessingFees:  bank.ProcessingFees,
		ChangeType:      changeType,
		ChangedFields:   changedFields,
		CreatedBy:       nilIfEmpty(userID),
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("bank_id", bank.ID).Str("change", string(changeType)).Msg("history write failed")
	}
}

func (s *bankService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, bankListCacheKey)
}

// applyChanges copies the changed fields from input onto the bank and
// returns their names. Values are compared by their JSON encoding, so JSON
// columns compare structurally.
func applyChanges(bank *model.Bank, input BankInput) []string {
	var changed []string

	if input.BankName != nil && *input.BankName != bank.BankName {
		bank.BankName = *input.BankName
		changed = append(changed, "bankName")
	}
	if input.Classification != nil && *input.Classification != bank.Classification {
		bank.Classification = *input.Classification
		changed = append(changed, "classification")
	}
	if input.LogoURL != nil && !equalStringPtr(input.LogoURL, bank.LogoURL) {
		bank.LogoURL = input.LogoURL
		changed = append(changed, "logoUrl")
	}
	if input.EligibilityData != nil && !jsonEqual(input.EligibilityData, bank.EligibilityData) {
		bank.EligibilityData = input.EligibilityData
		changed = append(changed, "eligibilityData")
	}
	if input.MaximumPLAmount != nil && !equalFloatPtr(input.MaximumPLAmount, bank.MaximumPLAmount) {
		bank.MaximumPLAmount = input.MaximumPLAmount
		changed = append(changed, "maximumPlAmount")
	}
	if input.MaximumBLAmount != nil && !equalFloatPtr(input.MaximumBLAmount, bank.MaximumBLAmount) {
		bank.MaximumBLAmount = input.MaximumBLAmount
		changed = append(changed, "maximumBlAmount")
	}
	if input.ProcessingFees != nil && !jsonEqual(input.ProcessingFees, bank.ProcessingFees) {
		bank.ProcessingFees = input.ProcessingFees
		changed = append(changed, "processingFees")
	}

	return changed
}

func jsonEqual(a, b datatypes.JSON) bool {
	var av, bv any
	if err := json.Unmarshal(a, &av); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	an, _ := json.Marshal(av)
	bn, _ := json.Marshal(bv)
	return bytes.Equal(an, bn)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
