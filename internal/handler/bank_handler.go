package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"bankelig/internal/errors"
	"bankelig/internal/middleware"
	"bankelig/internal/service"
)

// BankHandler handles bank eligibility record endpoints.
type BankHandler struct {
	bankService service.BankService
}

// NewBankHandler creates a new bank handler.
func NewBankHandler(bankService service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// CreateBankRequest represents a bank creation request.
type CreateBankRequest struct {
	BankName        string         `json:"bank_name" validate:"required,max=255"`
	Classification  string         `json:"classification" validate:"required,max=64"`
	LogoURL         *string        `json:"logo_url,omitempty" validate:"omitempty,url"`
	EligibilityData datatypes.JSON `json:"eligibility_data" validate:"required"`
	MaximumPLAmount *float64       `json:"maximum_pl_amount,omitempty" validate:"omitempty,gte=0"`
	MaximumBLAmount *float64       `json:"maximum_bl_amount,omitempty" validate:"omitempty,gte=0"`
	ProcessingFees  datatypes.JSON `json:"processing_fees,omitempty"`
}

// UpdateBankRequest represents a partial bank update; absent fields are left
// unchanged.
type UpdateBankRequest struct {
	BankName        *string        `json:"bank_name,omitempty" validate:"omitempty,max=255"`
	Classification  *string        `json:"classification,omitempty" validate:"omitempty,max=64"`
	LogoURL         *string        `json:"logo_url,omitempty" validate:"omitempty,url"`
	EligibilityData datatypes.JSON `json:"eligibility_data,omitempty"`
	MaximumPLAmount *float64       `json:"maximum_pl_amount,omitempty" validate:"omitempty,gte=0"`
	MaximumBLAmount *float64       `json:"maximum_bl_amount,omitempty" validate:"omitempty,gte=0"`
	ProcessingFees  datatypes.JSON `json:"processing_fees,omitempty"`
}

// List godoc
// @Summary List bank eligibility records
// @Tags banks
// @Produce json
// @Param includeDeleted query bool false "Include soft-deleted banks (admin only)"
// @Success 200 {array} model.Bank
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/banks [get]
func (h *BankHandler) List(c echo.Context) error {
	includeDeleted := c.QueryParam("includeDeleted") == "true"
	if includeDeleted {
		user := middleware.UserFromContext(c)
		if user == nil || !user.IsAdmin() {
			includeDeleted = false
		}
	}

	banks, err := h.bankService.List(c.Request().Context(), includeDeleted)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, banks)
}

// Get godoc
// @Summary Get one bank eligibility record
// @Tags banks
// @Produce json
// @Param id path string true "Bank ID"
// @Success 200 {object} model.Bank
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/banks/{id} [get]
func (h *BankHandler) Get(c echo.Context) error {
	bank, err := h.bankService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, bank)
}

// Create godoc
// @Summary Create a bank eligibility record
// @Tags banks
// @Accept json
// @Produce json
// @Param request body CreateBankRequest true "Bank data"
// @Success 201 {object} model.Bank
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/banks [post]
func (h *BankHandler) Create(c echo.Context) error {
	var req CreateBankRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bank, err := h.bankService.Create(c.Request().Context(), service.BankInput{
		BankName:        &req.BankName,
		Classification:  &req.Classification,
		LogoURL:         req.LogoURL,
		EligibilityData: req.EligibilityData,
		MaximumPLAmount: req.MaximumPLAmount,
		MaximumBLAmount: req.MaximumBLAmount,
		ProcessingFees:  req.ProcessingFees,
	}, currentUserID(c))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, bank)
}

// Update godoc
// @Summary Update a bank eligibility record
// @Tags banks
// @Accept json
// @Produce json
// @Param id path string true "Bank ID"
// @Param request body UpdateBankRequest true "Changed fields"
// @Success 200 {object} model.Bank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/banks/{id} [put]
func (h *BankHandler) Update(c echo.Context) error {
	var req UpdateBankRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bank, err := h.bankService.Update(c.Request().Context(), c.Param("id"), service.BankInput{
		BankName:        req.BankName,
		Classification:  req.Classification,
		LogoURL:         req.LogoURL,
		EligibilityData: req.EligibilityData,
		MaximumPLAmount: req.MaximumPLAmount,
		MaximumBLAmount: req.MaximumBLAmount,
		ProcessingFees:  req.ProcessingFees,
	}, currentUserID(c))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, bank)
}

// Delete godoc
// @Summary Soft-delete a bank eligibility record
// @Tags banks
// @Produce json
// @Param id path string true "Bank ID"
// @Success 200 {object} model.Bank
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/banks/{id} [delete]
func (h *BankHandler) Delete(c echo.Context) error {
	bank, err := h.bankService.SoftDelete(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, bank)
}

// Restore godoc
// @Summary Restore a soft-deleted bank eligibility record
// @Tags banks
// @Produce json
// @Param id path string true "Bank ID"
// @Success 200 {object} model.Bank
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/banks/{id}/restore [post]
func (h *BankHandler) Restore(c echo.Context) error {
	bank, err := h.bankService.Restore(c.Request().Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, bank)
}

// History godoc
// @Summary Get the change history of a bank, newest first
// @Tags banks
// @Produce json
// @Param id path string true "Bank ID"
// @Success 200 {array} model.BankHistory
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/banks/{id}/history [get]
func (h *BankHandler) History(c echo.Context) error {
	entries, err := h.bankService.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, entries)
}

func currentUserID(c echo.Context) string {
	if user := middleware.UserFromContext(c); user != nil {
		return user.ID
	}
	return ""
}
