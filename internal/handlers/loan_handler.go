package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/money"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// LoanHandler handles loan-related requests.
type LoanHandler struct {
	loanService services.LoanServicer
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanService services.LoanServicer) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents the request payload for creating a loan.
type CreateLoanRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	InitialAmount  float64         `json:"initial_amount" binding:"required,gt=0"`
	Type           models.LoanType `json:"type" binding:"required,loan_type"`
	StartDate      time.Time       `json:"start_date" binding:"required"`
	InterestRate   *float64        `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
	CategoryID     *string         `json:"category_id" binding:"omitempty,uuid"`
	CategoryName   *string         `json:"category_name" binding:"omitempty,min=1,max=100"`
	CreditorDebtor *string         `json:"creditor_debtor" binding:"omitempty,max=100"`
	Notes          *string         `json:"notes" binding:"omitempty,max=500"`
}

// UpdateLoanRequest represents the request payload for updating a loan.
type UpdateLoanRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=100"`
	InitialAmount  *float64         `json:"initial_amount" binding:"omitempty,gt=0"`
	Type           *models.LoanType `json:"type" binding:"omitempty,loan_type"`
	StartDate      *time.Time       `json:"start_date"`
	InterestRate   *float64         `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
	CategoryID     *string          `json:"category_id" binding:"omitempty,uuid"`
	CategoryName   *string          `json:"category_name" binding:"omitempty,min=1,max=100"`
	CreditorDebtor *string          `json:"creditor_debtor" binding:"omitempty,max=100"`
	Notes          *string          `json:"notes" binding:"omitempty,max=500"`
}

// CreateLoan handles the creation of a new loan.
// @Summary     Create a loan
// @Description Create a loan, resolve its backing category, and record the disbursement transaction
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateLoanRequest true "Loan details"
// @Success     201 {object} models.Loan "Loan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category already backs an active loan"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans [post]
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.FromFloat(req.InitialAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	input := services.LoanInput{
		Name:           req.Name,
		InitialAmount:  amount,
		Type:           req.Type,
		StartDate:      req.StartDate,
		CategoryID:     req.CategoryID,
		CategoryName:   req.CategoryName,
		CreditorDebtor: req.CreditorDebtor,
		Notes:          req.Notes,
	}
	if req.InterestRate != nil {
		rate := decimal.NewFromFloat(*req.InterestRate)
		input.InterestRate = &rate
	}

	loan, err := h.loanService.CreateLoan(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": loan})
}

// GetLoans handles listing loans for the authenticated user.
// @Summary     Get loans
// @Description Get a paginated list of loans with derived paid/pending/interest figures
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.LoanDetails] "Paginated loans"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans [get]
func (h *LoanHandler) GetLoans(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.loanService.GetUserLoans(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLoan handles fetching a single loan.
// @Summary     Get a loan
// @Description Get a single loan with derived paid/pending/interest figures
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Loan ID"
// @Success     200 {object} services.LoanDetails "Loan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.loanService.GetLoanByID(userID, loanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// UpdateLoan handles updating a loan.
// @Summary     Update a loan
// @Description Update a loan's fields, keeping its disbursement transaction in sync
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Loan ID"
// @Param       request body UpdateLoanRequest true "Fields to update"
// @Success     200 {object} models.Loan "Loan updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Failure     409 {object} ErrorResponse "Category already backs an active loan"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans/{id} [put]
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.LoanUpdate{
		Name:           req.Name,
		Type:           req.Type,
		StartDate:      req.StartDate,
		CategoryID:     req.CategoryID,
		CategoryName:   req.CategoryName,
		CreditorDebtor: req.CreditorDebtor,
		Notes:          req.Notes,
	}
	if req.InitialAmount != nil {
		amount, err := money.FromFloat(*req.InitialAmount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		update.InitialAmount = &amount
	}
	if req.InterestRate != nil {
		rate := decimal.NewFromFloat(*req.InterestRate)
		update.InterestRate = &rate
	}

	loan, err := h.loanService.UpdateLoan(userID, loanID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// DeleteLoan handles deleting a loan.
// @Summary     Delete a loan
// @Description Delete a loan together with its linked transactions
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Loan ID"
// @Success     204 "Loan deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.loanService.DeleteLoan(userID, loanID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FinalizeLoan handles marking a loan as paid.
// @Summary     Finalize a loan
// @Description Mark a loan as paid, freeing its category for a new loan. Idempotent.
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Loan ID"
// @Success     200 {object} models.Loan "Loan finalized"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans/{id}/finalize [post]
func (h *LoanHandler) FinalizeLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.loanService.FinalizeLoan(userID, loanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}
