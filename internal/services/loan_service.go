package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// loanCategoryNames are existing category names reused when a loan is
// created without an explicit category.
var loanCategoryNames = []string{"Préstamos", "Loans", "Deudas", "Debts"}

const (
	loanCategoryColor = "#607D8B"
	loanCategoryIcon  = "bank"
)

// loanService handles loan-related business logic.
type loanService struct {
	db *gorm.DB
}

// NewLoanService creates a new LoanServicer.
func NewLoanService(db *gorm.DB) LoanServicer {
	return &loanService{db: db}
}

// disbursementDescription labels the transaction that records the
// initial money movement of a loan.
func disbursementDescription(name string) string {
	return fmt.Sprintf("Préstamo: %s", name)
}

// CreateLoan creates a loan, resolves its backing category, and records
// the disbursement transaction, all atomically. A category backs at
// most one active loan.
func (s *loanService) CreateLoan(userID string, input LoanInput) (*models.Loan, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "loan name is required")
	}

	loan := &models.Loan{
		UserID:         userID,
		Name:           input.Name,
		InitialAmount:  input.InitialAmount.Decimal(),
		Type:           input.Type,
		Status:         models.LoanStatusActive,
		StartDate:      input.StartDate,
		InterestRate:   input.InterestRate,
		CategoryName:   input.CategoryName,
		CreditorDebtor: input.CreditorDebtor,
		Notes:          input.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		category, err := s.resolveCategory(tx, userID, input)
		if err != nil {
			return err
		}

		inUse, err := s.categoryBacksActiveLoan(tx, userID, category.ID, "")
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.ErrLoanCategoryInUse
		}

		loan.CategoryID = category.ID
		if err := tx.Create(loan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		disbursement := &models.Transaction{
			UserID:      userID,
			CategoryID:  category.ID,
			Type:        loan.DisbursementType(),
			Amount:      loan.InitialAmount,
			Description: disbursementDescription(loan.Name),
			Date:        loan.StartDate,
			Source:      models.TransactionSourceManual,
			IsLoan:      true,
			LoanID:      &loan.ID,
		}
		if err := tx.Create(disbursement).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// resolveCategory picks the loan's backing category: an explicit ID
// wins, then a category matching a requested or well-known loan name,
// and finally a fresh expense category named after the loan.
func (s *loanService) resolveCategory(tx *gorm.DB, userID string, input LoanInput) (*models.Category, error) {
	if input.CategoryID != nil && *input.CategoryID != "" {
		var category models.Category
		if err := tx.Where("id = ? AND user_id = ?", *input.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &category, nil
	}

	names := loanCategoryNames
	if input.CategoryName != nil && *input.CategoryName != "" {
		names = []string{*input.CategoryName}
	}
	var category models.Category
	err := tx.Where("user_id = ? AND name IN ?", userID, names).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name := input.Name
	if input.CategoryName != nil && *input.CategoryName != "" {
		name = *input.CategoryName
	}
	category = models.Category{
		UserID: userID,
		Name:   name,
		Type:   models.CategoryTypeExpense,
		Color:  loanCategoryColor,
		Icon:   loanCategoryIcon,
	}
	if err := tx.Create(&category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// categoryBacksActiveLoan reports whether an active loan other than
// excludeLoanID already uses the category.
func (s *loanService) categoryBacksActiveLoan(tx *gorm.DB, userID, categoryID, excludeLoanID string) (bool, error) {
	q := tx.Model(&models.Loan{}).
		Where("user_id = ? AND category_id = ? AND status = ?", userID, categoryID, models.LoanStatusActive)
	if excludeLoanID != "" {
		q = q.Where("id <> ?", excludeLoanID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetUserLoans retrieves a paginated list of loans with derived figures.
func (s *loanService) GetUserLoans(userID string, page pagination.PageRequest) (*pagination.PageResponse[LoanDetails], error) {
	page.Defaults()

	base := s.db.Model(&models.Loan{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var loans []models.Loan
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("start_date DESC").
		Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	details := make([]LoanDetails, 0, len(loans))
	for i := range loans {
		d, err := s.calculateDetails(&loans[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}

	result := pagination.NewPageResponse(details, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetLoanByID retrieves a loan with derived figures.
func (s *loanService) GetLoanByID(userID, loanID string) (*LoanDetails, error) {
	loan, err := s.findLoan(userID, loanID)
	if err != nil {
		return nil, err
	}
	return s.calculateDetails(loan)
}

func (s *loanService) findLoan(userID, loanID string) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", loanID, userID).
		First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &loan, nil
}

// calculateDetails reconciles a loan against its category's ledger.
// Paid is the sum of payment-direction transactions in the category;
// anything paid beyond the principal counts as interest, and pending
// never goes below zero.
func (s *loanService) calculateDetails(loan *models.Loan) (*LoanDetails, error) {
	// A loan without a backing category has no ledger to reconcile.
	if loan.CategoryID == "" {
		return &LoanDetails{
			Loan:           *loan,
			PaidAmount:     decimal.Zero,
			PendingAmount:  decimal.Zero,
			InterestAmount: decimal.Zero,
		}, nil
	}

	var payments []models.Transaction
	if err := s.db.
		Where("user_id = ? AND category_id = ? AND type = ?", loan.UserID, loan.CategoryID, loan.PaymentType()).
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	paid := decimal.Zero
	for i := range payments {
		paid = paid.Add(payments[i].Amount)
	}

	pending := loan.InitialAmount.Sub(paid)
	interest := decimal.Zero
	if pending.IsNegative() {
		interest = pending.Neg()
		pending = decimal.Zero
	}

	return &LoanDetails{
		Loan:           *loan,
		PaidAmount:     paid,
		PendingAmount:  pending,
		InterestAmount: interest,
	}, nil
}

// UpdateLoan updates a loan and keeps its disbursement transaction in
// sync when the amount, dates, name, type, or category change.
func (s *loanService) UpdateLoan(userID, loanID string, update LoanUpdate) (*models.Loan, error) {
	loan, err := s.findLoan(userID, loanID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})

		if update.CategoryID != nil && *update.CategoryID != loan.CategoryID {
			var category models.Category
			if err := tx.Where("id = ? AND user_id = ?", *update.CategoryID, userID).First(&category).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrCategoryNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			inUse, err := s.categoryBacksActiveLoan(tx, userID, category.ID, loanID)
			if err != nil {
				return err
			}
			if inUse {
				return apperrors.ErrLoanCategoryInUse
			}
			updates["category_id"] = category.ID
			loan.CategoryID = category.ID
		}
		if update.Name != nil {
			updates["name"] = *update.Name
			loan.Name = *update.Name
		}
		if update.InitialAmount != nil {
			updates["initial_amount"] = update.InitialAmount.Decimal()
			loan.InitialAmount = update.InitialAmount.Decimal()
		}
		if update.Type != nil {
			updates["type"] = *update.Type
			loan.Type = *update.Type
		}
		if update.StartDate != nil {
			updates["start_date"] = *update.StartDate
			loan.StartDate = *update.StartDate
		}
		if update.InterestRate != nil {
			updates["interest_rate"] = *update.InterestRate
		}
		if update.CategoryName != nil {
			updates["category_name"] = *update.CategoryName
		}
		if update.CreditorDebtor != nil {
			updates["creditor_debtor"] = *update.CreditorDebtor
		}
		if update.Notes != nil {
			updates["notes"] = *update.Notes
		}

		if len(updates) > 0 {
			if err := tx.Model(loan).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return s.syncDisbursement(tx, loan)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// syncDisbursement rewrites the loan's disbursement transaction to
// mirror the loan's current principal, date, name, direction, and
// category.
func (s *loanService) syncDisbursement(tx *gorm.DB, loan *models.Loan) error {
	err := tx.Model(&models.Transaction{}).
		Where("loan_id = ? AND is_loan = ?", loan.ID, true).
		Updates(map[string]interface{}{
			"category_id": loan.CategoryID,
			"type":        loan.DisbursementType(),
			"amount":      loan.InitialAmount,
			"description": disbursementDescription(loan.Name),
			"date":        loan.StartDate,
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteLoan deletes a loan together with its linked transactions.
func (s *loanService) DeleteLoan(userID, loanID string) error {
	loan, err := s.findLoan(userID, loanID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", loan.ID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(loan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// FinalizeLoan marks a loan as paid. Finalizing an already paid loan is
// a no-op, and the category becomes free to back a new loan.
func (s *loanService) FinalizeLoan(userID, loanID string) (*models.Loan, error) {
	loan, err := s.findLoan(userID, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status == models.LoanStatusPaid {
		return loan, nil
	}

	if err := s.db.Model(loan).Update("status", models.LoanStatusPaid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	loan.Status = models.LoanStatusPaid
	return loan, nil
}
