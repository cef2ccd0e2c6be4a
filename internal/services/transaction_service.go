package services

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/money"
	"centavo/internal/pagination"
	"centavo/internal/period"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a new transaction. The transaction type must
// match the type of the owning category.
func (s *transactionService) CreateTransaction(
	userID, categoryID string,
	amount money.Amount,
	transactionType models.TransactionType,
	description string,
	date time.Time,
	source models.TransactionSource,
) (*models.Transaction, error) {
	if categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category ID is required")
	}

	category, err := s.findCategory(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if string(category.Type) != string(transactionType) {
		return nil, apperrors.ErrCategoryTypeMismatch
	}

	if date.IsZero() {
		date = time.Now()
	}
	if source == "" {
		source = models.TransactionSourceManual
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      amount.Decimal(),
		Description: description,
		Date:        date,
		Source:      source,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

func (s *transactionService) findCategory(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// GetUserTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Source != nil {
		q = q.Where("source = ?", *f.Source)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", f.MinAmount.Decimal())
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", f.MaxAmount.Decimal())
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction updates a transaction. Loan-linked transactions are
// managed through their loan and cannot be edited here. Re-categorizing
// requires the new category's type to match the transaction's type.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if transaction.IsLoan {
		return nil, apperrors.ErrLoanTransactionGuard
	}

	updates := make(map[string]interface{})

	if update.CategoryID != nil && *update.CategoryID != transaction.CategoryID {
		newCategory, err := s.findCategory(userID, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		if string(newCategory.Type) != string(transaction.Type) {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
		updates["category_id"] = *update.CategoryID
	}
	if update.Amount != nil {
		updates["amount"] = update.Amount.Decimal()
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Date != nil {
		updates["date"] = *update.Date
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction deletes a transaction. Loan-linked transactions are
// deleted only through their loan.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if transaction.IsLoan {
		return apperrors.ErrLoanTransactionGuard
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetStats aggregates income and expense figures for a date range.
func (s *transactionService) GetStats(userID string, startDate, endDate time.Time) (*TransactionStats, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, startDate, endDate).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	incomeCount := 0
	expenseCount := 0

	for i := range transactions {
		switch transactions[i].Type {
		case models.TransactionTypeIncome:
			totalIncome = totalIncome.Add(transactions[i].Amount)
			incomeCount++
		case models.TransactionTypeExpense:
			totalExpense = totalExpense.Add(transactions[i].Amount)
			expenseCount++
		}
	}

	averageIncome := decimal.Zero
	if incomeCount > 0 {
		averageIncome = totalIncome.Div(decimal.NewFromInt(int64(incomeCount))).Round(2)
	}
	averageExpense := decimal.Zero
	if expenseCount > 0 {
		averageExpense = totalExpense.Div(decimal.NewFromInt(int64(expenseCount))).Round(2)
	}

	return &TransactionStats{
		TotalIncome:      totalIncome,
		TotalExpense:     totalExpense,
		Balance:          totalIncome.Sub(totalExpense),
		TransactionCount: len(transactions),
		AverageIncome:    averageIncome,
		AverageExpense:   averageExpense,
		PeriodStart:      startDate,
		PeriodEnd:        endDate,
	}, nil
}

// GetTotalBalance sums all-time income and expense for a user.
func (s *transactionService) GetTotalBalance(userID string) (*TotalBalance, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	for i := range transactions {
		switch transactions[i].Type {
		case models.TransactionTypeIncome:
			totalIncome = totalIncome.Add(transactions[i].Amount)
		case models.TransactionTypeExpense:
			totalExpense = totalExpense.Add(transactions[i].Amount)
		}
	}

	return &TotalBalance{
		Balance:      totalIncome.Sub(totalExpense),
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
	}, nil
}

// GetMonthlyComparison contrasts the calendar month containing now with
// the month before it, with percentage changes for income, expense, and
// balance.
func (s *transactionService) GetMonthlyComparison(userID string, now time.Time) (*MonthlyComparison, error) {
	current := period.Resolve(models.BudgetPeriodMonthly, nil, nil, now)
	previous := period.Resolve(models.BudgetPeriodMonthly, nil, nil, current.Start.AddDate(0, 0, -1))

	currentStats, err := s.GetStats(userID, current.Start, current.End)
	if err != nil {
		return nil, err
	}
	previousStats, err := s.GetStats(userID, previous.Start, previous.End)
	if err != nil {
		return nil, err
	}

	return &MonthlyComparison{
		CurrentMonth:  *currentStats,
		PreviousMonth: *previousStats,
		Changes: ComparisonChanges{
			IncomePercentage:  changePercentage(currentStats.TotalIncome, previousStats.TotalIncome),
			ExpensePercentage: changePercentage(currentStats.TotalExpense, previousStats.TotalExpense),
			BalancePercentage: changePercentage(currentStats.Balance, previousStats.Balance),
		},
	}, nil
}

// changePercentage follows the zero-baseline convention: a month with no
// baseline reads as a 100% change when the current value is positive
// and 0% otherwise.
func changePercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	change, _ := current.Sub(previous).
		Div(previous).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return change
}

// GetCategoryBreakdown returns per-category expense totals for a date
// range, largest first.
func (s *transactionService) GetCategoryBreakdown(userID string, startDate, endDate time.Time) ([]CategorySpend, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Category").
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?", userID, models.TransactionTypeExpense, startDate, endDate).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byCategory := make(map[string]*CategorySpend)
	for i := range transactions {
		t := &transactions[i]
		entry, ok := byCategory[t.CategoryID]
		if !ok {
			entry = &CategorySpend{
				CategoryID: t.CategoryID,
				Name:       t.Category.Name,
				Color:      t.Category.Color,
				Icon:       t.Category.Icon,
				Total:      decimal.Zero,
			}
			byCategory[t.CategoryID] = entry
		}
		entry.Total = entry.Total.Add(t.Amount)
		entry.Count++
	}

	breakdown := make([]CategorySpend, 0, len(byCategory))
	for _, entry := range byCategory {
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Total.GreaterThan(breakdown[j].Total)
	})
	return breakdown, nil
}
