package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"centavo/internal/clock"
	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/money"
	"centavo/internal/pagination"
	"centavo/internal/period"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, clk clock.Clock) BudgetServicer {
	return &budgetService{db: db, clock: clk}
}

// CreateBudget creates a budget over a set of expense categories. No two
// active budgets of the same period may share a category.
func (s *budgetService) CreateBudget(
	userID, name, color string,
	categoryIDs []string,
	amount money.Amount,
	budgetPeriod models.BudgetPeriod,
	startDate, endDate *time.Time,
) (*models.Budget, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if len(categoryIDs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one category is required")
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, apperrors.ErrInvalidPeriodRange
	}

	budget := &models.Budget{
		UserID:    userID,
		Name:      name,
		Color:     color,
		Amount:    amount.Decimal(),
		Period:    budgetPeriod,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories, err := s.loadExpenseCategories(tx, userID, categoryIDs)
		if err != nil {
			return err
		}

		conflict, err := s.hasActiveConflict(tx, userID, budgetPeriod, categoryIDs, "")
		if err != nil {
			return err
		}
		if conflict {
			return apperrors.ErrBudgetConflict
		}

		budget.Categories = categories
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// loadExpenseCategories resolves the category set, checking ownership and
// that every member is an expense category.
func (s *budgetService) loadExpenseCategories(tx *gorm.DB, userID string, categoryIDs []string) ([]models.Category, error) {
	var categories []models.Category
	if err := tx.Where("user_id = ? AND id IN ?", userID, categoryIDs).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(categories) != len(categoryIDs) {
		return nil, apperrors.ErrCategoryNotFound
	}
	for i := range categories {
		if categories[i].Type != models.CategoryTypeExpense {
			return nil, apperrors.ErrBudgetCategoryType
		}
	}
	return categories, nil
}

// hasActiveConflict reports whether another active budget of the same
// period already covers any of the given categories.
func (s *budgetService) hasActiveConflict(tx *gorm.DB, userID string, budgetPeriod models.BudgetPeriod, categoryIDs []string, excludeBudgetID string) (bool, error) {
	q := tx.Model(&models.Budget{}).
		Joins("JOIN budget_categories bc ON bc.budget_id = budgets.id").
		Where("budgets.user_id = ? AND budgets.period = ? AND budgets.is_active = ?", userID, budgetPeriod, true).
		Where("bc.category_id IN ?", categoryIDs)
	if excludeBudgetID != "" {
		q = q.Where("budgets.id <> ?", excludeBudgetID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetUserBudgets retrieves a paginated list of budgets, optionally
// filtered by active state and period.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool, budgetPeriod *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if budgetPeriod != nil {
		base = base.Where("period = ?", *budgetPeriod)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Categories").Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID retrieves a budget by ID for a specific user
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Categories").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates a budget. Changing the period, category set, or
// reactivating the budget re-runs the conflict check against the
// resulting state.
func (s *budgetService) UpdateBudget(userID, budgetID string, update BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	resultingPeriod := budget.Period
	if update.Period != nil {
		resultingPeriod = *update.Period
	}
	resultingActive := budget.IsActive
	if update.IsActive != nil {
		resultingActive = *update.IsActive
	}
	resultingCategoryIDs := budget.CategoryIDs()
	if update.CategoryIDs != nil {
		resultingCategoryIDs = update.CategoryIDs
	}

	resultingStart := budget.StartDate
	if update.StartDate != nil {
		resultingStart = update.StartDate
	}
	resultingEnd := budget.EndDate
	if update.EndDate != nil {
		resultingEnd = update.EndDate
	}
	if resultingStart != nil && resultingEnd != nil && resultingEnd.Before(*resultingStart) {
		return nil, apperrors.ErrInvalidPeriodRange
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var categories []models.Category
		if update.CategoryIDs != nil {
			if len(update.CategoryIDs) == 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one category is required")
			}
			categories, err = s.loadExpenseCategories(tx, userID, update.CategoryIDs)
			if err != nil {
				return err
			}
		}

		if resultingActive {
			conflict, err := s.hasActiveConflict(tx, userID, resultingPeriod, resultingCategoryIDs, budgetID)
			if err != nil {
				return err
			}
			if conflict {
				return apperrors.ErrBudgetConflict
			}
		}

		updates := make(map[string]interface{})
		if update.Name != "" {
			updates["name"] = update.Name
		}
		if update.Color != "" {
			updates["color"] = update.Color
		}
		if update.Amount != nil {
			updates["amount"] = update.Amount.Decimal()
		}
		if update.Period != nil {
			updates["period"] = *update.Period
		}
		if update.StartDate != nil {
			updates["start_date"] = *update.StartDate
		}
		if update.EndDate != nil {
			updates["end_date"] = *update.EndDate
		}
		if update.IsActive != nil {
			updates["is_active"] = *update.IsActive
		}

		if len(updates) > 0 {
			if err := tx.Model(budget).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if update.CategoryIDs != nil {
			if err := tx.Model(budget).Association("Categories").Replace(categories); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget deletes a budget. Transactions in its categories are
// untouched.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(budget).Association("Categories").Clear(); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetBudgetStatus computes the budget's progress for its current period
// window. Figures are derived from transactions on every call, never
// stored, so they are always consistent with the ledger.
func (s *budgetService) GetBudgetStatus(userID, budgetID string) (*BudgetStatus, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	window := period.Resolve(budget.Period, budget.StartDate, budget.EndDate, s.clock.Now())

	spent, err := s.sumExpenses(userID, budget.CategoryIDs(), window)
	if err != nil {
		return nil, err
	}

	return CalculateStatus(budget, spent, window), nil
}

// sumExpenses totals the expense transactions in the category set within
// the window.
func (s *budgetService) sumExpenses(userID string, categoryIDs []string, window period.Window) (decimal.Decimal, error) {
	if len(categoryIDs) == 0 {
		return decimal.Zero, nil
	}

	var transactions []models.Transaction
	if err := s.db.
		Where("user_id = ? AND type = ? AND category_id IN ? AND date BETWEEN ? AND ?",
			userID, models.TransactionTypeExpense, categoryIDs, window.Start, window.End).
		Find(&transactions).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for i := range transactions {
		total = total.Add(transactions[i].Amount)
	}
	return total, nil
}

// CalculateStatus derives a budget's progress figures from the amount
// spent in the given window. Exceeded takes precedence over the
// percentage-based alert levels.
func CalculateStatus(budget *models.Budget, spent decimal.Decimal, window period.Window) *BudgetStatus {
	remaining := budget.Amount.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	isExceeded := spent.GreaterThan(budget.Amount)

	percentage := 0.0
	if budget.Amount.IsPositive() {
		percentage = spent.Div(budget.Amount).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}

	level := AlertLevelNormal
	switch {
	case isExceeded:
		level = AlertLevelExceeded
	case percentage >= 90:
		level = AlertLevelDanger
	case percentage >= 80:
		level = AlertLevelWarning
	}

	return &BudgetStatus{
		BudgetID:        budget.ID,
		Name:            budget.Name,
		Color:           budget.Color,
		CategoryIDs:     budget.CategoryIDs(),
		BudgetAmount:    budget.Amount,
		SpentAmount:     spent,
		RemainingAmount: remaining,
		PercentageUsed:  percentage,
		IsExceeded:      isExceeded,
		AlertLevel:      level,
		PeriodStart:     window.Start,
		PeriodEnd:       window.End,
	}
}
