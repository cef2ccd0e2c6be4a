package services

import (
	"time"

	"github.com/shopspring/decimal"

	"centavo/internal/models"
	"centavo/internal/money"
	"centavo/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetOrCreateGoogleUser(googleID, email, firstName, lastName, picture string) (*models.User, bool, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	InitializeDefaultCategories(userID string) error
	CreateCategory(userID, name string, categoryType models.CategoryType, color, icon string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetUserCategoriesByType(userID string, categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	Source     *models.TransactionSource
	CategoryID *string
	MinAmount  *money.Amount
	MaxAmount  *money.Amount
}

// TransactionUpdate holds the optional fields of a transaction update.
// Nil fields are left unchanged.
type TransactionUpdate struct {
	CategoryID  *string
	Amount      *money.Amount
	Description *string
	Date        *time.Time
}

// TransactionStats aggregates income and expense figures over a date range.
type TransactionStats struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
	AverageIncome    decimal.Decimal `json:"average_income"`
	AverageExpense   decimal.Decimal `json:"average_expense"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
}

// TotalBalance holds all-time income, expense, and net balance.
type TotalBalance struct {
	Balance      decimal.Decimal `json:"balance"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// ComparisonChanges holds month-over-month percentage deltas. A change
// from a zero month counts as 100 when the current month has activity
// and 0 otherwise.
type ComparisonChanges struct {
	IncomePercentage  float64 `json:"income_percentage"`
	ExpensePercentage float64 `json:"expense_percentage"`
	BalancePercentage float64 `json:"balance_percentage"`
}

// MonthlyComparison contrasts the current calendar month's totals with
// the previous month's.
type MonthlyComparison struct {
	CurrentMonth  TransactionStats  `json:"current_month"`
	PreviousMonth TransactionStats  `json:"previous_month"`
	Changes       ComparisonChanges `json:"changes"`
}

// CategorySpend is one category's share of spending over a date range.
type CategorySpend struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Icon       string          `json:"icon"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID string, amount money.Amount, transactionType models.TransactionType, description string, date time.Time, source models.TransactionSource) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetStats(userID string, startDate, endDate time.Time) (*TransactionStats, error)
	GetTotalBalance(userID string) (*TotalBalance, error)
	GetCategoryBreakdown(userID string, startDate, endDate time.Time) ([]CategorySpend, error)
	GetMonthlyComparison(userID string, now time.Time) (*MonthlyComparison, error)
}

// AlertLevel buckets budget consumption into severity levels.
type AlertLevel string

const (
	AlertLevelNormal   AlertLevel = "normal"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelDanger   AlertLevel = "danger"
	AlertLevelExceeded AlertLevel = "exceeded"
)

// BudgetStatus contains the derived progress figures for a budget's
// current period window. Nothing in it is ever persisted.
type BudgetStatus struct {
	BudgetID        string          `json:"budget_id"`
	Name            string          `json:"name"`
	Color           string          `json:"color"`
	CategoryIDs     []string        `json:"category_ids"`
	BudgetAmount    decimal.Decimal `json:"budget_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PercentageUsed  float64         `json:"percentage_used"`
	IsExceeded      bool            `json:"is_exceeded"`
	AlertLevel      AlertLevel      `json:"alert_level"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
}

// BudgetUpdate holds the optional fields of a budget update. Nil fields
// are left unchanged; a nil CategoryIDs slice keeps the current set.
type BudgetUpdate struct {
	Name        string
	Color       string
	Amount      *money.Amount
	Period      *models.BudgetPeriod
	CategoryIDs []string
	StartDate   *time.Time
	EndDate     *time.Time
	IsActive    *bool
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, name, color string, categoryIDs []string, amount money.Amount, period models.BudgetPeriod, startDate, endDate *time.Time) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetStatus(userID, budgetID string) (*BudgetStatus, error)
}

// LoanInput holds the fields for creating a loan.
type LoanInput struct {
	Name           string
	InitialAmount  money.Amount
	Type           models.LoanType
	StartDate      time.Time
	InterestRate   *decimal.Decimal
	CategoryID     *string
	CategoryName   *string
	CreditorDebtor *string
	Notes          *string
}

// LoanUpdate holds the optional fields of a loan update. Nil fields are
// left unchanged.
type LoanUpdate struct {
	Name           *string
	InitialAmount  *money.Amount
	Type           *models.LoanType
	StartDate      *time.Time
	InterestRate   *decimal.Decimal
	CategoryID     *string
	CategoryName   *string
	CreditorDebtor *string
	Notes          *string
}

// LoanDetails is a loan together with its derived reconciliation
// figures, recomputed from the category's transactions on every read.
type LoanDetails struct {
	models.Loan
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
}

// LoanServicer defines the contract for loan-related business logic.
type LoanServicer interface {
	CreateLoan(userID string, input LoanInput) (*models.Loan, error)
	GetUserLoans(userID string, page pagination.PageRequest) (*pagination.PageResponse[LoanDetails], error)
	GetLoanByID(userID, loanID string) (*LoanDetails, error)
	UpdateLoan(userID, loanID string, update LoanUpdate) (*models.Loan, error)
	DeleteLoan(userID, loanID string) error
	FinalizeLoan(userID, loanID string) (*models.Loan, error)
}
