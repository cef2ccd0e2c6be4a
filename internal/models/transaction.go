package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionSource records how a transaction entered the system.
type TransactionSource string

const (
	TransactionSourceManual  TransactionSource = "manual"
	TransactionSourceAIText  TransactionSource = "ai_text"
	TransactionSourceAIAudio TransactionSource = "ai_audio"
)

// Transaction represents a financial transaction in the system.
// Transactions with IsLoan set are managed exclusively through their
// loan and reject direct updates and deletes.
type Transaction struct {
	Base
	UserID      string            `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string            `gorm:"type:uuid;not null;index" json:"category_id"`
	Type        TransactionType   `gorm:"not null" json:"type"`
	Amount      decimal.Decimal   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Description string            `json:"description"`
	Date        time.Time         `gorm:"not null;index" json:"date"`
	Source      TransactionSource `gorm:"not null;default:'manual'" json:"source"`
	IsLoan      bool              `gorm:"default:false" json:"is_loan"`
	LoanID      *string           `gorm:"type:uuid;index" json:"loan_id,omitempty"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
