package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanType is the direction of a loan. RECEIVED means money borrowed
// (a liability); GIVEN means money lent (an asset). The direction
// determines which transaction type counts as a payment.
type LoanType string

const (
	LoanTypeReceived LoanType = "received"
	LoanTypeGiven    LoanType = "given"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusPaid   LoanStatus = "paid"
)

// Loan represents a tracked loan backed by a dedicated category. A
// category backs at most one active loan. Paid and pending amounts are
// never stored; they are derived from the category's transactions on
// every read.
type Loan struct {
	Base
	UserID         string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string           `gorm:"not null" json:"name"`
	InitialAmount  decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"initial_amount"`
	Type           LoanType         `gorm:"not null" json:"type"`
	Status         LoanStatus       `gorm:"not null;default:'active'" json:"status"`
	StartDate      time.Time        `gorm:"not null" json:"start_date"`
	InterestRate   *decimal.Decimal `gorm:"type:numeric(5,2)" json:"interest_rate,omitempty"`
	CategoryID     string           `gorm:"type:uuid;not null;index" json:"category_id"`
	CategoryName   *string          `json:"category_name,omitempty"`
	CreditorDebtor *string          `json:"creditor_debtor,omitempty"`
	Notes          *string          `json:"notes,omitempty"`

	// Relationships
	Category     Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:LoanID" json:"transactions,omitempty"`
}

// PaymentType returns the transaction type that represents paying the
// loan back: expenses for borrowed money, income for lent money.
func (l *Loan) PaymentType() TransactionType {
	if l.Type == LoanTypeReceived {
		return TransactionTypeExpense
	}
	return TransactionTypeIncome
}

// DisbursementType returns the transaction type of the initial money
// movement: income for borrowed money, expense for lent money.
func (l *Loan) DisbursementType() TransactionType {
	if l.Type == LoanTypeReceived {
		return TransactionTypeIncome
	}
	return TransactionTypeExpense
}
