package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget represents a spending limit over a set of expense categories.
// StartDate and EndDate, when set, independently override the window
// derived from Period. Spent amounts are never stored; they are derived
// from transactions on every status request.
type Budget struct {
	Base
	UserID    string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string          `gorm:"not null" json:"name"`
	Color     string          `json:"color"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Period    BudgetPeriod    `gorm:"not null" json:"period"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Categories []Category `gorm:"many2many:budget_categories" json:"categories,omitempty"`
}

// CategoryIDs returns the IDs of the budget's linked categories.
func (b *Budget) CategoryIDs() []string {
	ids := make([]string, 0, len(b.Categories))
	for i := range b.Categories {
		ids = append(ids, b.Categories[i].ID)
	}
	return ids
}
