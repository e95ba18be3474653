package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spend recorded against a plan. CategoryID is copied
// from the plan when the expense is created.
type Expense struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	PlanID      string          `gorm:"type:uuid;not null;index" json:"plan_id"`
	CategoryID  string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expense_date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
