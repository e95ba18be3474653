package models

import "github.com/shopspring/decimal"

// BudgetPlan allocates an amount to a category over an inclusive date range.
// Spent always equals the sum of the plan's expense amounts; only the
// expense service writes it.
type BudgetPlan struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Spent      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"spent"`
	StartDate  Date            `gorm:"not null" json:"start_date"`
	EndDate    Date            `gorm:"not null" json:"end_date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Expenses []Expense `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"-"`
}

// Remaining is the allocation left after spending. Negative when overspent.
func (p *BudgetPlan) Remaining() decimal.Decimal {
	return p.Amount.Sub(p.Spent)
}

// Overspent reports whether spending exceeds the allocation.
func (p *BudgetPlan) Overspent() bool {
	return p.Spent.GreaterThan(p.Amount)
}
