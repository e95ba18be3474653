package models

// Category is a named spending bucket. Names are unique per owner.
type Category struct {
	Base
	UserID      string `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"user_id"`
	Name        string `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	// Financial records must never vanish with their category.
	BudgetPlans []BudgetPlan `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	Expenses    []Expense    `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
}
