package models

// DefaultCurrency is assigned to users who never chose one.
const DefaultCurrency = "RWF"

// User represents the user model in the database
type User struct {
	Base
	Username          string `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Email             string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password          string `gorm:"not null" json:"-"`
	Currency          string `gorm:"size:3;not null;default:RWF" json:"currency"`
	ProfilePictureURL string `gorm:"size:2048" json:"profile_picture_url"`

	Categories  []Category   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BudgetPlans []BudgetPlan `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Expenses    []Expense    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
