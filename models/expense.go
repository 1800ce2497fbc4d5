package models

import "time"

// Expense is a single monetary outlay owned by exactly one user and
// filed under exactly one category. Records are immutable after
// creation and never deleted; created_at is server-assigned.
type Expense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	CategoryID  uint      `json:"category_id" gorm:"index;not null"`
	Amount      float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Description string    `json:"description" gorm:"size:255;not null"`
	CreatedAt   time.Time `json:"created_at"`
	User        User      `json:"-" gorm:"foreignKey:UserID"`
	Category    Category  `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName sets the table name.
func (Expense) TableName() string {
	return "expenses"
}
