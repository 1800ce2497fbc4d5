package models

import "time"

// Category is a named bucket expenses are grouped under. Names are
// globally unique so summary buckets never collide. Immutable once
// created; there is no rename or delete endpoint.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"-"`
}

// TableName sets the table name.
func (Category) TableName() string {
	return "categories"
}
