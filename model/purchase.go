package model

import "time"

const PurchaseStatusCompleted = "completed"

// Purchase is the ledger entry recording that a user bought a course. The
// amount is frozen at purchase time.
type Purchase struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"_id"`
	UserID    string    `gorm:"type:varchar(191);not null;uniqueIndex:idx_purchase_user_course" json:"userId"`
	CourseID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_purchase_user_course;index" json:"courseId"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}
