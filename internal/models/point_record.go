package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PointTypeEarned = "EARNED"

// PointRecord is one immutable grant in the points ledger. Rows are only
// removed together with their task.
type PointRecord struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	FamilyID    uuid.UUID `json:"familyId" gorm:"type:uuid;index;not null"`
	TaskID      uuid.UUID `json:"taskId" gorm:"type:uuid;index;not null"`
	Points      int       `json:"points" gorm:"not null"`
	Type        string    `json:"type" gorm:"not null;default:'EARNED'"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (pr *PointRecord) BeforeCreate(tx *gorm.DB) error {
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	if pr.Type == "" {
		pr.Type = PointTypeEarned
	}
	return nil
}
