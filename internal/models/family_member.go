package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type FamilyMember struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	FamilyID  uuid.UUID `json:"familyId" gorm:"type:uuid;not null;uniqueIndex:idx_family_user"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_family_user;index"`
	Role      Role      `json:"role" gorm:"not null;default:'MEMBER'"`
	JoinedAt  time.Time `json:"joinedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations (for preloading)
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Family *Family `json:"family,omitempty" gorm:"foreignKey:FamilyID"`
}

func (fm *FamilyMember) BeforeCreate(tx *gorm.DB) error {
	if fm.ID == uuid.Nil {
		fm.ID = uuid.New()
	}
	if fm.JoinedAt.IsZero() {
		fm.JoinedAt = tx.NowFunc()
	}
	if fm.Role == "" {
		fm.Role = RoleMember
	}
	return nil
}
