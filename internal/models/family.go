package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const (
	InviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	InviteCodeLength   = 6
)

type Family struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description *string        `json:"description"`
	InviteCode  string         `json:"inviteCode" gorm:"uniqueIndex;not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Members []FamilyMember `json:"members,omitempty" gorm:"foreignKey:FamilyID"`
	Count   *FamilyCount   `json:"_count,omitempty" gorm:"-"`
}

// FamilyCount mirrors the member/task counters shown on the dashboard.
type FamilyCount struct {
	Members int64 `json:"members"`
	Tasks   int64 `json:"tasks"`
}

func (f *Family) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.InviteCode == "" {
		code, err := GenerateInviteCode()
		if err != nil {
			return err
		}
		f.InviteCode = code
	}
	f.InviteCode = NormalizeInviteCode(f.InviteCode)
	return nil
}

// GenerateInviteCode returns a random upper-case alphanumeric code. It does
// not check uniqueness.
func GenerateInviteCode() (string, error) {
	return gonanoid.Generate(InviteCodeAlphabet, InviteCodeLength)
}

func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FamilyRef is the minimal family shape embedded in tasks.
type FamilyRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// Family DTOs
type CreateFamilyRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Locale      string  `json:"locale"`
}

type JoinFamilyRequest struct {
	InviteCode string `json:"inviteCode" validate:"required"`
	Locale     string `json:"locale"`
}
