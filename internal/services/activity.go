package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
)

// ActivityService keeps the per-family feed.
type ActivityService struct {
	db       *gorm.DB
	families *FamilyService
}

func NewActivityService(db *gorm.DB, families *FamilyService) *ActivityService {
	return &ActivityService{db: db, families: families}
}

type ActivityPage struct {
	Activities []models.Activity `json:"activities"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

// Log appends an entry. metadata is stored as a JSON string.
func (s *ActivityService) Log(ctx context.Context, familyID, userID uuid.UUID, actionType string, targetID *uuid.UUID, metadata map[string]interface{}) error {
	activity := models.Activity{
		FamilyID:   familyID,
		UserID:     userID,
		ActionType: actionType,
		TargetID:   targetID,
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			meta := string(data)
			activity.Metadata = &meta
		}
	}

	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// List returns the feed of familyID, newest first. Members only.
func (s *ActivityService) List(ctx context.Context, callerID, familyID uuid.UUID, page Page) (*ActivityPage, error) {
	if err := s.families.requireMember(ctx, callerID, familyID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	out := &ActivityPage{Activities: []models.Activity{}, Page: page.Page, Limit: page.Limit}
	err := db.Where("family_id = ?", familyID).
		Preload("User").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&out.Activities).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := db.Model(&models.Activity{}).Where("family_id = ?", familyID).Count(&out.Total).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}
