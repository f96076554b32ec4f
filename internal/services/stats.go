package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
)

const recentActivityLimit = 5

// StatsService computes dashboard counters on demand.
type StatsService struct {
	db       *gorm.DB
	families *FamilyService
	ledger   *Ledger
}

func NewStatsService(db *gorm.DB, families *FamilyService, ledger *Ledger) *StatsService {
	return &StatsService{db: db, families: families, ledger: ledger}
}

func (s *StatsService) ForUser(ctx context.Context, userID uuid.UUID) (*models.Stats, error) {
	stats := &models.Stats{RecentActivity: []models.TaskView{}}

	familyIDs, err := s.families.FamilyIDsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(familyIDs) > 0 {
		inFamilies := func() *gorm.DB {
			return s.db.WithContext(ctx).Model(&models.Task{}).Where("family_id IN ?", familyIDs)
		}
		if err := inFamilies().Where("status IN ?", openStatuses()).Count(&stats.Overview.PendingTasks).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if err := inFamilies().Where("status = ?", models.StatusCompleted).Count(&stats.Overview.CompletedTasks).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if err := inFamilies().Where("assigned_to_id = ? AND status IN ?", userID, openStatuses()).Count(&stats.Personal.PendingTasks).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if err := inFamilies().Where("assigned_to_id = ? AND status = ?", userID, models.StatusCompleted).Count(&stats.Personal.CompletedTasks).Error; err != nil {
			return nil, apperr.Internal(err)
		}
	}
	stats.Overview.TotalTasks = stats.Overview.PendingTasks + stats.Overview.CompletedTasks
	stats.Personal.TotalTasks = stats.Personal.PendingTasks + stats.Personal.CompletedTasks

	stats.Overview.TotalPoints, err = s.ledger.Total(ctx, userID, familyIDs)
	if err != nil {
		return nil, err
	}

	if len(familyIDs) == 0 {
		return stats, nil
	}

	var recent []models.Task
	err = s.db.WithContext(ctx).
		Preload("Family").Preload("AssignedTo").Preload("CreatedBy").
		Where("family_id IN ? AND (created_by_id = ? OR assigned_to_id = ?)", familyIDs, userID, userID).
		Order("updated_at DESC").
		Limit(recentActivityLimit).
		Find(&recent).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	stats.RecentActivity = models.TaskViews(recent)

	return stats, nil
}

func openStatuses() []string {
	return []string{string(models.StatusPending), string(models.StatusInProgress)}
}
