package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
)

// Members lists a family's memberships with their users, oldest first.
func (s *FamilyService) Members(ctx context.Context, callerID, familyID uuid.UUID) ([]models.FamilyMember, error) {
	if err := s.requireMember(ctx, callerID, familyID); err != nil {
		return nil, err
	}

	var members []models.FamilyMember
	err := s.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Preload("User").
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return members, nil
}

// RemoveMember lets an ADMIN drop another member. The removed user's open
// tasks in the family become unassigned.
func (s *FamilyService) RemoveMember(ctx context.Context, callerID, familyID, targetID uuid.UUID) error {
	if err := s.requireAdmin(ctx, callerID, familyID); err != nil {
		return err
	}
	if targetID == callerID {
		return apperr.BadRequest(apperr.KeyCannotRemoveSelf)
	}
	return s.removeMembership(ctx, familyID, targetID)
}

// LeaveFamily removes the caller's own membership. The only ADMIN of a
// family cannot leave.
func (s *FamilyService) LeaveFamily(ctx context.Context, callerID, familyID uuid.UUID) error {
	role, err := s.RoleOf(ctx, callerID, familyID)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.Forbidden(apperr.KeyNotFamilyMember)
	}

	if *role == models.RoleAdmin {
		var admins int64
		err := s.db.WithContext(ctx).Model(&models.FamilyMember{}).
			Where("family_id = ? AND role = ?", familyID, models.RoleAdmin).
			Count(&admins).Error
		if err != nil {
			return apperr.Internal(err)
		}
		if admins <= 1 {
			return apperr.BadRequest(apperr.KeyLastAdmin)
		}
	}
	return s.removeMembership(ctx, familyID, callerID)
}

// RegenerateInviteCode replaces the family's invite code. Old codes stop
// working immediately.
func (s *FamilyService) RegenerateInviteCode(ctx context.Context, callerID, familyID uuid.UUID) (*models.Family, error) {
	if err := s.requireAdmin(ctx, callerID, familyID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	code, err := s.uniqueInviteCode(db)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Family{}).Where("id = ?", familyID).Update("invite_code", code).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.load(ctx, familyID)
}

func (s *FamilyService) removeMembership(ctx context.Context, familyID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("family_id = ? AND user_id = ?", familyID, userID).Delete(&models.FamilyMember{})
		if res.Error != nil {
			return apperr.Internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(apperr.KeyMemberNotFound)
		}

		err := tx.Model(&models.Task{}).
			Where("family_id = ? AND assigned_to_id = ? AND status IN ?", familyID, userID, openStatuses()).
			Update("assigned_to_id", nil).Error
		if err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
}

func (s *FamilyService) requireAdmin(ctx context.Context, userID, familyID uuid.UUID) error {
	role, err := s.RoleOf(ctx, userID, familyID)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.Forbidden(apperr.KeyNotFamilyMember)
	}
	if *role != models.RoleAdmin {
		return apperr.Forbidden(apperr.KeyAdminOnly)
	}
	return nil
}
