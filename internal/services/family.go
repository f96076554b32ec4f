package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
)

const maxInviteCodeAttempts = 10

// FamilyService owns families and their memberships.
type FamilyService struct {
	db *gorm.DB
}

func NewFamilyService(db *gorm.DB) *FamilyService {
	return &FamilyService{db: db}
}

// CreateFamily creates a family with a fresh invite code and makes ownerID
// its ADMIN. Both rows are written in one transaction.
func (s *FamilyService) CreateFamily(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*models.Family, error) {
	db := s.db.WithContext(ctx)

	code, err := s.uniqueInviteCode(db)
	if err != nil {
		return nil, err
	}

	family := models.Family{
		Name:        name,
		Description: description,
		InviteCode:  code,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&family).Error; err != nil {
			return err
		}
		return tx.Create(&models.FamilyMember{
			FamilyID: family.ID,
			UserID:   ownerID,
			Role:     models.RoleAdmin,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.KindInternal, apperr.KeyInviteCodeExhausted)
		}
		return nil, apperr.Internal(err)
	}

	return s.load(ctx, family.ID)
}

// uniqueInviteCode draws codes until one is unused. Soft-deleted families
// keep their codes.
func (s *FamilyService) uniqueInviteCode(db *gorm.DB) (string, error) {
	for i := 0; i < maxInviteCodeAttempts; i++ {
		code, err := models.GenerateInviteCode()
		if err != nil {
			return "", apperr.Internal(err)
		}
		var count int64
		if err := db.Unscoped().Model(&models.Family{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
			return "", apperr.Internal(err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", apperr.New(apperr.KindInternal, apperr.KeyInviteCodeExhausted)
}

// JoinFamily adds userID as a MEMBER of the family owning code. Codes are
// matched case-insensitively.
func (s *FamilyService) JoinFamily(ctx context.Context, userID uuid.UUID, code string) (*models.Family, error) {
	db := s.db.WithContext(ctx)

	var family models.Family
	err := db.Where("invite_code = ?", models.NormalizeInviteCode(code)).First(&family).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.KeyInvalidInviteCode)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	member, err := s.IsMember(ctx, userID, family.ID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, apperr.Conflict(apperr.KeyAlreadyMember)
	}

	err = db.Create(&models.FamilyMember{
		FamilyID: family.ID,
		UserID:   userID,
		Role:     models.RoleMember,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict(apperr.KeyAlreadyMember)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return s.load(ctx, family.ID)
}

// ListFamilies returns every family userID belongs to, newest first.
func (s *FamilyService) ListFamilies(ctx context.Context, userID uuid.UUID) ([]models.Family, error) {
	var families []models.Family
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.FamilyMember{}).Select("family_id").Where("user_id = ?", userID)).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		Order("created_at DESC").
		Find(&families).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.attachCounts(ctx, families); err != nil {
		return nil, err
	}
	return families, nil
}

// GetFamily returns one family if userID is a member of it.
func (s *FamilyService) GetFamily(ctx context.Context, userID, familyID uuid.UUID) (*models.Family, error) {
	family, err := s.load(ctx, familyID)
	if err != nil {
		return nil, err
	}
	member, err := s.IsMember(ctx, userID, familyID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Forbidden(apperr.KeyNotFamilyMember)
	}
	return family, nil
}

func (s *FamilyService) load(ctx context.Context, familyID uuid.UUID) (*models.Family, error) {
	var family models.Family
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		Where("id = ?", familyID).
		First(&family).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.KeyFamilyNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	families := []models.Family{family}
	if err := s.attachCounts(ctx, families); err != nil {
		return nil, err
	}
	return &families[0], nil
}

type familyCountRow struct {
	FamilyID uuid.UUID
	N        int64
}

// attachCounts fills Count on each family with two grouped queries.
func (s *FamilyService) attachCounts(ctx context.Context, families []models.Family) error {
	if len(families) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(families))
	for i := range families {
		ids[i] = families[i].ID
		families[i].Count = &models.FamilyCount{}
	}

	db := s.db.WithContext(ctx)
	var members, tasks []familyCountRow
	if err := db.Model(&models.FamilyMember{}).
		Select("family_id, COUNT(*) AS n").
		Where("family_id IN ?", ids).
		Group("family_id").
		Scan(&members).Error; err != nil {
		return apperr.Internal(err)
	}
	if err := db.Model(&models.Task{}).
		Select("family_id, COUNT(*) AS n").
		Where("family_id IN ?", ids).
		Group("family_id").
		Scan(&tasks).Error; err != nil {
		return apperr.Internal(err)
	}

	index := make(map[uuid.UUID]*models.FamilyCount, len(families))
	for i := range families {
		index[families[i].ID] = families[i].Count
	}
	for _, r := range members {
		if c := index[r.FamilyID]; c != nil {
			c.Members = r.N
		}
	}
	for _, r := range tasks {
		if c := index[r.FamilyID]; c != nil {
			c.Tasks = r.N
		}
	}
	return nil
}

// IsMember reports whether userID has a membership row in familyID.
func (s *FamilyService) IsMember(ctx context.Context, userID, familyID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal(err)
	}
	return count > 0, nil
}

// RoleOf returns userID's role in familyID, or nil when not a member.
func (s *FamilyService) RoleOf(ctx context.Context, userID, familyID uuid.UUID) (*models.Role, error) {
	var member models.FamilyMember
	err := s.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &member.Role, nil
}

func (s *FamilyService) FamilyIDsFor(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.FamilyMember{}).
		Where("user_id = ?", userID).
		Pluck("family_id", &ids).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ids, nil
}

func (s *FamilyService) MemberIDs(ctx context.Context, familyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.FamilyMember{}).
		Where("family_id = ?", familyID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ids, nil
}

// requireMember returns Forbidden unless userID belongs to familyID.
func (s *FamilyService) requireMember(ctx context.Context, userID, familyID uuid.UUID) error {
	member, err := s.IsMember(ctx, userID, familyID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.Forbidden(apperr.KeyNotFamilyMember)
	}
	return nil
}
