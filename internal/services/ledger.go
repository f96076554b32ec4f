package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
)

// Ledger is the append-only points store. Methods taking a tx run inside the
// caller's transaction; a nil tx uses the ledger's own handle.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

type GrantInput struct {
	UserID      uuid.UUID
	FamilyID    uuid.UUID
	TaskID      uuid.UUID
	Points      int
	Description string
}

func (l *Ledger) handle(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = l.db
	}
	return tx.WithContext(ctx)
}

// Grant appends one EARNED record.
func (l *Ledger) Grant(ctx context.Context, tx *gorm.DB, in GrantInput) (*models.PointRecord, error) {
	record := models.PointRecord{
		UserID:      in.UserID,
		FamilyID:    in.FamilyID,
		TaskID:      in.TaskID,
		Points:      in.Points,
		Type:        models.PointTypeEarned,
		Description: in.Description,
	}
	if err := l.handle(ctx, tx).Create(&record).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &record, nil
}

// DeleteForTask removes every record tied to taskID.
func (l *Ledger) DeleteForTask(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) error {
	if err := l.handle(ctx, tx).Where("task_id = ?", taskID).Delete(&models.PointRecord{}).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Total sums userID's points across familyIDs.
func (l *Ledger) Total(ctx context.Context, userID uuid.UUID, familyIDs []uuid.UUID) (int64, error) {
	if len(familyIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := l.db.WithContext(ctx).Model(&models.PointRecord{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND family_id IN ?", userID, familyIDs).
		Scan(&total).Error
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return total, nil
}

// History lists userID's records, newest first.
func (l *Ledger) History(ctx context.Context, userID uuid.UUID) ([]models.PointRecord, error) {
	records := []models.PointRecord{}
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return records, nil
}
