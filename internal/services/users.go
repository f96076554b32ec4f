package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/models"
	"gorm.io/gorm"
)

// UserService handles registration, login and token refresh.
type UserService struct {
	db     *gorm.DB
	tokens *auth.TokenService
	verify func(plaintext, hash string) bool
}

func NewUserService(db *gorm.DB, tokens *auth.TokenService) *UserService {
	return &UserService{db: db, tokens: tokens, verify: auth.VerifyPassword}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	email := models.NormalizeEmail(in.Email)

	var count int64
	if err := db.Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if count > 0 {
		return nil, apperr.Conflict(apperr.KeyEmailTaken)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := models.User{
		Email:    email,
		Password: hash,
		Name:     in.Name,
	}
	err = db.Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict(apperr.KeyEmailTaken)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return s.respond(&user)
}

// Login checks credentials. Unknown email and wrong password produce the
// same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.verify(password, auth.DummyHash())
		return nil, apperr.Unauthenticated(apperr.KeyInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if !s.verify(password, user.Password) {
		return nil, apperr.Unauthenticated(apperr.KeyInvalidCredentials)
	}

	return s.respond(&user)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims := s.tokens.VerifyRefreshToken(refreshToken)
	if claims == nil {
		return nil, apperr.Unauthenticated(apperr.KeyInvalidRefreshToken)
	}

	user, err := s.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated(apperr.KeyInvalidRefreshToken)
		}
		return nil, err
	}
	return s.respond(user)
}

func (s *UserService) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.KeyUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

// Me returns the user with their memberships and the families behind them.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("FamilyMembers", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("FamilyMembers.Family").
		Where("id = ?", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(apperr.KeyUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &user, nil
}

func (s *UserService) SetDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("fcm_token", token).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// SetAvatar points the user's avatar at url and returns the updated user.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar", url)
	if res.Error != nil {
		return nil, apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(apperr.KeyUserNotFound)
	}
	return s.FindByID(ctx, userID)
}

func (s *UserService) respond(user *models.User) (*models.AuthResponse, error) {
	pair, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &models.AuthResponse{
		User:         *user,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
