package repository

import (
	"context"
	"errors"
	"time"

	"cineteca/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfirmationCodeRepository interface {
	GetByCode(ctx context.Context, code uuid.UUID) (*entity.ConfirmationCode, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error)
	// Create replaces any existing code for the user, so at most one live
	// code per user ever exists.
	Create(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (*entity.ConfirmationCode, error)
	Delete(ctx context.Context, code *entity.ConfirmationCode) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type confirmationCodeRepository struct {
	db *gorm.DB
}

func NewConfirmationCodeRepository(db *gorm.DB) ConfirmationCodeRepository {
	return &confirmationCodeRepository{db: db}
}

func (r *confirmationCodeRepository) GetByCode(ctx context.Context, code uuid.UUID) (*entity.ConfirmationCode, error) {
	var record entity.ConfirmationCode
	err := r.db.WithContext(ctx).
		Preload("User.Roles").
		Where("code = ?", code).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *confirmationCodeRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error) {
	var record entity.ConfirmationCode
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *confirmationCodeRepository) Create(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (*entity.ConfirmationCode, error) {
	record := &entity.ConfirmationCode{
		UserID:    userID,
		Code:      uuid.New(),
		ExpiresAt: expiresAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entity.ConfirmationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *confirmationCodeRepository) Delete(ctx context.Context, code *entity.ConfirmationCode) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", code.UserID).
		Delete(&entity.ConfirmationCode{}).Error
}

func (r *confirmationCodeRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.ConfirmationCode{}).Error
}
