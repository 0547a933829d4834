// Package settings provides key/value storage for application state that
// must survive restarts, such as the outcome of the last reconciliation run.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	value, err := repo.GetValue(ctx, entities.SettingKeyReconcileLastStatus)
package settings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookreviews/internal/apperrors"
	"github.com/mrlokans/bookreviews/internal/database"
	"github.com/mrlokans/bookreviews/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(ctx context.Context, key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperrors.NotFound("setting", key)
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return &setting, nil
}

// GetValue returns the setting's value, or "" when the key is unset.
func (r *Repository) GetValue(ctx context.Context, key string) (string, error) {
	setting, err := r.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

// SetSetting creates or updates a setting in a single upsert.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	setting := entities.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// SetMany writes several settings in one transaction.
func (r *Repository) SetMany(ctx context.Context, values map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &Repository{db: tx}
		for key, value := range values {
			if err := txRepo.SetSetting(ctx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
