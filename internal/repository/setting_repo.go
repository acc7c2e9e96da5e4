package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
)

// SettingRepository reads and writes the single platform settings row.
type SettingRepository interface {
	Get(ctx context.Context) (models.SystemSetting, error)
	EnsureDefault(ctx context.Context, commissionRate float64) (models.SystemSetting, bool, error)
	UpdateCommissionRate(ctx context.Context, rate float64, updatedBy uint) (models.SystemSetting, error)
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository instantiates a GORM-backed repository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context) (models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := r.db.WithContext(ctx).First(&setting, models.SystemSettingID).Error; err != nil {
		return models.SystemSetting{}, err
	}
	return setting, nil
}

// EnsureDefault creates the settings row when missing and reports whether it did.
func (r *settingRepository) EnsureDefault(ctx context.Context, commissionRate float64) (models.SystemSetting, bool, error) {
	setting, err := r.Get(ctx)
	if err == nil {
		return setting, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SystemSetting{}, false, err
	}

	setting = models.SystemSetting{ID: models.SystemSettingID, CommissionRate: commissionRate}
	if err := r.db.WithContext(ctx).Create(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := r.Get(ctx)
			return existing, false, getErr
		}
		return models.SystemSetting{}, false, err
	}
	return setting, true, nil
}

func (r *settingRepository) UpdateCommissionRate(ctx context.Context, rate float64, updatedBy uint) (models.SystemSetting, error) {
	result := r.db.WithContext(ctx).Model(&models.SystemSetting{}).
		Where("id = ?", models.SystemSettingID).
		Updates(map[string]interface{}{
			"commission_rate": rate,
			"updated_by":      updatedBy,
		})
	if result.Error != nil {
		return models.SystemSetting{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.SystemSetting{}, gorm.ErrRecordNotFound
	}
	return r.Get(ctx)
}
