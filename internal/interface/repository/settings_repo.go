package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"flightsurety-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const operationalKey = "operational"

// GormSettingsRepository implements the SettingsRepository interface
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GORM settings repository
func NewGormSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &GormSettingsRepository{
		db: db,
	}
}

// LedgerSettings GORM model, one row per setting
type LedgerSettings struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (LedgerSettings) TableName() string {
	return "fs_settings"
}

// IsOperational reads the gate; a ledger that never stored it is operational
func (r *GormSettingsRepository) IsOperational(ctx context.Context) (bool, error) {
	var setting LedgerSettings
	result := r.db.WithContext(ctx).Where("setting_key = ?", operationalKey).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, result.Error
	}
	return strconv.ParseBool(setting.Value)
}

// SetOperational stores the gate
func (r *GormSettingsRepository) SetOperational(ctx context.Context, operational bool) error {
	setting := LedgerSettings{
		Key:       operationalKey,
		Value:     strconv.FormatBool(operational),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
