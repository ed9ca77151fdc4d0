package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
)

// PlannerSettingsRepository 规划默认参数数据访问接口
type PlannerSettingsRepository interface {
	Get(ctx context.Context) (*model.PlannerSettings, error)
	Update(ctx context.Context, settings *model.PlannerSettings) error
}

type plannerSettingsRepo struct {
	db *gorm.DB
}

// NewPlannerSettingsRepo 创建 PlannerSettingsRepository 实例
func NewPlannerSettingsRepo(db *gorm.DB) PlannerSettingsRepository {
	return &plannerSettingsRepo{db: db}
}

func (r *plannerSettingsRepo) Get(ctx context.Context) (*model.PlannerSettings, error) {
	var settings model.PlannerSettings
	err := r.db.WithContext(ctx).Where("singleton = ?", true).First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *plannerSettingsRepo) Update(ctx context.Context, settings *model.PlannerSettings) error {
	settings.Singleton = true
	return r.db.WithContext(ctx).Save(settings).Error
}
