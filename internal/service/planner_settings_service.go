package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
)

// ── 规划参数模块业务错误 ──

var (
	ErrPlannerSettingsNotFound = errors.New("规划参数未初始化")
	ErrPlannerSettingsInvalid  = errors.New("默认分组数不能超过单班最大分组数")
)

// PlannerSettingsService 规划默认参数业务接口
type PlannerSettingsService interface {
	Get(ctx context.Context) (*dto.PlannerSettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdatePlannerSettingsRequest, callerID string) (*dto.PlannerSettingsResponse, error)
}

type plannerSettingsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlannerSettingsService 创建 PlannerSettingsService 实例
func NewPlannerSettingsService(repo *repository.Repository, logger *zap.Logger) PlannerSettingsService {
	return &plannerSettingsService{repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *plannerSettingsService) Get(ctx context.Context) (*dto.PlannerSettingsResponse, error) {
	settings, err := loadPlannerSettings(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}
	return toPlannerSettingsResponse(settings), nil
}

// ────────────────────── Update ──────────────────────

func (s *plannerSettingsService) Update(ctx context.Context, req *dto.UpdatePlannerSettingsRequest, callerID string) (*dto.PlannerSettingsResponse, error) {
	settings, err := loadPlannerSettings(ctx, s.repo, s.logger)
	if err != nil {
		return nil, err
	}

	if req.DefaultBatchesPerSection != nil {
		settings.DefaultBatchesPerSection = *req.DefaultBatchesPerSection
	}
	if req.MaxSections != nil {
		settings.MaxSections = *req.MaxSections
	}
	if req.MaxBatchesPerSection != nil {
		settings.MaxBatchesPerSection = *req.MaxBatchesPerSection
	}
	if settings.DefaultBatchesPerSection > settings.MaxBatchesPerSection {
		return nil, ErrPlannerSettingsInvalid
	}
	settings.SetOperator(callerID, false)

	if err := s.repo.PlannerSettings.Update(ctx, settings); err != nil {
		s.logger.Error("更新规划参数失败", zap.Error(err))
		return nil, err
	}
	return toPlannerSettingsResponse(settings), nil
}

func loadPlannerSettings(ctx context.Context, repo *repository.Repository, logger *zap.Logger) (*model.PlannerSettings, error) {
	settings, err := repo.PlannerSettings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlannerSettingsNotFound
		}
		logger.Error("查询规划参数失败", zap.Error(err))
		return nil, err
	}
	return settings, nil
}

func toPlannerSettingsResponse(settings *model.PlannerSettings) *dto.PlannerSettingsResponse {
	return &dto.PlannerSettingsResponse{
		DefaultBatchesPerSection: settings.DefaultBatchesPerSection,
		MaxSections:              settings.MaxSections,
		MaxBatchesPerSection:     settings.MaxBatchesPerSection,
		UpdatedAt:                settings.UpdatedAt.Format(timeLayout),
	}
}
