package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
)

// ── 课程方案模块业务错误 ──

var (
	ErrSchemeNotFound        = errors.New("课程方案不存在")
	ErrInvalidBatchYearRange = errors.New("届别格式应为 YYYY-YYYY 且起始年份早于结束年份")
)

var batchYearRangePattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// validBatchYearRange 校验 "2024-2028" 形式的届别
func validBatchYearRange(v string) bool {
	m := batchYearRangePattern.FindStringSubmatch(v)
	if m == nil {
		return false
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return from < to
}

// SchemeService 课程方案业务接口
type SchemeService interface {
	Create(ctx context.Context, req *dto.CreateSchemeRequest, callerID string) (*dto.SchemeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SchemeResponse, error)
	List(ctx context.Context, req *dto.SchemeListRequest) ([]dto.SchemeResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSchemeRequest, callerID string) (*dto.SchemeResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type schemeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSchemeService 创建 SchemeService 实例
func NewSchemeService(repo *repository.Repository, logger *zap.Logger) SchemeService {
	return &schemeService{repo: repo, logger: logger}
}

func (s *schemeService) Create(ctx context.Context, req *dto.CreateSchemeRequest, callerID string) (*dto.SchemeResponse, error) {
	if !validBatchYearRange(req.BatchYearRange) {
		return nil, ErrInvalidBatchYearRange
	}
	if _, err := s.repo.University.GetByID(ctx, req.UniversityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("查询大学失败", zap.Error(err))
		return nil, err
	}

	scheme := &model.Scheme{
		UniversityID:   req.UniversityID,
		Name:           req.Name,
		BatchYearRange: req.BatchYearRange,
		IsActive:       true,
	}
	scheme.SetOperator(callerID, true)

	if err := s.repo.Scheme.Create(ctx, scheme); err != nil {
		s.logger.Error("创建课程方案失败", zap.Error(err))
		return nil, err
	}
	return toSchemeResponse(scheme), nil
}

func (s *schemeService) GetByID(ctx context.Context, id string) (*dto.SchemeResponse, error) {
	scheme, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSchemeResponse(scheme), nil
}

func (s *schemeService) List(ctx context.Context, req *dto.SchemeListRequest) ([]dto.SchemeResponse, error) {
	list, err := s.repo.Scheme.List(ctx, req.UniversityID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出课程方案失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SchemeResponse, 0, len(list))
	for i := range list {
		result = append(result, *toSchemeResponse(&list[i]))
	}
	return result, nil
}

func (s *schemeService) Update(ctx context.Context, id string, req *dto.UpdateSchemeRequest, callerID string) (*dto.SchemeResponse, error) {
	scheme, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		scheme.Name = *req.Name
	}
	if req.BatchYearRange != nil {
		if !validBatchYearRange(*req.BatchYearRange) {
			return nil, ErrInvalidBatchYearRange
		}
		scheme.BatchYearRange = *req.BatchYearRange
	}
	if req.IsActive != nil {
		scheme.IsActive = *req.IsActive
	}
	scheme.SetOperator(callerID, false)

	if err := s.repo.Scheme.Update(ctx, scheme); err != nil {
		s.logger.Error("更新课程方案失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSchemeResponse(scheme), nil
}

func (s *schemeService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Scheme.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程方案失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *schemeService) get(ctx context.Context, id string) (*model.Scheme, error) {
	scheme, err := s.repo.Scheme.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemeNotFound
		}
		s.logger.Error("查询课程方案失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return scheme, nil
}

func toSchemeResponse(scheme *model.Scheme) *dto.SchemeResponse {
	return &dto.SchemeResponse{
		ID:             scheme.SchemeID,
		UniversityID:   scheme.UniversityID,
		Name:           scheme.Name,
		BatchYearRange: scheme.BatchYearRange,
		IsActive:       scheme.IsActive,
		CreatedAt:      scheme.CreatedAt.Format(timeLayout),
		UpdatedAt:      scheme.UpdatedAt.Format(timeLayout),
	}
}
