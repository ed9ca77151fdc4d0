package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
)

// ── 院系模块业务错误 ──

var (
	ErrDepartmentNotFound    = errors.New("院系不存在")
	ErrDepartmentNameExists  = errors.New("同一学院下院系名称已存在")
	ErrDepartmentHasSections = errors.New("院系下存在班级，无法删除")
	ErrDepartmentInactive    = errors.New("院系已停用")
)

// DepartmentService 院系业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	school, err := s.repo.School.GetByID(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学院失败", zap.Error(err))
		return nil, err
	}

	// 检查名称唯一性
	existing, err := s.repo.Department.GetByName(ctx, req.SchoolID, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrDepartmentNameExists
	}

	dept := &model.Department{
		SchoolID:      req.SchoolID,
		Name:          req.Name,
		Code:          req.Code,
		TotalStudents: req.TotalStudents,
		IsActive:      true,
	}
	dept.Version = 1
	dept.SetOperator(callerID, true)

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建院系失败", zap.Error(err))
		return nil, err
	}
	dept.School = school

	return s.toDepartmentDetailResponse(dept, 0), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *departmentService) GetByID(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDepartmentDetailResponse(dept, s.countSections(ctx, id)), nil
}

// ────────────────────── List ──────────────────────

func (s *departmentService) List(ctx context.Context, req *dto.DepartmentListRequest) ([]dto.DepartmentDetailResponse, error) {
	depts, err := s.repo.Department.List(ctx, req.SchoolID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出院系失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		result = append(result, *s.toDepartmentDetailResponse(&depts[i], s.countSections(ctx, depts[i].DepartmentID)))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *departmentService) Update(ctx context.Context, id string, req *dto.UpdateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if versionConflict(req.Version, dept.Version) {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil && *req.Name != dept.Name {
		existing, err := s.repo.Department.GetByName(ctx, dept.SchoolID, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询院系失败", zap.Error(err))
			return nil, err
		}
		if existing != nil && existing.DepartmentID != id {
			return nil, ErrDepartmentNameExists
		}
		dept.Name = *req.Name
	}
	if req.Code != nil {
		dept.Code = *req.Code
	}
	if req.TotalStudents != nil {
		dept.TotalStudents = *req.TotalStudents
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	dept.SetOperator(callerID, false)

	if err := s.repo.Department.Update(ctx, dept); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新院系失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.toDepartmentDetailResponse(dept, s.countSections(ctx, id)), nil
}

// ────────────────────── Delete ──────────────────────

func (s *departmentService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Department.CountSections(ctx, id)
	if err != nil {
		s.logger.Error("统计院系班级数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrDepartmentHasSections
	}

	if err := s.repo.Department.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除院系失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *departmentService) get(ctx context.Context, id string) (*model.Department, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return dept, nil
}

// countSections 统计失败时回退为 0，不影响主流程
func (s *departmentService) countSections(ctx context.Context, id string) int64 {
	count, err := s.repo.Department.CountSections(ctx, id)
	if err != nil {
		s.logger.Warn("查询班级数失败，回退为0", zap.String("id", id), zap.Error(err))
		return 0
	}
	return count
}

func (s *departmentService) toDepartmentDetailResponse(dept *model.Department, sectionCount int64) *dto.DepartmentDetailResponse {
	resp := &dto.DepartmentDetailResponse{
		ID:            dept.DepartmentID,
		SchoolID:      dept.SchoolID,
		Name:          dept.Name,
		Code:          dept.Code,
		TotalStudents: dept.TotalStudents,
		IsActive:      dept.IsActive,
		SectionCount:  sectionCount,
		Version:       dept.Version,
		CreatedAt:     dept.CreatedAt.Format(timeLayout),
		UpdatedAt:     dept.UpdatedAt.Format(timeLayout),
	}
	if dept.School != nil {
		resp.SchoolName = dept.School.Name
	}
	return resp
}
