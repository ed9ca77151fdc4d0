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

// ── 大学/学院模块业务错误 ──

var (
	ErrUniversityNotFound = errors.New("大学不存在")
	ErrSchoolNotFound     = errors.New("学院不存在")
)

// UniversityService 大学业务接口
type UniversityService interface {
	Create(ctx context.Context, req *dto.CreateUniversityRequest, callerID string) (*dto.UniversityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UniversityResponse, error)
	List(ctx context.Context) ([]dto.UniversityResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUniversityRequest, callerID string) (*dto.UniversityResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type universityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUniversityService 创建 UniversityService 实例
func NewUniversityService(repo *repository.Repository, logger *zap.Logger) UniversityService {
	return &universityService{repo: repo, logger: logger}
}

func (s *universityService) Create(ctx context.Context, req *dto.CreateUniversityRequest, callerID string) (*dto.UniversityResponse, error) {
	u := &model.University{Name: req.Name, Location: req.Location}
	u.SetOperator(callerID, true)

	if err := s.repo.University.Create(ctx, u); err != nil {
		s.logger.Error("创建大学失败", zap.Error(err))
		return nil, err
	}
	return toUniversityResponse(u), nil
}

func (s *universityService) GetByID(ctx context.Context, id string) (*dto.UniversityResponse, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUniversityResponse(u), nil
}

func (s *universityService) List(ctx context.Context) ([]dto.UniversityResponse, error) {
	list, err := s.repo.University.List(ctx)
	if err != nil {
		s.logger.Error("列出大学失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.UniversityResponse, 0, len(list))
	for i := range list {
		result = append(result, *toUniversityResponse(&list[i]))
	}
	return result, nil
}

func (s *universityService) Update(ctx context.Context, id string, req *dto.UpdateUniversityRequest, callerID string) (*dto.UniversityResponse, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Location != nil {
		u.Location = *req.Location
	}
	u.SetOperator(callerID, false)

	if err := s.repo.University.Update(ctx, u); err != nil {
		s.logger.Error("更新大学失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUniversityResponse(u), nil
}

func (s *universityService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.University.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除大学失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *universityService) get(ctx context.Context, id string) (*model.University, error) {
	u, err := s.repo.University.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("查询大学失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func toUniversityResponse(u *model.University) *dto.UniversityResponse {
	return &dto.UniversityResponse{
		ID:        u.UniversityID,
		Name:      u.Name,
		Location:  u.Location,
		CreatedAt: u.CreatedAt.Format(timeLayout),
		UpdatedAt: u.UpdatedAt.Format(timeLayout),
	}
}

// ════════════════════════════════════════════════════════════
// School
// ════════════════════════════════════════════════════════════

// SchoolService 学院业务接口
type SchoolService interface {
	Create(ctx context.Context, req *dto.CreateSchoolRequest, callerID string) (*dto.SchoolResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SchoolResponse, error)
	List(ctx context.Context, req *dto.SchoolListRequest) ([]dto.SchoolResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSchoolRequest, callerID string) (*dto.SchoolResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type schoolService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSchoolService 创建 SchoolService 实例
func NewSchoolService(repo *repository.Repository, logger *zap.Logger) SchoolService {
	return &schoolService{repo: repo, logger: logger}
}

func (s *schoolService) Create(ctx context.Context, req *dto.CreateSchoolRequest, callerID string) (*dto.SchoolResponse, error) {
	uni, err := s.repo.University.GetByID(ctx, req.UniversityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("查询大学失败", zap.Error(err))
		return nil, err
	}

	school := &model.School{UniversityID: uni.UniversityID, Name: req.Name}
	school.SetOperator(callerID, true)

	if err := s.repo.School.Create(ctx, school); err != nil {
		s.logger.Error("创建学院失败", zap.Error(err))
		return nil, err
	}
	school.University = uni
	return toSchoolResponse(school), nil
}

func (s *schoolService) GetByID(ctx context.Context, id string) (*dto.SchoolResponse, error) {
	school, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSchoolResponse(school), nil
}

func (s *schoolService) List(ctx context.Context, req *dto.SchoolListRequest) ([]dto.SchoolResponse, error) {
	list, err := s.repo.School.ListByUniversity(ctx, req.UniversityID)
	if err != nil {
		s.logger.Error("列出学院失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SchoolResponse, 0, len(list))
	for i := range list {
		result = append(result, *toSchoolResponse(&list[i]))
	}
	return result, nil
}

func (s *schoolService) Update(ctx context.Context, id string, req *dto.UpdateSchoolRequest, callerID string) (*dto.SchoolResponse, error) {
	school, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		school.Name = *req.Name
	}
	school.SetOperator(callerID, false)

	if err := s.repo.School.Update(ctx, school); err != nil {
		s.logger.Error("更新学院失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSchoolResponse(school), nil
}

func (s *schoolService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.School.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学院失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *schoolService) get(ctx context.Context, id string) (*model.School, error) {
	school, err := s.repo.School.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotFound
		}
		s.logger.Error("查询学院失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return school, nil
}

func toSchoolResponse(school *model.School) *dto.SchoolResponse {
	resp := &dto.SchoolResponse{
		ID:           school.SchoolID,
		UniversityID: school.UniversityID,
		Name:         school.Name,
		CreatedAt:    school.CreatedAt.Format(timeLayout),
		UpdatedAt:    school.UpdatedAt.Format(timeLayout),
	}
	if school.University != nil {
		resp.UniversityName = school.University.Name
	}
	return resp
}
