package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/capacity"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/events"
)

// ── 班级模块业务错误 ──

var (
	ErrSectionNotFound      = errors.New("班级不存在")
	ErrSectionNameExists    = errors.New("同一院系/方案/届别下班级名称重复")
	ErrSectionInvariant     = errors.New("班级人数或分组命名不一致")
	ErrSectionLimitExceeded = errors.New("班级或分组数量超过上限")
	ErrBatchNotFound        = errors.New("分组不存在")
	ErrNoSectionsToDivide   = errors.New("院系在该方案与届别下没有班级")
)

// 规划参数缺失时的兜底值，与数据库默认值一致
var fallbackPlannerSettings = model.PlannerSettings{
	DefaultBatchesPerSection: 2,
	MaxSections:              26,
	MaxBatchesPerSection:     6,
}

// SectionService 班级规划与管理业务接口
//
// 所有修改先在 capacity 包的纯函数上计算新状态，校验人数与命名不变式后，
// 在同一事务中乐观锁更新班级并整体替换分组。
type SectionService interface {
	// Plan 预览院系的班级划分，不落库
	Plan(ctx context.Context, req *dto.PlanSectionsRequest) (*dto.PlanSectionsResponse, error)
	// SubmitConfig 提交班级配置，仅创建尚未持久化的班级
	SubmitConfig(ctx context.Context, req *dto.SectionConfigRequest, callerID string) (*dto.SectionConfigResponse, error)
	List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error)
	Get(ctx context.Context, id string) (*dto.SectionResponse, error)
	// Rename 重命名班级，分组名级联更新
	Rename(ctx context.Context, id string, req *dto.RenameSectionRequest, callerID string) (*dto.SectionResponse, error)
	// ResizeBatches 调整分组数量并重新均分人数
	ResizeBatches(ctx context.Context, id string, req *dto.ResizeBatchesRequest, callerID string) (*dto.SectionResponse, error)
	// Redistribute 修改总人数并在现有分组间重新均分
	Redistribute(ctx context.Context, id string, req *dto.RedistributeRequest, callerID string) (*dto.SectionResponse, error)
	// DistributeDepartment 将院系总人数重新分配到其全部班级及分组
	DistributeDepartment(ctx context.Context, departmentID string, req *dto.DistributeDepartmentRequest, callerID string) ([]dto.SectionResponse, error)
	// UpdateBatchRoom 设置某个分组（1 起始位置）的偏好教室
	UpdateBatchRoom(ctx context.Context, id string, position int, req *dto.UpdateBatchRoomRequest, callerID string) (*dto.SectionResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type sectionService struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, publisher: publisher, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Plan 预览班级划分
// ════════════════════════════════════════════════════════════

func (s *sectionService) Plan(ctx context.Context, req *dto.PlanSectionsRequest) (*dto.PlanSectionsResponse, error) {
	dept, err := s.getDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	settings := s.plannerSettings(ctx)

	total := dept.TotalStudents
	if req.TotalStudents != nil {
		total = *req.TotalStudents
	}
	batches := req.BatchesPerSection
	if batches == 0 {
		batches = settings.DefaultBatchesPerSection
	}
	if req.SectionCount > settings.MaxSections || batches > settings.MaxBatchesPerSection {
		return nil, ErrSectionLimitExceeded
	}

	sections, err := capacity.GenerateSections(total, req.SectionCount, batches)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanSectionsResponse{
		DepartmentID:   dept.DepartmentID,
		DepartmentName: dept.Name,
		TotalStudents:  total,
		Sections:       make([]dto.SectionConfigItem, 0, len(sections)),
	}
	for _, sec := range sections {
		resp.Sections = append(resp.Sections, dto.SectionConfigItem{
			LocalID:    sec.ID.Key(),
			Name:       sec.Name,
			NumBatches: len(sec.Batches),
			TotalCount: sec.TotalCount,
			Batches:    toBatchResponses(sec.Batches),
		})
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// SubmitConfig 提交班级配置
// ════════════════════════════════════════════════════════════
//
// 带 section_id 的条目已持久化，跳过；其余按 num_batches 均分 total_count 后
// 在一个事务中创建，返回 local_id → section_id 映射。

func (s *sectionService) SubmitConfig(ctx context.Context, req *dto.SectionConfigRequest, callerID string) (*dto.SectionConfigResponse, error) {
	if !validBatchYearRange(req.BatchYearRange) {
		return nil, ErrInvalidBatchYearRange
	}
	dept, err := s.getDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, ErrDepartmentInactive
	}
	if _, err := s.repo.Scheme.GetByID(ctx, req.SchemeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchemeNotFound
		}
		s.logger.Error("查询课程方案失败", zap.Error(err))
		return nil, err
	}
	settings := s.plannerSettings(ctx)

	drafts := make([]capacity.Section, 0, len(req.Sections))
	rooms := make(map[string]string, len(req.Sections))
	for _, item := range req.Sections {
		var id capacity.Identity
		switch {
		case item.SectionID != "":
			id = capacity.Persisted{RemoteID: item.SectionID}
		case item.LocalID != "":
			id = capacity.Pending{LocalID: item.LocalID}
		default:
			id = capacity.NewPending()
		}
		drafts = append(drafts, capacity.Section{
			ID:         id,
			Name:       strings.TrimSpace(item.Name),
			TotalCount: item.TotalCount,
			Batches:    make([]capacity.Batch, item.NumBatches),
		})
		rooms[id.Key()] = item.PreferredRoom
	}

	resp := &dto.SectionConfigResponse{Created: make(map[string]string)}
	for _, d := range drafts {
		if !capacity.IsPending(d.ID) {
			resp.Skipped = append(resp.Skipped, d.ID.Key())
		}
	}

	pending := capacity.PendingOnly(drafts)
	if len(pending) == 0 {
		resp.Sections = []dto.SectionResponse{}
		return resp, nil
	}
	if len(pending) > settings.MaxSections {
		return nil, ErrSectionLimitExceeded
	}

	existing, err := s.repo.Section.ExistingNames(ctx, req.DepartmentID, req.SchemeID, req.BatchYearRange)
	if err != nil {
		s.logger.Error("查询已有班级名失败", zap.Error(err))
		return nil, err
	}
	taken := make(map[string]bool, len(existing)+len(pending))
	for _, name := range existing {
		taken[name] = true
	}

	models := make([]*model.Section, 0, len(pending))
	localIDs := make([]string, 0, len(pending))
	for _, d := range pending {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: section name must not be empty", capacity.ErrInvalidArgument)
		}
		if taken[d.Name] {
			return nil, fmt.Errorf("%w: %s", ErrSectionNameExists, d.Name)
		}
		taken[d.Name] = true

		if len(d.Batches) > settings.MaxBatchesPerSection {
			return nil, ErrSectionLimitExceeded
		}
		sec, err := capacity.NewSection(d.ID, d.Name, d.TotalCount, len(d.Batches))
		if err != nil {
			return nil, err
		}
		sec.PreferredRoom = rooms[d.ID.Key()]
		if err := s.checkInvariant(sec); err != nil {
			return nil, err
		}

		m := &model.Section{
			DepartmentID:   req.DepartmentID,
			SchemeID:       req.SchemeID,
			BatchYearRange: req.BatchYearRange,
		}
		m.Version = 1
		m.SetOperator(callerID, true)
		applyCapacitySection(m, sec)

		models = append(models, m)
		localIDs = append(localIDs, d.ID.Key())
	}

	if err := s.repo.Section.CreateWithBatches(ctx, models); err != nil {
		s.logger.Error("批量创建班级失败", zap.String("department_id", req.DepartmentID), zap.Error(err))
		return nil, err
	}

	resp.Sections = make([]dto.SectionResponse, 0, len(models))
	for i, m := range models {
		resp.Created[localIDs[i]] = m.SectionID
		resp.Sections = append(resp.Sections, *toSectionResponse(m))
	}

	deptName := req.DepartmentName
	if deptName == "" {
		deptName = dept.Name
	}
	event := events.SectionsCreatedEvent{
		DepartmentID:   req.DepartmentID,
		DepartmentName: deptName,
		SchemeID:       req.SchemeID,
		BatchYearRange: req.BatchYearRange,
		SectionIDs:     resp.Created,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.QueueSectionsCreated, event); err != nil {
		s.logger.Warn("发布班级创建事件失败", zap.String("department_id", req.DepartmentID), zap.Error(err))
	}

	s.logger.Info("班级配置已提交",
		zap.String("department_id", req.DepartmentID),
		zap.Int("created", len(models)),
		zap.Int("skipped", len(resp.Skipped)),
	)
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *sectionService) List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error) {
	sections, err := s.repo.Section.List(ctx, repository.SectionListFilter{
		DepartmentID:   req.DepartmentID,
		SchemeID:       req.SchemeID,
		BatchYearRange: req.BatchYearRange,
	})
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SectionResponse, 0, len(sections))
	for i := range sections {
		result = append(result, *toSectionResponse(&sections[i]))
	}
	return result, nil
}

func (s *sectionService) Get(ctx context.Context, id string) (*dto.SectionResponse, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSectionResponse(m), nil
}

// ════════════════════════════════════════════════════════════
// 修改
// ════════════════════════════════════════════════════════════

func (s *sectionService) Rename(ctx context.Context, id string, req *dto.RenameSectionRequest, callerID string) (*dto.SectionResponse, error) {
	return s.mutate(ctx, id, req.Version, callerID, func(m *model.Section, sec capacity.Section) (capacity.Section, error) {
		renamed, err := capacity.RenameSection(sec, req.Name)
		if err != nil {
			return sec, err
		}
		if renamed.Name == m.Name {
			return renamed, nil
		}

		names, err := s.repo.Section.ExistingNames(ctx, m.DepartmentID, m.SchemeID, m.BatchYearRange)
		if err != nil {
			s.logger.Error("查询已有班级名失败", zap.Error(err))
			return sec, err
		}
		for _, name := range names {
			if name == renamed.Name {
				return sec, fmt.Errorf("%w: %s", ErrSectionNameExists, name)
			}
		}
		return renamed, nil
	})
}

func (s *sectionService) ResizeBatches(ctx context.Context, id string, req *dto.ResizeBatchesRequest, callerID string) (*dto.SectionResponse, error) {
	if req.NumBatches > s.plannerSettings(ctx).MaxBatchesPerSection {
		return nil, ErrSectionLimitExceeded
	}
	return s.mutate(ctx, id, req.Version, callerID, func(_ *model.Section, sec capacity.Section) (capacity.Section, error) {
		return capacity.ResizeBatches(sec, req.NumBatches)
	})
}

func (s *sectionService) Redistribute(ctx context.Context, id string, req *dto.RedistributeRequest, callerID string) (*dto.SectionResponse, error) {
	return s.mutate(ctx, id, req.Version, callerID, func(_ *model.Section, sec capacity.Section) (capacity.Section, error) {
		return capacity.RedistributeSection(sec, *req.TotalCount)
	})
}

func (s *sectionService) UpdateBatchRoom(ctx context.Context, id string, position int, req *dto.UpdateBatchRoomRequest, callerID string) (*dto.SectionResponse, error) {
	return s.mutate(ctx, id, req.Version, callerID, func(_ *model.Section, sec capacity.Section) (capacity.Section, error) {
		if position < 1 || position > len(sec.Batches) {
			return sec, ErrBatchNotFound
		}
		out := sec.Clone()
		out.Batches[position-1].PreferredRoom = strings.TrimSpace(req.PreferredRoom)
		return out, nil
	})
}

// ════════════════════════════════════════════════════════════
// DistributeDepartment 院系级两层均分
// ════════════════════════════════════════════════════════════

func (s *sectionService) DistributeDepartment(ctx context.Context, departmentID string, req *dto.DistributeDepartmentRequest, callerID string) ([]dto.SectionResponse, error) {
	dept, err := s.getDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	total := dept.TotalStudents
	if req.TotalStudents != nil {
		total = *req.TotalStudents
	}

	sections, err := s.repo.Section.List(ctx, repository.SectionListFilter{
		DepartmentID:   departmentID,
		SchemeID:       req.SchemeID,
		BatchYearRange: req.BatchYearRange,
	})
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, err
	}
	if len(sections) == 0 {
		return nil, ErrNoSectionsToDivide
	}

	totals, err := capacity.DistributeAcrossSections(total, len(sections))
	if err != nil {
		return nil, err
	}

	updated := make([]*model.Section, 0, len(sections))
	for i := range sections {
		m := &sections[i]
		next, err := capacity.RedistributeSection(toCapacitySection(m), totals[i])
		if err != nil {
			return nil, err
		}
		if err := s.checkInvariant(next); err != nil {
			return nil, err
		}
		applyCapacitySection(m, next)
		m.SetOperator(callerID, false)
		updated = append(updated, m)
	}

	if err := s.repo.Section.UpdateManyWithBatches(ctx, updated); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("院系人数重新分配失败", zap.String("department_id", departmentID), zap.Error(err))
		}
		return nil, err
	}

	result := make([]dto.SectionResponse, 0, len(updated))
	for _, m := range updated {
		result = append(result, *toSectionResponse(m))
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *sectionService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Section.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除班级失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// mutate 读取班级 → 纯函数计算 → 校验不变式 → 乐观锁写回
func (s *sectionService) mutate(
	ctx context.Context,
	id string,
	version int,
	callerID string,
	apply func(*model.Section, capacity.Section) (capacity.Section, error),
) (*dto.SectionResponse, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if versionConflict(version, m.Version) {
		return nil, pkgerrors.ErrOptimisticLock
	}

	next, err := apply(m, toCapacitySection(m))
	if err != nil {
		return nil, err
	}
	if err := s.checkInvariant(next); err != nil {
		return nil, err
	}

	applyCapacitySection(m, next)
	m.SetOperator(callerID, false)

	if err := s.repo.Section.UpdateWithBatches(ctx, m); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return toSectionResponse(m), nil
}

// checkInvariant 不变式被破坏时记录错误日志，不做修复
func (s *sectionService) checkInvariant(sec capacity.Section) error {
	if err := sec.Validate(); err != nil {
		s.logger.Error("班级不变式校验失败",
			zap.String("section", sec.Name),
			zap.Int("total", sec.TotalCount),
			zap.Int("sum", sec.Sum()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrSectionInvariant, err)
	}
	return nil
}

func (s *sectionService) get(ctx context.Context, id string) (*model.Section, error) {
	m, err := s.repo.Section.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *sectionService) getDepartment(ctx context.Context, id string) (*model.Department, error) {
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

// plannerSettings 读取失败时使用兜底值
func (s *sectionService) plannerSettings(ctx context.Context) model.PlannerSettings {
	settings, err := s.repo.PlannerSettings.Get(ctx)
	if err != nil {
		s.logger.Warn("读取规划参数失败，使用默认值", zap.Error(err))
		return fallbackPlannerSettings
	}
	return *settings
}

func toCapacitySection(m *model.Section) capacity.Section {
	sec := capacity.Section{
		ID:            capacity.Persisted{RemoteID: m.SectionID},
		Name:          m.Name,
		TotalCount:    m.TotalCount,
		PreferredRoom: m.PreferredRoom,
		Batches:       make([]capacity.Batch, 0, len(m.Batches)),
	}
	for _, b := range m.Batches {
		sec.Batches = append(sec.Batches, capacity.Batch{
			Name:          b.Name,
			Count:         b.Count,
			PreferredRoom: b.PreferredRoom,
		})
	}
	return sec
}

// applyCapacitySection 将计算结果写回模型，分组位置按顺序重新编号。
// 分组只会在末尾追加或截断，同一位置沿用原 BatchID；新追加的位置 BatchID 为空，由存储层分配。
func applyCapacitySection(m *model.Section, sec capacity.Section) {
	m.Name = sec.Name
	m.TotalCount = sec.TotalCount
	m.PreferredRoom = sec.PreferredRoom

	batches := make([]model.Batch, len(sec.Batches))
	for i, b := range sec.Batches {
		batch := model.Batch{SectionID: m.SectionID}
		if i < len(m.Batches) {
			batch = m.Batches[i]
		}
		batch.Position = i + 1
		batch.Name = b.Name
		batch.Count = b.Count
		batch.PreferredRoom = b.PreferredRoom
		batches[i] = batch
	}
	m.Batches = batches
}

func toBatchResponses(batches []capacity.Batch) []dto.BatchResponse {
	out := make([]dto.BatchResponse, 0, len(batches))
	for i, b := range batches {
		out = append(out, dto.BatchResponse{
			Position:      i + 1,
			Name:          b.Name,
			Count:         b.Count,
			PreferredRoom: b.PreferredRoom,
		})
	}
	return out
}

func toSectionResponse(m *model.Section) *dto.SectionResponse {
	resp := &dto.SectionResponse{
		ID:             m.SectionID,
		DepartmentID:   m.DepartmentID,
		SchemeID:       m.SchemeID,
		BatchYearRange: m.BatchYearRange,
		Name:           m.Name,
		TotalCount:     m.TotalCount,
		PreferredRoom:  m.PreferredRoom,
		Batches:        make([]dto.BatchResponse, 0, len(m.Batches)),
		Version:        m.Version,
	}
	if !m.CreatedAt.IsZero() {
		resp.CreatedAt = m.CreatedAt.Format(timeLayout)
		resp.UpdatedAt = m.UpdatedAt.Format(timeLayout)
	}
	for _, b := range m.Batches {
		resp.Batches = append(resp.Batches, dto.BatchResponse{
			ID:            b.BatchID,
			Position:      b.Position,
			Name:          b.Name,
			Count:         b.Count,
			PreferredRoom: b.PreferredRoom,
		})
	}
	return resp
}
