package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/events"
)

// ── 教室模块业务错误 ──

var (
	ErrRoomNotFound        = errors.New("教室不存在")
	ErrInvalidAvailability = errors.New("可用性数据不合法")
	ErrCorruptAvailability = errors.New("教室已存储的可用性数据损坏")
)

// RoomService 教室与可用性业务接口
type RoomService interface {
	Create(ctx context.Context, req *dto.CreateRoomRequest, callerID string) (*dto.RoomResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RoomResponse, error)
	List(ctx context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoomRequest, callerID string) (*dto.RoomResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	// GetAvailability 返回矩阵、计数与可读摘要
	GetAvailability(ctx context.Context, id string) (*dto.AvailabilityResponse, error)
	// ReplaceAvailability 整体替换 72 个时段
	ReplaceAvailability(ctx context.Context, id string, req *dto.ReplaceAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error)
	// ToggleSlot 切换或设置单个时段
	ToggleSlot(ctx context.Context, id string, req *dto.ToggleSlotRequest, callerID string) (*dto.AvailabilityResponse, error)
	// BulkSetAvailability 一键全部可用 / 全部占用
	BulkSetAvailability(ctx context.Context, id string, req *dto.BulkAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error)
	// FindAvailable 查询指定时段可用的教室
	FindAvailable(ctx context.Context, req *dto.AvailableRoomsRequest) (*dto.AvailableRoomsResponse, error)
}

type roomService struct {
	repo      *repository.Repository
	summaries *gocache.Cache
	publisher events.Publisher
	logger    *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(repo *repository.Repository, summaries *gocache.Cache, publisher events.Publisher, logger *zap.Logger) RoomService {
	return &roomService{repo: repo, summaries: summaries, publisher: publisher, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *roomService) Create(ctx context.Context, req *dto.CreateRoomRequest, callerID string) (*dto.RoomResponse, error) {
	grid, err := availability.FromSlice(req.Availability)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
	}

	if _, err := s.repo.University.GetByID(ctx, req.UniversityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniversityNotFound
		}
		s.logger.Error("查询大学失败", zap.Error(err))
		return nil, err
	}

	room := &model.Room{
		UniversityID:    req.UniversityID,
		Name:            req.Name,
		RoomNumber:      req.RoomNumber,
		Capacity:        req.Capacity,
		IsLab:           req.IsLab,
		AcademicBlockID: req.AcademicBlockID,
		Availability:    model.IntArray(grid.Slice()),
	}
	room.Version = 1
	room.SetOperator(callerID, true)

	if err := s.repo.Room.Create(ctx, room); err != nil {
		s.logger.Error("创建教室失败", zap.Error(err))
		return nil, err
	}

	return toRoomResponse(room), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *roomService) GetByID(ctx context.Context, id string) (*dto.RoomResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRoomResponse(room), nil
}

// ────────────────────── List ──────────────────────

func (s *roomService) List(ctx context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.Room.List(ctx, repository.RoomListFilter{
		UniversityID:    req.UniversityID,
		AcademicBlockID: req.AcademicBlockID,
		IsLab:           req.IsLab,
		MinCapacity:     req.MinCapacity,
	})
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, *toRoomResponse(&rooms[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *roomService) Update(ctx context.Context, id string, req *dto.UpdateRoomRequest, callerID string) (*dto.RoomResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if versionConflict(req.Version, room.Version) {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.RoomNumber != nil {
		room.RoomNumber = *req.RoomNumber
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.IsLab != nil {
		room.IsLab = *req.IsLab
	}
	if req.AcademicBlockID != nil {
		room.AcademicBlockID = *req.AcademicBlockID
	}
	room.SetOperator(callerID, false)

	if err := s.repo.Room.Update(ctx, room); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新教室失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return toRoomResponse(room), nil
}

// ────────────────────── Delete ──────────────────────

func (s *roomService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Room.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除教室失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 可用性
// ════════════════════════════════════════════════════════════

func (s *roomService) GetAvailability(ctx context.Context, id string) (*dto.AvailabilityResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toAvailabilityResponse(room)
}

func (s *roomService) ReplaceAvailability(ctx context.Context, id string, req *dto.ReplaceAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error) {
	if len(req.Availability) != availability.TotalSlots {
		return nil, fmt.Errorf("%w: expected %d slots, got %d", ErrInvalidAvailability, availability.TotalSlots, len(req.Availability))
	}
	next, err := availability.FromSlice(req.Availability)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAvailability, err)
	}

	return s.mutateAvailability(ctx, id, req.Version, callerID, func(*model.Room) (availability.Grid, error) {
		return next, nil
	})
}

func (s *roomService) ToggleSlot(ctx context.Context, id string, req *dto.ToggleSlotRequest, callerID string) (*dto.AvailabilityResponse, error) {
	day, hour := *req.Day, *req.Hour
	return s.mutateAvailability(ctx, id, req.Version, callerID, func(room *model.Room) (availability.Grid, error) {
		g, err := s.grid(room)
		if err != nil {
			return g, err
		}
		if req.Available != nil {
			return availability.Set(g, day, hour, *req.Available)
		}
		return availability.Toggle(g, day, hour)
	})
}

func (s *roomService) BulkSetAvailability(ctx context.Context, id string, req *dto.BulkAvailabilityRequest, callerID string) (*dto.AvailabilityResponse, error) {
	next, err := availability.BulkSet(availability.Mode(req.Mode))
	if err != nil {
		return nil, err
	}
	return s.mutateAvailability(ctx, id, req.Version, callerID, func(*model.Room) (availability.Grid, error) {
		return next, nil
	})
}

// mutateAvailability 读取 → 计算新网格 → 乐观锁写回 → 发布变更事件
// 整体替换与一键设置不读取旧网格，可用于覆盖已损坏的数据
func (s *roomService) mutateAvailability(
	ctx context.Context,
	id string,
	version int,
	callerID string,
	apply func(*model.Room) (availability.Grid, error),
) (*dto.AvailabilityResponse, error) {
	room, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if versionConflict(version, room.Version) {
		return nil, pkgerrors.ErrOptimisticLock
	}

	next, err := apply(room)
	if err != nil {
		return nil, err
	}

	room.Availability = model.IntArray(next.Slice())
	room.SetOperator(callerID, false)

	if err := s.repo.Room.UpdateAvailability(ctx, room); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新教室可用性失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp, err := s.toAvailabilityResponse(room)
	if err != nil {
		return nil, err
	}
	s.publishAvailabilityChanged(ctx, resp)
	return resp, nil
}

func (s *roomService) publishAvailabilityChanged(ctx context.Context, resp *dto.AvailabilityResponse) {
	event := events.AvailabilityChangedEvent{
		RoomID:         resp.RoomID,
		AvailableSlots: resp.AvailableSlots,
		BlockedSlots:   resp.BlockedSlots,
		Summary:        resp.Summary,
		ChangedAt:      time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.QueueAvailabilityChanged, event); err != nil {
		s.logger.Warn("发布可用性变更事件失败", zap.String("room_id", resp.RoomID), zap.Error(err))
	}
}

// ────────────────────── FindAvailable ──────────────────────

func (s *roomService) FindAvailable(ctx context.Context, req *dto.AvailableRoomsRequest) (*dto.AvailableRoomsResponse, error) {
	day := *req.Day
	hour, err := availability.SlotToHour(*req.TimeSlot)
	if err != nil {
		return nil, err
	}
	index, err := availability.IndexOf(day, hour)
	if err != nil {
		return nil, err
	}

	rooms, err := s.repo.Room.List(ctx, repository.RoomListFilter{UniversityID: req.UniversityID})
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	filter := availability.Filter{MinCapacity: req.Capacity, IsLab: req.IsLab}
	if req.AcademicBlockID != "" {
		filter.AcademicBlockID = &req.AcademicBlockID
	}

	matched, invalid, err := availability.FilterByAvailability(rooms, day, hour, filter)
	if err != nil {
		return nil, err
	}
	for i := range invalid {
		_, gridErr := invalid[i].AvailabilityGrid()
		s.logger.Error("教室可用性数据损坏，已从查询结果中排除",
			zap.String("room_id", invalid[i].RoomID), zap.Error(gridErr))
	}

	resp := &dto.AvailableRoomsResponse{
		Day:       day,
		DayName:   availability.DayNames[day],
		Hour:      hour,
		SlotIndex: index,
		Rooms:     make([]dto.RoomResponse, 0, len(matched)),
	}
	for i := range matched {
		resp.Rooms = append(resp.Rooms, *toRoomResponse(&matched[i]))
	}
	return resp, nil
}

// ── 内部辅助方法 ──

func (s *roomService) get(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.repo.Room.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return room, nil
}

// summary 按 (教室, 版本) 缓存摘要；版本变化后旧条目自然过期
func (s *roomService) summary(room *model.Room, grid availability.Grid) string {
	key := fmt.Sprintf("%s:%d", room.RoomID, room.Version)
	if v, ok := s.summaries.Get(key); ok {
		return v.(string)
	}
	text := availability.Summarize(grid)
	s.summaries.SetDefault(key, text)
	return text
}

// grid 解析教室网格，损坏数据记录 error 日志后返回 ErrCorruptAvailability
func (s *roomService) grid(room *model.Room) (availability.Grid, error) {
	g, err := room.AvailabilityGrid()
	if err != nil {
		s.logger.Error("教室可用性数据损坏", zap.String("room_id", room.RoomID), zap.Error(err))
		return g, fmt.Errorf("%w: %v", ErrCorruptAvailability, err)
	}
	return g, nil
}

func (s *roomService) toAvailabilityResponse(room *model.Room) (*dto.AvailabilityResponse, error) {
	grid, err := s.grid(room)
	if err != nil {
		return nil, err
	}
	available, blocked := availability.Counts(grid)
	return &dto.AvailabilityResponse{
		RoomID:         room.RoomID,
		RoomName:       room.Name,
		Availability:   grid.Slice(),
		Matrix:         availability.ToMatrix(grid),
		AvailableSlots: available,
		BlockedSlots:   blocked,
		Summary:        s.summary(room, grid),
		Version:        room.Version,
	}, nil
}

// toRoomResponse 网格损坏时原样返回存储值，不做修正
func toRoomResponse(room *model.Room) *dto.RoomResponse {
	values := []int(room.Availability)
	if g, err := room.AvailabilityGrid(); err == nil {
		values = g.Slice()
	}
	return &dto.RoomResponse{
		ID:              room.RoomID,
		UniversityID:    room.UniversityID,
		Name:            room.Name,
		RoomNumber:      room.RoomNumber,
		Capacity:        room.Capacity,
		IsLab:           room.IsLab,
		AcademicBlockID: room.AcademicBlockID,
		Availability:    values,
		Version:         room.Version,
		CreatedAt:       room.CreatedAt.Format(timeLayout),
		UpdatedAt:       room.UpdatedAt.Format(timeLayout),
	}
}
