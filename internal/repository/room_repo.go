package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
)

// RoomListFilter 教室列表查询条件，零值表示不过滤
type RoomListFilter struct {
	UniversityID    string
	AcademicBlockID string
	IsLab           *bool
	MinCapacity     int
}

// RoomRepository 教室数据访问接口
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	List(ctx context.Context, filter RoomListFilter) ([]model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	UpdateAvailability(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) List(ctx context.Context, filter RoomListFilter) ([]model.Room, error) {
	var rooms []model.Room
	db := r.db.WithContext(ctx)

	if filter.UniversityID != "" {
		db = db.Where("university_id = ?", filter.UniversityID)
	}
	if filter.AcademicBlockID != "" {
		db = db.Where("academic_block_id = ?", filter.AcademicBlockID)
	}
	if filter.IsLab != nil {
		db = db.Where("is_lab = ?", *filter.IsLab)
	}
	if filter.MinCapacity > 0 {
		db = db.Where("capacity >= ?", filter.MinCapacity)
	}

	err := db.Order("name ASC").Find(&rooms).Error
	return rooms, err
}

// Update 更新基础信息（不含可用性），乐观锁
func (r *roomRepo) Update(ctx context.Context, room *model.Room) error {
	return r.updateVersioned(ctx, room, map[string]interface{}{
		"name":              room.Name,
		"room_number":       room.RoomNumber,
		"capacity":          room.Capacity,
		"is_lab":            room.IsLab,
		"academic_block_id": room.AcademicBlockID,
		"updated_by":        room.UpdatedBy,
	})
}

// UpdateAvailability 仅更新可用性数组，乐观锁
func (r *roomRepo) UpdateAvailability(ctx context.Context, room *model.Room) error {
	return r.updateVersioned(ctx, room, map[string]interface{}{
		"availability": room.Availability,
		"updated_by":   room.UpdatedBy,
	})
}

func (r *roomRepo) updateVersioned(ctx context.Context, room *model.Room, updates map[string]interface{}) error {
	oldVersion := room.Version
	updates["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.Room{}).
		Where("room_id = ? AND version = ?", room.RoomID, oldVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	room.Version = oldVersion + 1
	return nil
}

func (r *roomRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Room{}, "room_id", id, deletedBy)
}
