package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
)

// DepartmentRepository 院系数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByName(ctx context.Context, schoolID, name string) (*model.Department, error)
	List(ctx context.Context, schoolID string, includeInactive bool) ([]model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountSections(ctx context.Context, departmentID string) (int64, error)
}

// departmentRepo DepartmentRepository 的 GORM 实现
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Omit("School").Create(dept).Error
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Preload("School").
		Where("department_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) GetByName(ctx context.Context, schoolID, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND name = ?", schoolID, name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) List(ctx context.Context, schoolID string, includeInactive bool) ([]model.Department, error) {
	var depts []model.Department
	db := r.db.WithContext(ctx)
	if schoolID != "" {
		db = db.Where("school_id = ?", schoolID)
	}
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&depts).Error
	return depts, err
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *departmentRepo) Update(ctx context.Context, dept *model.Department) error {
	oldVersion := dept.Version
	result := r.db.WithContext(ctx).
		Model(&model.Department{}).
		Where("department_id = ? AND version = ?", dept.DepartmentID, oldVersion).
		Updates(map[string]interface{}{
			"name":           dept.Name,
			"code":           dept.Code,
			"total_students": dept.TotalStudents,
			"is_active":      dept.IsActive,
			"updated_by":     dept.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	dept.Version = oldVersion + 1
	return nil
}

func (r *departmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Department{}, "department_id", id, deletedBy)
}

func (r *departmentRepo) CountSections(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Section{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}
