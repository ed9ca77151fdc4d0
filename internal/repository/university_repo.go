package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
)

// UniversityRepository 大学数据访问接口
type UniversityRepository interface {
	Create(ctx context.Context, u *model.University) error
	GetByID(ctx context.Context, id string) (*model.University, error)
	List(ctx context.Context) ([]model.University, error)
	Update(ctx context.Context, u *model.University) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type universityRepo struct {
	db *gorm.DB
}

// NewUniversityRepo 创建 UniversityRepository 实例
func NewUniversityRepo(db *gorm.DB) UniversityRepository {
	return &universityRepo{db: db}
}

func (r *universityRepo) Create(ctx context.Context, u *model.University) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *universityRepo) GetByID(ctx context.Context, id string) (*model.University, error) {
	var u model.University
	if err := r.db.WithContext(ctx).Where("university_id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *universityRepo) List(ctx context.Context) ([]model.University, error) {
	var list []model.University
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *universityRepo) Update(ctx context.Context, u *model.University) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *universityRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.University{}, "university_id", id, deletedBy)
}

// ── School ──

// SchoolRepository 学院数据访问接口
type SchoolRepository interface {
	Create(ctx context.Context, s *model.School) error
	GetByID(ctx context.Context, id string) (*model.School, error)
	ListByUniversity(ctx context.Context, universityID string) ([]model.School, error)
	Update(ctx context.Context, s *model.School) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type schoolRepo struct {
	db *gorm.DB
}

// NewSchoolRepo 创建 SchoolRepository 实例
func NewSchoolRepo(db *gorm.DB) SchoolRepository {
	return &schoolRepo{db: db}
}

func (r *schoolRepo) Create(ctx context.Context, s *model.School) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *schoolRepo) GetByID(ctx context.Context, id string) (*model.School, error) {
	var s model.School
	err := r.db.WithContext(ctx).
		Preload("University").
		Where("school_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *schoolRepo) ListByUniversity(ctx context.Context, universityID string) ([]model.School, error) {
	var list []model.School
	db := r.db.WithContext(ctx)
	if universityID != "" {
		db = db.Where("university_id = ?", universityID)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *schoolRepo) Update(ctx context.Context, s *model.School) error {
	return r.db.WithContext(ctx).Omit("University").Save(s).Error
}

func (r *schoolRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.School{}, "school_id", id, deletedBy)
}

// softDelete 软删除并记录删除人；deletedBy 为空时只写 deleted_at
func softDelete(ctx context.Context, db *gorm.DB, m interface{}, pk, id, deletedBy string) error {
	updates := map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
	}
	if deletedBy != "" {
		updates["deleted_by"] = deletedBy
	}
	return db.WithContext(ctx).
		Model(m).
		Where(pk+" = ?", id).
		Updates(updates).Error
}
