package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
)

// SchemeRepository 课程方案数据访问接口
type SchemeRepository interface {
	Create(ctx context.Context, scheme *model.Scheme) error
	GetByID(ctx context.Context, id string) (*model.Scheme, error)
	List(ctx context.Context, universityID string, includeInactive bool) ([]model.Scheme, error)
	Update(ctx context.Context, scheme *model.Scheme) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type schemeRepo struct {
	db *gorm.DB
}

// NewSchemeRepo 创建 SchemeRepository 实例
func NewSchemeRepo(db *gorm.DB) SchemeRepository {
	return &schemeRepo{db: db}
}

func (r *schemeRepo) Create(ctx context.Context, scheme *model.Scheme) error {
	return r.db.WithContext(ctx).Create(scheme).Error
}

func (r *schemeRepo) GetByID(ctx context.Context, id string) (*model.Scheme, error) {
	var scheme model.Scheme
	err := r.db.WithContext(ctx).
		Where("scheme_id = ?", id).
		First(&scheme).Error
	if err != nil {
		return nil, err
	}
	return &scheme, nil
}

func (r *schemeRepo) List(ctx context.Context, universityID string, includeInactive bool) ([]model.Scheme, error) {
	var schemes []model.Scheme
	db := r.db.WithContext(ctx)
	if universityID != "" {
		db = db.Where("university_id = ?", universityID)
	}
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("batch_year_range DESC, name ASC").Find(&schemes).Error
	return schemes, err
}

func (r *schemeRepo) Update(ctx context.Context, scheme *model.Scheme) error {
	return r.db.WithContext(ctx).Save(scheme).Error
}

func (r *schemeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Scheme{}, "scheme_id", id, deletedBy)
}
