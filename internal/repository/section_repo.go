package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
)

// SectionListFilter 班级列表查询条件
type SectionListFilter struct {
	DepartmentID   string
	SchemeID       string
	BatchYearRange string
}

// SectionRepository 班级与分组数据访问接口
type SectionRepository interface {
	// CreateWithBatches 在同一事务中创建多个班级及其分组
	CreateWithBatches(ctx context.Context, sections []*model.Section) error
	GetByID(ctx context.Context, id string) (*model.Section, error)
	List(ctx context.Context, filter SectionListFilter) ([]model.Section, error)
	// ExistingNames 同一院系/方案/届别下已存在的班级名
	ExistingNames(ctx context.Context, departmentID, schemeID, batchYearRange string) ([]string, error)
	// UpdateWithBatches 乐观锁更新班级并同步其分组，已有分组保留 BatchID
	UpdateWithBatches(ctx context.Context, section *model.Section) error
	// UpdateManyWithBatches 同一事务中更新多个班级，任一版本冲突则整体回滚
	UpdateManyWithBatches(ctx context.Context, sections []*model.Section) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) CreateWithBatches(ctx context.Context, sections []*model.Section) error {
	if len(sections) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range sections {
			batches := s.Batches
			s.Batches = nil
			if err := tx.Create(s).Error; err != nil {
				s.Batches = batches
				return err
			}
			for i := range batches {
				batches[i].SectionID = s.SectionID
			}
			if len(batches) > 0 {
				if err := tx.Create(&batches).Error; err != nil {
					s.Batches = batches
					return err
				}
			}
			s.Batches = batches
		}
		return nil
	})
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) List(ctx context.Context, filter SectionListFilter) ([]model.Section, error) {
	var sections []model.Section
	db := r.db.WithContext(ctx).
		Preload("Batches", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if filter.DepartmentID != "" {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.SchemeID != "" {
		db = db.Where("scheme_id = ?", filter.SchemeID)
	}
	if filter.BatchYearRange != "" {
		db = db.Where("batch_year_range = ?", filter.BatchYearRange)
	}

	// 按名称长度再按名称排序，保证 Z 之后是 AA
	err := db.Order("LENGTH(name) ASC, name ASC").Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) ExistingNames(ctx context.Context, departmentID, schemeID, batchYearRange string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Section{}).
		Where("department_id = ? AND scheme_id = ? AND batch_year_range = ?", departmentID, schemeID, batchYearRange).
		Pluck("name", &names).Error
	return names, err
}

func (r *sectionRepo) UpdateWithBatches(ctx context.Context, section *model.Section) error {
	return r.UpdateManyWithBatches(ctx, []*model.Section{section})
}

func (r *sectionRepo) UpdateManyWithBatches(ctx context.Context, sections []*model.Section) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range sections {
			if err := replaceSection(tx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, s := range sections {
		s.Version++
	}
	return nil
}

// replaceSection 版本校验后更新班级行，再按 BatchID 同步分组：
// 保留的分组原地更新，新追加的分组插入，不再出现的分组硬删除
func replaceSection(tx *gorm.DB, s *model.Section) error {
	result := tx.Model(&model.Section{}).
		Where("section_id = ? AND version = ?", s.SectionID, s.Version).
		Updates(map[string]interface{}{
			"name":           s.Name,
			"total_count":    s.TotalCount,
			"preferred_room": s.PreferredRoom,
			"updated_by":     s.UpdatedBy,
			"updated_at":     gorm.Expr("NOW()"),
			"version":        s.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}

	kept := make([]string, 0, len(s.Batches))
	for _, b := range s.Batches {
		if b.BatchID != "" {
			kept = append(kept, b.BatchID)
		}
	}

	// 先删除被截断的分组，腾出 (section_id, position) 唯一键
	del := tx.Unscoped().Where("section_id = ?", s.SectionID)
	if len(kept) > 0 {
		del = del.Where("batch_id NOT IN ?", kept)
	}
	if err := del.Delete(&model.Batch{}).Error; err != nil {
		return err
	}

	var added []*model.Batch
	for i := range s.Batches {
		b := &s.Batches[i]
		b.SectionID = s.SectionID
		if b.BatchID == "" {
			added = append(added, b)
			continue
		}
		res := tx.Model(&model.Batch{}).
			Where("batch_id = ? AND section_id = ?", b.BatchID, s.SectionID).
			Updates(map[string]interface{}{
				"position":       b.Position,
				"name":           b.Name,
				"count":          b.Count,
				"preferred_room": b.PreferredRoom,
				"updated_by":     s.UpdatedBy,
				"updated_at":     gorm.Expr("NOW()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("batch %s not found in section %s: %w", b.BatchID, s.SectionID, gorm.ErrRecordNotFound)
		}
	}
	if len(added) == 0 {
		return nil
	}
	return tx.Create(added).Error
}

// Delete 软删除班级；分组随班级一并硬删除
func (r *sectionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("section_id = ?", id).
			Delete(&model.Batch{}).Error; err != nil {
			return err
		}
		return softDelete(ctx, tx, &model.Section{}, "section_id", id, deletedBy)
	})
}
