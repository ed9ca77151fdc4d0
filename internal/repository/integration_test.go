//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=schedulizer_test sslmode=disable TimeZone=Asia/Kolkata"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.University{},
		&model.School{},
		&model.Department{},
		&model.Room{},
		&model.Scheme{},
		&model.Section{},
		&model.Batch{},
		&model.PlannerSettings{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建大学/学院/院系/方案基础数据并返回清理函数
func setupTestData(t *testing.T) (dept *model.Department, scheme *model.Scheme, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	uni := &model.University{Name: fmt.Sprintf("测试大学-%d", suffix)}
	if err := testDB.WithContext(ctx).Create(uni).Error; err != nil {
		t.Fatalf("创建大学失败: %v", err)
	}
	school := &model.School{UniversityID: uni.UniversityID, Name: "School of Engineering"}
	if err := testDB.WithContext(ctx).Create(school).Error; err != nil {
		t.Fatalf("创建学院失败: %v", err)
	}
	dept = &model.Department{
		SchoolID:      school.SchoolID,
		Name:          fmt.Sprintf("CSE-%d", suffix),
		TotalStudents: 121,
		IsActive:      true,
	}
	if err := testDB.WithContext(ctx).Omit("School").Create(dept).Error; err != nil {
		t.Fatalf("创建院系失败: %v", err)
	}
	scheme = &model.Scheme{
		UniversityID:   uni.UniversityID,
		Name:           "CBCS",
		BatchYearRange: "2024-2028",
		IsActive:       true,
	}
	if err := testDB.WithContext(ctx).Create(scheme).Error; err != nil {
		t.Fatalf("创建方案失败: %v", err)
	}

	cleanup = func() {
		testDB.Exec("DELETE FROM batches WHERE section_id IN (SELECT section_id FROM sections WHERE department_id = ?)", dept.DepartmentID)
		testDB.Unscoped().Where("department_id = ?", dept.DepartmentID).Delete(&model.Section{})
		testDB.Unscoped().Where("scheme_id = ?", scheme.SchemeID).Delete(&model.Scheme{})
		testDB.Unscoped().Where("department_id = ?", dept.DepartmentID).Delete(&model.Department{})
		testDB.Unscoped().Where("school_id = ?", school.SchoolID).Delete(&model.School{})
		testDB.Unscoped().Where("university_id = ?", uni.UniversityID).Delete(&model.University{})
	}
	return
}

func newSection(dept *model.Department, scheme *model.Scheme, name string, counts ...int) *model.Section {
	s := &model.Section{
		DepartmentID:   dept.DepartmentID,
		SchemeID:       scheme.SchemeID,
		BatchYearRange: scheme.BatchYearRange,
		Name:           name,
	}
	for i, c := range counts {
		s.Batches = append(s.Batches, model.Batch{
			Position: i + 1,
			Name:     fmt.Sprintf("%s%d", name, i+1),
			Count:    c,
		})
		s.TotalCount += c
	}
	return s
}

// ═══════════════════════════════════════════════════════════
// Test: Section + Batches
// ═══════════════════════════════════════════════════════════

func TestSection_CreateWithBatches(t *testing.T) {
	dept, scheme, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	a := newSection(dept, scheme, "A", 16, 15)
	b := newSection(dept, scheme, "B", 15, 15)
	if err := repo.Section.CreateWithBatches(ctx, []*model.Section{a, b}); err != nil {
		t.Fatalf("批量创建班级失败: %v", err)
	}
	if a.SectionID == "" || b.SectionID == "" {
		t.Fatal("期望创建后回填 SectionID")
	}

	found, err := repo.Section.GetByID(ctx, a.SectionID)
	if err != nil {
		t.Fatalf("查询班级失败: %v", err)
	}
	if len(found.Batches) != 2 || found.Batches[0].Name != "A1" || found.Batches[1].Count != 15 {
		t.Errorf("分组不符合预期: %+v", found.Batches)
	}

	names, err := repo.Section.ExistingNames(ctx, dept.DepartmentID, scheme.SchemeID, scheme.BatchYearRange)
	if err != nil {
		t.Fatalf("ExistingNames 失败: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("期望 2 个已有班级名, 得到 %v", names)
	}
}

func TestSection_CreateRollbackOnDuplicateName(t *testing.T) {
	dept, scheme, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 第二个 A 违反唯一索引，整个事务应回滚
	err := repo.Section.CreateWithBatches(ctx, []*model.Section{
		newSection(dept, scheme, "A", 10),
		newSection(dept, scheme, "A", 10),
	})
	if err == nil {
		t.Fatal("期望唯一约束冲突")
	}

	list, err := repo.Section.List(ctx, repository.SectionListFilter{DepartmentID: dept.DepartmentID})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("期望回滚后无班级, 得到 %d 个", len(list))
	}
}

func TestSection_UpdateWithBatches_ReplacesBatches(t *testing.T) {
	dept, scheme, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newSection(dept, scheme, "B", 20)
	if err := repo.Section.CreateWithBatches(ctx, []*model.Section{s}); err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	loaded, _ := repo.Section.GetByID(ctx, s.SectionID)
	loaded.Batches = []model.Batch{
		{Position: 1, Name: "B1", Count: 7},
		{Position: 2, Name: "B2", Count: 7},
		{Position: 3, Name: "B3", Count: 6},
	}
	if err := repo.Section.UpdateWithBatches(ctx, loaded); err != nil {
		t.Fatalf("更新班级失败: %v", err)
	}
	if loaded.Version != 2 {
		t.Errorf("期望 version=2, 得到 %d", loaded.Version)
	}

	found, _ := repo.Section.GetByID(ctx, s.SectionID)
	if len(found.Batches) != 3 {
		t.Fatalf("期望 3 个分组, 得到 %d", len(found.Batches))
	}
	for i, want := range []int{7, 7, 6} {
		if found.Batches[i].Count != want {
			t.Errorf("分组 %d: 期望 %d, 得到 %d", i, want, found.Batches[i].Count)
		}
	}
}

func TestSection_UpdateWithBatches_KeepsBatchIDs(t *testing.T) {
	dept, scheme, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newSection(dept, scheme, "A", 10, 10, 10)
	if err := repo.Section.CreateWithBatches(ctx, []*model.Section{s}); err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}
	loaded, _ := repo.Section.GetByID(ctx, s.SectionID)
	ids := []string{loaded.Batches[0].BatchID, loaded.Batches[1].BatchID}

	// 截断第三个分组、调整人数并追加一个新分组
	loaded.Name = "C"
	loaded.TotalCount = 31
	loaded.Batches = []model.Batch{
		{BatchID: ids[0], Position: 1, Name: "C1", Count: 11},
		{BatchID: ids[1], Position: 2, Name: "C2", Count: 10},
		{Position: 3, Name: "C3", Count: 10},
	}
	if err := repo.Section.UpdateWithBatches(ctx, loaded); err != nil {
		t.Fatalf("更新班级失败: %v", err)
	}
	if loaded.Batches[2].BatchID == "" {
		t.Error("期望新分组回填 BatchID")
	}

	found, _ := repo.Section.GetByID(ctx, s.SectionID)
	if len(found.Batches) != 3 {
		t.Fatalf("期望 3 个分组, 得到 %d", len(found.Batches))
	}
	for i, id := range ids {
		if found.Batches[i].BatchID != id {
			t.Errorf("分组 %d 标识变化: 期望 %s, 得到 %s", i+1, id, found.Batches[i].BatchID)
		}
	}
	if found.Batches[0].Name != "C1" || found.Batches[0].Count != 11 {
		t.Errorf("分组 1 未原地更新: %+v", found.Batches[0])
	}
	if found.Batches[2].BatchID == s.Batches[2].BatchID {
		t.Error("被截断的分组不应复用")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Section_ConflictDetected(t *testing.T) {
	dept, scheme, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newSection(dept, scheme, "C", 10, 10)
	if err := repo.Section.CreateWithBatches(ctx, []*model.Section{s}); err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	// 模拟并发：获取两份副本
	copy1, _ := repo.Section.GetByID(ctx, s.SectionID)
	copy2, _ := repo.Section.GetByID(ctx, s.SectionID)

	copy1.Name = "D"
	copy1.Batches[0].Name, copy1.Batches[1].Name = "D1", "D2"
	if err := repo.Section.UpdateWithBatches(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	copy2.TotalCount = 30
	err := repo.Section.UpdateWithBatches(ctx, copy2)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}

	// 冲突时分组保持第一次更新的结果
	found, _ := repo.Section.GetByID(ctx, s.SectionID)
	if found.Name != "D" || found.Batches[0].Name != "D1" {
		t.Errorf("冲突后数据被覆盖: %+v", found)
	}
}

func TestOptimisticLock_Room_Availability(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	uni := &model.University{Name: fmt.Sprintf("测试大学-%d", time.Now().UnixNano())}
	if err := repo.University.Create(ctx, uni); err != nil {
		t.Fatalf("创建大学失败: %v", err)
	}
	defer testDB.Unscoped().Where("university_id = ?", uni.UniversityID).Delete(&model.University{})

	room := &model.Room{
		UniversityID: uni.UniversityID,
		Name:         "LT-101",
		Capacity:     60,
		Availability: model.IntArray(availability.Grid{}.Slice()),
	}
	if err := repo.Room.Create(ctx, room); err != nil {
		t.Fatalf("创建教室失败: %v", err)
	}
	defer testDB.Unscoped().Where("room_id = ?", room.RoomID).Delete(&model.Room{})

	copy1, _ := repo.Room.GetByID(ctx, room.RoomID)
	copy2, _ := repo.Room.GetByID(ctx, room.RoomID)

	blocked, _ := availability.BulkSet(availability.ModeAllBlocked)
	copy1.Availability = model.IntArray(blocked.Slice())
	if err := repo.Room.UpdateAvailability(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	err := repo.Room.UpdateAvailability(ctx, copy2)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}

	found, _ := repo.Room.GetByID(ctx, room.RoomID)
	if len(found.Availability) != availability.TotalSlots {
		t.Fatalf("期望 %d 个时段, 得到 %d", availability.TotalSlots, len(found.Availability))
	}
	grid, err := found.AvailabilityGrid()
	if err != nil {
		t.Fatalf("可用性数据应合法: %v", err)
	}
	if grid != blocked {
		t.Error("期望全部占用")
	}
}

func TestRoom_RejectsNonBinaryAvailability(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	uni := &model.University{Name: fmt.Sprintf("测试大学-%d", time.Now().UnixNano())}
	if err := repo.University.Create(ctx, uni); err != nil {
		t.Fatalf("创建大学失败: %v", err)
	}
	defer testDB.Unscoped().Where("university_id = ?", uni.UniversityID).Delete(&model.University{})

	values := availability.Grid{}.Slice()
	values[3] = 2
	room := &model.Room{UniversityID: uni.UniversityID, Name: "LT-666", Availability: model.IntArray(values)}
	if err := repo.Room.Create(ctx, room); err == nil {
		testDB.Unscoped().Where("room_id = ?", room.RoomID).Delete(&model.Room{})
		t.Error("期望数据库拒绝 0/1 以外的可用性取值")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestSection_SoftDelete(t *testing.T) {
	dept, scheme, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	s := newSection(dept, scheme, "E", 5)
	if err := repo.Section.CreateWithBatches(ctx, []*model.Section{s}); err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	if err := repo.Section.Delete(ctx, s.SectionID, ""); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	_, err := repo.Section.GetByID(ctx, s.SectionID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望软删除后查不到, 得到: %v", err)
	}

	var count int64
	testDB.Unscoped().Model(&model.Section{}).Where("section_id = ?", s.SectionID).Count(&count)
	if count != 1 {
		t.Errorf("期望软删除保留记录, 得到 count=%d", count)
	}

	// 删除后同名班级可以重新创建
	again := newSection(dept, scheme, "E", 5)
	if err := repo.Section.CreateWithBatches(ctx, []*model.Section{again}); err != nil {
		t.Errorf("软删除后重新创建同名班级失败: %v", err)
	}
}

func TestPlannerSettings_GetUpdate(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// AutoMigrate 不写入默认行
	testDB.Exec("INSERT INTO planner_settings (singleton) VALUES (TRUE) ON CONFLICT DO NOTHING")

	settings, err := repo.PlannerSettings.Get(ctx)
	if err != nil {
		t.Fatalf("读取规划参数失败: %v", err)
	}
	original := *settings
	defer repo.PlannerSettings.Update(ctx, &original)

	settings.DefaultBatchesPerSection = 3
	if err := repo.PlannerSettings.Update(ctx, settings); err != nil {
		t.Fatalf("更新规划参数失败: %v", err)
	}

	found, _ := repo.PlannerSettings.Get(ctx)
	if found.DefaultBatchesPerSection != 3 {
		t.Errorf("期望 3, 得到 %d", found.DefaultBatchesPerSection)
	}
}
