package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/capacity"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/events"
)

// ── 测试辅助 ──

const testYears = "2024-2028"

func seedDepartmentAndScheme(m *mockRepos, total int) {
	m.dept.depts["dept-1"] = &model.Department{DepartmentID: "dept-1", SchoolID: "school-1", Name: "CSE", TotalStudents: total, IsActive: true}
	m.scheme.schemes["scheme-1"] = &model.Scheme{SchemeID: "scheme-1", UniversityID: "uni-1", Name: "CBCS", BatchYearRange: testYears, IsActive: true}
}

func seedSection(m *mockRepos, id, name string, counts ...int) {
	s := &model.Section{
		SectionID:      id,
		DepartmentID:   "dept-1",
		SchemeID:       "scheme-1",
		BatchYearRange: testYears,
		Name:           name,
	}
	s.Version = 1
	for i, c := range counts {
		s.Batches = append(s.Batches, model.Batch{
			BatchID:   fmt.Sprintf("%s-b%d", id, i+1),
			SectionID: id,
			Position:  i + 1,
			Name:      capacity.BatchName(name, i+1),
			Count:     c,
		})
		s.TotalCount += c
	}
	m.section.sections[id] = s
}

func batchNamesOf(resp *dto.SectionResponse) []string {
	out := make([]string, len(resp.Batches))
	for i, b := range resp.Batches {
		out[i] = b.Name
	}
	return out
}

func batchCountsOf(resp *dto.SectionResponse) []int {
	out := make([]int, len(resp.Batches))
	for i, b := range resp.Batches {
		out[i] = b.Count
	}
	return out
}

func batchIDsOf(resp *dto.SectionResponse) []string {
	out := make([]string, len(resp.Batches))
	for i, b := range resp.Batches {
		out[i] = b.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ── Plan 测试 ──

func TestSectionService_Plan_TwoLevelSplit(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 121)

	result, err := svc.Section.Plan(context.Background(), &dto.PlanSectionsRequest{
		DepartmentID: "dept-1",
		SectionCount: 4,
	})
	if err != nil {
		t.Fatalf("Plan 应成功: %v", err)
	}
	if result.TotalStudents != 121 || len(result.Sections) != 4 {
		t.Fatalf("预览不符合预期: %+v", result)
	}

	wantTotals := []int{31, 30, 30, 30}
	for i, sec := range result.Sections {
		if sec.TotalCount != wantTotals[i] {
			t.Errorf("班级%d 期望%d人，实际=%d", i, wantTotals[i], sec.TotalCount)
		}
		// 默认每班 2 个分组
		if sec.NumBatches != 2 || len(sec.Batches) != 2 {
			t.Errorf("班级%d 期望2个分组，实际=%d", i, sec.NumBatches)
		}
		if sec.LocalID == "" {
			t.Errorf("班级%d 缺少 local_id", i)
		}
	}
	if result.Sections[0].Name != "A" || result.Sections[3].Name != "D" {
		t.Errorf("班级命名不正确: %s..%s", result.Sections[0].Name, result.Sections[3].Name)
	}
	if result.Sections[0].Batches[0].Count != 16 || result.Sections[0].Batches[1].Count != 15 {
		t.Errorf("A 班分组人数不正确: %+v", result.Sections[0].Batches)
	}
}

func TestSectionService_Plan_LimitExceeded(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 60)

	_, err := svc.Section.Plan(context.Background(), &dto.PlanSectionsRequest{
		DepartmentID:      "dept-1",
		SectionCount:      2,
		BatchesPerSection: 7,
	})
	if !errors.Is(err, ErrSectionLimitExceeded) {
		t.Errorf("期望 ErrSectionLimitExceeded，实际: %v", err)
	}
}

// ── SubmitConfig 测试 ──

func TestSectionService_SubmitConfig_CreatesOnlyPending(t *testing.T) {
	svc, mocks, pub := setupTestServices()
	seedDepartmentAndScheme(mocks, 80)
	seedSection(mocks, "sec-existing", "A", 20, 20)

	req := &dto.SectionConfigRequest{
		DepartmentID:   "dept-1",
		BatchYearRange: testYears,
		SchemeID:       "scheme-1",
		Sections: []dto.SectionConfigItem{
			{SectionID: "sec-existing", Name: "A", NumBatches: 2, TotalCount: 40},
			{LocalID: "tmp-b", Name: "B", NumBatches: 3, TotalCount: 20, PreferredRoom: "LT-101"},
		},
	}

	result, err := svc.Section.SubmitConfig(context.Background(), req, "")
	if err != nil {
		t.Fatalf("SubmitConfig 应成功: %v", err)
	}
	if len(result.Created) != 1 || result.Created["tmp-b"] == "" {
		t.Fatalf("期望仅创建 tmp-b，实际=%v", result.Created)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "sec-existing" {
		t.Errorf("期望跳过 sec-existing，实际=%v", result.Skipped)
	}

	created := result.Sections[0]
	if !equalStrings(batchNamesOf(&created), []string{"B1", "B2", "B3"}) {
		t.Errorf("分组命名不正确: %v", batchNamesOf(&created))
	}
	if !equalInts(batchCountsOf(&created), []int{7, 7, 6}) {
		t.Errorf("分组人数不正确: %v", batchCountsOf(&created))
	}
	if created.PreferredRoom != "LT-101" {
		t.Errorf("期望偏好教室 LT-101，实际=%s", created.PreferredRoom)
	}
	if len(mocks.section.sections) != 2 {
		t.Errorf("期望共2个班级，实际=%d", len(mocks.section.sections))
	}

	if len(pub.events) != 1 || pub.events[0].queue != events.QueueSectionsCreated {
		t.Fatalf("期望发布1个班级创建事件，实际=%+v", pub.events)
	}
	evt := pub.events[0].event.(events.SectionsCreatedEvent)
	if evt.DepartmentName != "CSE" || evt.SectionIDs["tmp-b"] != result.Created["tmp-b"] {
		t.Errorf("事件内容不正确: %+v", evt)
	}
}

func TestSectionService_SubmitConfig_NothingPending(t *testing.T) {
	svc, mocks, pub := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	seedSection(mocks, "sec-1", "A", 20, 20)

	result, err := svc.Section.SubmitConfig(context.Background(), &dto.SectionConfigRequest{
		DepartmentID:   "dept-1",
		BatchYearRange: testYears,
		SchemeID:       "scheme-1",
		Sections:       []dto.SectionConfigItem{{SectionID: "sec-1", Name: "A", NumBatches: 2, TotalCount: 40}},
	}, "")
	if err != nil {
		t.Fatalf("SubmitConfig 应成功: %v", err)
	}
	if len(result.Created) != 0 || len(pub.events) != 0 {
		t.Errorf("无待创建班级时不应创建或发布事件")
	}
}

func TestSectionService_SubmitConfig_DuplicateName(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	seedSection(mocks, "sec-1", "A", 20)

	_, err := svc.Section.SubmitConfig(context.Background(), &dto.SectionConfigRequest{
		DepartmentID:   "dept-1",
		BatchYearRange: testYears,
		SchemeID:       "scheme-1",
		Sections:       []dto.SectionConfigItem{{LocalID: "tmp-1", Name: "A", NumBatches: 1, TotalCount: 20}},
	}, "")
	if !errors.Is(err, ErrSectionNameExists) {
		t.Errorf("期望 ErrSectionNameExists，实际: %v", err)
	}
}

func TestSectionService_SubmitConfig_PublishFailureDoesNotFail(t *testing.T) {
	svc, mocks, pub := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	pub.err = pkgerrors.ErrUpstreamUnavailable

	result, err := svc.Section.SubmitConfig(context.Background(), &dto.SectionConfigRequest{
		DepartmentID:   "dept-1",
		BatchYearRange: testYears,
		SchemeID:       "scheme-1",
		Sections:       []dto.SectionConfigItem{{LocalID: "tmp-1", Name: "A", NumBatches: 1, TotalCount: 40}},
	}, "")
	if err != nil {
		t.Fatalf("事件发布失败不应影响提交: %v", err)
	}
	if len(result.Created) != 1 {
		t.Errorf("期望创建1个班级，实际=%d", len(result.Created))
	}
}

// ── 修改测试 ──

func TestSectionService_Rename_Cascades(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 20)
	seedSection(mocks, "sec-1", "A", 10, 10)

	result, err := svc.Section.Rename(context.Background(), "sec-1", &dto.RenameSectionRequest{Name: "C"}, "")
	if err != nil {
		t.Fatalf("Rename 应成功: %v", err)
	}
	if result.Name != "C" || !equalStrings(batchNamesOf(result), []string{"C1", "C2"}) {
		t.Errorf("重命名未级联: %s %v", result.Name, batchNamesOf(result))
	}
	if !equalInts(batchCountsOf(result), []int{10, 10}) {
		t.Errorf("重命名不应改变人数: %v", batchCountsOf(result))
	}
	if result.Version != 2 {
		t.Errorf("期望 version=2，实际=%d", result.Version)
	}
}

func TestSectionService_Rename_NameTaken(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	seedSection(mocks, "sec-1", "A", 20)
	seedSection(mocks, "sec-2", "B", 20)

	_, err := svc.Section.Rename(context.Background(), "sec-1", &dto.RenameSectionRequest{Name: "B"}, "")
	if !errors.Is(err, ErrSectionNameExists) {
		t.Errorf("期望 ErrSectionNameExists，实际: %v", err)
	}
}

func TestSectionService_ResizeBatches_Grow(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 20)
	seedSection(mocks, "sec-1", "B", 20)

	result, err := svc.Section.ResizeBatches(context.Background(), "sec-1", &dto.ResizeBatchesRequest{NumBatches: 3}, "")
	if err != nil {
		t.Fatalf("ResizeBatches 应成功: %v", err)
	}
	if !equalStrings(batchNamesOf(result), []string{"B1", "B2", "B3"}) {
		t.Errorf("分组命名不正确: %v", batchNamesOf(result))
	}
	if !equalInts(batchCountsOf(result), []int{7, 7, 6}) {
		t.Errorf("分组人数不正确: %v", batchCountsOf(result))
	}
	for i, b := range result.Batches {
		if b.Position != i+1 {
			t.Errorf("分组位置不连续: %+v", result.Batches)
		}
	}
}

func TestSectionService_ResizeBatches_StaleVersion(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 20)
	seedSection(mocks, "sec-1", "B", 20)

	req := &dto.ResizeBatchesRequest{NumBatches: 2}
	req.Version = 7
	_, err := svc.Section.ResizeBatches(context.Background(), "sec-1", req, "")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
	if mocks.section.updates != 0 {
		t.Error("版本冲突时不应写库")
	}
}

func TestSectionService_Redistribute(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	seedSection(mocks, "sec-1", "A", 14, 13, 13)

	total := 50
	result, err := svc.Section.Redistribute(context.Background(), "sec-1", &dto.RedistributeRequest{TotalCount: &total}, "")
	if err != nil {
		t.Fatalf("Redistribute 应成功: %v", err)
	}
	if result.TotalCount != 50 || !equalInts(batchCountsOf(result), []int{17, 17, 16}) {
		t.Errorf("重新分配结果不正确: total=%d %v", result.TotalCount, batchCountsOf(result))
	}
}

func TestSectionService_Mutations_KeepBatchIdentity(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	seedSection(mocks, "sec-1", "A", 10, 10)
	ctx := context.Background()
	want := []string{"sec-1-b1", "sec-1-b2"}

	total := 21
	result, err := svc.Section.Redistribute(ctx, "sec-1", &dto.RedistributeRequest{TotalCount: &total}, "")
	if err != nil {
		t.Fatalf("Redistribute 应成功: %v", err)
	}
	if !equalStrings(batchIDsOf(result), want) || !equalInts(batchCountsOf(result), []int{11, 10}) {
		t.Errorf("重新分配后分组标识应保持不变: ids=%v counts=%v", batchIDsOf(result), batchCountsOf(result))
	}

	result, err = svc.Section.Rename(ctx, "sec-1", &dto.RenameSectionRequest{Name: "C"}, "")
	if err != nil {
		t.Fatalf("Rename 应成功: %v", err)
	}
	if !equalStrings(batchIDsOf(result), want) || !equalStrings(batchNamesOf(result), []string{"C1", "C2"}) {
		t.Errorf("重命名后分组标识应保持不变: ids=%v names=%v", batchIDsOf(result), batchNamesOf(result))
	}

	stored := mocks.section.sections["sec-1"]
	for i, b := range stored.Batches {
		if b.BatchID != want[i] {
			t.Errorf("存储中分组 %d 标识变化: %s", i+1, b.BatchID)
		}
	}
}

func TestSectionService_ResizeBatches_KeepsPrefixIdentity(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 40)
	seedSection(mocks, "sec-1", "A", 14, 13, 13)
	ctx := context.Background()

	grown, err := svc.Section.ResizeBatches(ctx, "sec-1", &dto.ResizeBatchesRequest{NumBatches: 4}, "")
	if err != nil {
		t.Fatalf("ResizeBatches 应成功: %v", err)
	}
	ids := batchIDsOf(grown)
	if !equalStrings(ids[:3], []string{"sec-1-b1", "sec-1-b2", "sec-1-b3"}) {
		t.Errorf("已有分组标识应保留: %v", ids)
	}
	if ids[3] == "" || ids[3] == ids[2] {
		t.Errorf("追加的分组应获得新标识: %v", ids)
	}

	shrunk, err := svc.Section.ResizeBatches(ctx, "sec-1", &dto.ResizeBatchesRequest{NumBatches: 2}, "")
	if err != nil {
		t.Fatalf("ResizeBatches 应成功: %v", err)
	}
	if !equalStrings(batchIDsOf(shrunk), []string{"sec-1-b1", "sec-1-b2"}) {
		t.Errorf("截断后应保留前缀分组标识: %v", batchIDsOf(shrunk))
	}
}

func TestSectionService_Mutation_RejectsDriftedData(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 20)
	seedSection(mocks, "sec-1", "A", 10, 10)
	// 人为制造总数不一致
	mocks.section.sections["sec-1"].TotalCount = 21

	_, err := svc.Section.Rename(context.Background(), "sec-1", &dto.RenameSectionRequest{Name: "Z"}, "")
	if !errors.Is(err, ErrSectionInvariant) || !errors.Is(err, capacity.ErrInvariantViolation) {
		t.Errorf("期望 ErrSectionInvariant，实际: %v", err)
	}
	if mocks.section.sections["sec-1"].Name != "A" {
		t.Error("不变式失败时不应写库")
	}
}

func TestSectionService_UpdateBatchRoom(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 20)
	seedSection(mocks, "sec-1", "A", 10, 10)

	result, err := svc.Section.UpdateBatchRoom(context.Background(), "sec-1", 2, &dto.UpdateBatchRoomRequest{PreferredRoom: "LAB-2"}, "")
	if err != nil {
		t.Fatalf("UpdateBatchRoom 应成功: %v", err)
	}
	if result.Batches[1].PreferredRoom != "LAB-2" || result.Batches[0].PreferredRoom != "" {
		t.Errorf("偏好教室设置不正确: %+v", result.Batches)
	}

	_, err = svc.Section.UpdateBatchRoom(context.Background(), "sec-1", 3, &dto.UpdateBatchRoomRequest{PreferredRoom: "LAB-2"}, "")
	if !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("期望 ErrBatchNotFound，实际: %v", err)
	}
}

// ── DistributeDepartment 测试 ──

func TestSectionService_DistributeDepartment(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 121)
	seedSection(mocks, "sec-a", "A", 10, 10)
	seedSection(mocks, "sec-b", "B", 10, 10)
	seedSection(mocks, "sec-c", "C", 10, 10)
	seedSection(mocks, "sec-d", "D", 10, 10)

	result, err := svc.Section.DistributeDepartment(context.Background(), "dept-1", &dto.DistributeDepartmentRequest{
		SchemeID:       "scheme-1",
		BatchYearRange: testYears,
	}, "")
	if err != nil {
		t.Fatalf("DistributeDepartment 应成功: %v", err)
	}
	if len(result) != 4 {
		t.Fatalf("期望4个班级，实际=%d", len(result))
	}

	sum := 0
	for i, want := range []int{31, 30, 30, 30} {
		if result[i].TotalCount != want {
			t.Errorf("班级%s 期望%d人，实际=%d", result[i].Name, want, result[i].TotalCount)
		}
		sum += result[i].TotalCount
	}
	if sum != 121 {
		t.Errorf("总人数应为121，实际=%d", sum)
	}
	if !equalInts(batchCountsOf(&result[0]), []int{16, 15}) {
		t.Errorf("A 班分组人数不正确: %v", batchCountsOf(&result[0]))
	}
}

func TestSectionService_DistributeDepartment_NoSections(t *testing.T) {
	svc, mocks, _ := setupTestServices()
	seedDepartmentAndScheme(mocks, 121)

	_, err := svc.Section.DistributeDepartment(context.Background(), "dept-1", &dto.DistributeDepartmentRequest{
		SchemeID:       "scheme-1",
		BatchYearRange: testYears,
	}, "")
	if !errors.Is(err, ErrNoSectionsToDivide) {
		t.Errorf("期望 ErrNoSectionsToDivide，实际: %v", err)
	}
}

func TestSectionService_Delete_NotFound(t *testing.T) {
	svc, _, _ := setupTestServices()

	err := svc.Section.Delete(context.Background(), "missing", "")
	if !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}
