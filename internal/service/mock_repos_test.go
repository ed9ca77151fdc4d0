package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/config"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/model"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	pkgerrors "github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/errors"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/redis"
)

// Mock 仓储均返回副本，使 Service 对读取结果的修改只有经 Update 才会生效，
// 从而可以在内存中模拟乐观锁。

// ── Mock UniversityRepository ──

type mockUniversityRepo struct {
	universities map[string]*model.University
}

func newMockUniversityRepo() *mockUniversityRepo {
	return &mockUniversityRepo{universities: make(map[string]*model.University)}
}

func (m *mockUniversityRepo) Create(_ context.Context, u *model.University) error {
	if u.UniversityID == "" {
		u.UniversityID = "uni-" + u.Name
	}
	c := *u
	m.universities[u.UniversityID] = &c
	return nil
}

func (m *mockUniversityRepo) GetByID(_ context.Context, id string) (*model.University, error) {
	if u, ok := m.universities[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUniversityRepo) List(_ context.Context) ([]model.University, error) {
	var result []model.University
	for _, u := range m.universities {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockUniversityRepo) Update(_ context.Context, u *model.University) error {
	c := *u
	m.universities[u.UniversityID] = &c
	return nil
}

func (m *mockUniversityRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.universities, id)
	return nil
}

// ── Mock SchoolRepository ──

type mockSchoolRepo struct {
	schools map[string]*model.School
}

func newMockSchoolRepo() *mockSchoolRepo {
	return &mockSchoolRepo{schools: make(map[string]*model.School)}
}

func (m *mockSchoolRepo) Create(_ context.Context, s *model.School) error {
	if s.SchoolID == "" {
		s.SchoolID = "school-" + s.Name
	}
	c := *s
	m.schools[s.SchoolID] = &c
	return nil
}

func (m *mockSchoolRepo) GetByID(_ context.Context, id string) (*model.School, error) {
	if s, ok := m.schools[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolRepo) ListByUniversity(_ context.Context, universityID string) ([]model.School, error) {
	var result []model.School
	for _, s := range m.schools {
		if universityID == "" || s.UniversityID == universityID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSchoolRepo) Update(_ context.Context, s *model.School) error {
	c := *s
	m.schools[s.SchoolID] = &c
	return nil
}

func (m *mockSchoolRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.schools, id)
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	depts         map[string]*model.Department
	sectionCounts map[string]int64
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{
		depts:         make(map[string]*model.Department),
		sectionCounts: make(map[string]int64),
	}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	c := *dept
	m.depts[dept.DepartmentID] = &c
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		c := *d
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) GetByName(_ context.Context, schoolID, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.SchoolID == schoolID && d.Name == name {
			c := *d
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context, schoolID string, includeInactive bool) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		if schoolID != "" && d.SchoolID != schoolID {
			continue
		}
		if !includeInactive && !d.IsActive {
			continue
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	stored, ok := m.depts[dept.DepartmentID]
	if !ok || stored.Version != dept.Version {
		return pkgerrors.ErrOptimisticLock
	}
	dept.Version++
	c := *dept
	m.depts[dept.DepartmentID] = &c
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.depts, id)
	return nil
}

func (m *mockDeptRepo) CountSections(_ context.Context, departmentID string) (int64, error) {
	return m.sectionCounts[departmentID], nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
	// availabilityUpdates 记录 UpdateAvailability 成功次数
	availabilityUpdates int
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func copyRoom(r *model.Room) *model.Room {
	c := *r
	c.Availability = append(model.IntArray(nil), r.Availability...)
	return &c
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	if room.RoomID == "" {
		room.RoomID = "room-" + room.Name
	}
	m.rooms[room.RoomID] = copyRoom(room)
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return copyRoom(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context, filter repository.RoomListFilter) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		if filter.UniversityID != "" && r.UniversityID != filter.UniversityID {
			continue
		}
		if filter.AcademicBlockID != "" && r.AcademicBlockID != filter.AcademicBlockID {
			continue
		}
		if filter.IsLab != nil && r.IsLab != *filter.IsLab {
			continue
		}
		if filter.MinCapacity > 0 && r.Capacity < filter.MinCapacity {
			continue
		}
		result = append(result, *copyRoom(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRoomRepo) Update(_ context.Context, room *model.Room) error {
	stored, ok := m.rooms[room.RoomID]
	if !ok || stored.Version != room.Version {
		return pkgerrors.ErrOptimisticLock
	}
	availability := stored.Availability
	room.Version++
	m.rooms[room.RoomID] = copyRoom(room)
	m.rooms[room.RoomID].Availability = availability
	return nil
}

func (m *mockRoomRepo) UpdateAvailability(_ context.Context, room *model.Room) error {
	stored, ok := m.rooms[room.RoomID]
	if !ok || stored.Version != room.Version {
		return pkgerrors.ErrOptimisticLock
	}
	room.Version++
	stored.Availability = append(model.IntArray(nil), room.Availability...)
	stored.Version = room.Version
	m.availabilityUpdates++
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.rooms, id)
	return nil
}

// ── Mock SchemeRepository ──

type mockSchemeRepo struct {
	schemes map[string]*model.Scheme
}

func newMockSchemeRepo() *mockSchemeRepo {
	return &mockSchemeRepo{schemes: make(map[string]*model.Scheme)}
}

func (m *mockSchemeRepo) Create(_ context.Context, scheme *model.Scheme) error {
	if scheme.SchemeID == "" {
		scheme.SchemeID = "scheme-" + scheme.Name
	}
	c := *scheme
	m.schemes[scheme.SchemeID] = &c
	return nil
}

func (m *mockSchemeRepo) GetByID(_ context.Context, id string) (*model.Scheme, error) {
	if s, ok := m.schemes[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchemeRepo) List(_ context.Context, universityID string, includeInactive bool) ([]model.Scheme, error) {
	var result []model.Scheme
	for _, s := range m.schemes {
		if universityID != "" && s.UniversityID != universityID {
			continue
		}
		if !includeInactive && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSchemeRepo) Update(_ context.Context, scheme *model.Scheme) error {
	c := *scheme
	m.schemes[scheme.SchemeID] = &c
	return nil
}

func (m *mockSchemeRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.schemes, id)
	return nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
	nextID   int
	// createErr 非空时 CreateWithBatches 直接返回该错误
	createErr error
	updates   int
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func copySection(s *model.Section) *model.Section {
	c := *s
	c.Batches = append([]model.Batch(nil), s.Batches...)
	return &c
}

func (m *mockSectionRepo) CreateWithBatches(_ context.Context, sections []*model.Section) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range sections {
		m.nextID++
		if s.SectionID == "" {
			s.SectionID = fmt.Sprintf("sec-%d", m.nextID)
		}
		for i := range s.Batches {
			s.Batches[i].SectionID = s.SectionID
			s.Batches[i].BatchID = fmt.Sprintf("%s-b%d", s.SectionID, i+1)
		}
		s.CreatedAt = time.Now()
		s.UpdatedAt = s.CreatedAt
		m.sections[s.SectionID] = copySection(s)
	}
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if s, ok := m.sections[id]; ok {
		return copySection(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) List(_ context.Context, filter repository.SectionListFilter) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.sections {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.SchemeID != "" && s.SchemeID != filter.SchemeID {
			continue
		}
		if filter.BatchYearRange != "" && s.BatchYearRange != filter.BatchYearRange {
			continue
		}
		result = append(result, *copySection(s))
	}
	sort.Slice(result, func(i, j int) bool {
		if len(result[i].Name) != len(result[j].Name) {
			return len(result[i].Name) < len(result[j].Name)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockSectionRepo) ExistingNames(_ context.Context, departmentID, schemeID, batchYearRange string) ([]string, error) {
	var names []string
	for _, s := range m.sections {
		if s.DepartmentID == departmentID && s.SchemeID == schemeID && s.BatchYearRange == batchYearRange {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

func (m *mockSectionRepo) UpdateWithBatches(ctx context.Context, section *model.Section) error {
	return m.UpdateManyWithBatches(ctx, []*model.Section{section})
}

func (m *mockSectionRepo) UpdateManyWithBatches(_ context.Context, sections []*model.Section) error {
	for _, s := range sections {
		stored, ok := m.sections[s.SectionID]
		if !ok || stored.Version != s.Version {
			return pkgerrors.ErrOptimisticLock
		}
	}
	for _, s := range sections {
		for i := range s.Batches {
			s.Batches[i].SectionID = s.SectionID
			if s.Batches[i].BatchID == "" {
				m.nextID++
				s.Batches[i].BatchID = fmt.Sprintf("%s-b%d-n%d", s.SectionID, i+1, m.nextID)
			}
		}
		s.Version++
		m.sections[s.SectionID] = copySection(s)
		m.updates++
	}
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.sections, id)
	return nil
}

// ── Mock PlannerSettingsRepository ──

type mockPlannerSettingsRepo struct {
	settings *model.PlannerSettings
}

func newMockPlannerSettingsRepo() *mockPlannerSettingsRepo {
	return &mockPlannerSettingsRepo{settings: &model.PlannerSettings{
		Singleton:                true,
		DefaultBatchesPerSection: 2,
		MaxSections:              26,
		MaxBatchesPerSection:     6,
	}}
}

func (m *mockPlannerSettingsRepo) Get(_ context.Context) (*model.PlannerSettings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	c := *m.settings
	return &c, nil
}

func (m *mockPlannerSettingsRepo) Update(_ context.Context, settings *model.PlannerSettings) error {
	c := *settings
	m.settings = &c
	return nil
}

// ── Mock 聚合 ──

type mockRepos struct {
	university *mockUniversityRepo
	school     *mockSchoolRepo
	dept       *mockDeptRepo
	room       *mockRoomRepo
	scheme     *mockSchemeRepo
	section    *mockSectionRepo
	settings   *mockPlannerSettingsRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		university: newMockUniversityRepo(),
		school:     newMockSchoolRepo(),
		dept:       newMockDeptRepo(),
		room:       newMockRoomRepo(),
		scheme:     newMockSchemeRepo(),
		section:    newMockSectionRepo(),
		settings:   newMockPlannerSettingsRepo(),
	}
	repo := &repository.Repository{
		University:      m.university,
		School:          m.school,
		Department:      m.dept,
		Room:            m.room,
		Scheme:          m.scheme,
		Section:         m.section,
		PlannerSettings: m.settings,
	}
	return repo, m
}

// ── Mock 事件发布 ──

type publishedEvent struct {
	queue string
	event interface{}
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, queue string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{queue: queue, event: event})
	return nil
}

func (p *mockPublisher) Close() error { return nil }

// ── Mock 外部排课服务与缓存 ──

type mockFetcher struct {
	data  map[string]json.RawMessage
	err   error
	calls int
}

func (f *mockFetcher) FetchSchedule(_ context.Context, id string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.data[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("mock: %s not configured", id)
}

type mockByteCache struct {
	data map[string][]byte
	err  error
}

func newMockByteCache() *mockByteCache {
	return &mockByteCache{data: make(map[string][]byte)}
}

func (c *mockByteCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	if b, ok := c.data[key]; ok {
		return b, nil
	}
	return nil, redis.ErrCacheMiss
}

func (c *mockByteCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	return nil
}

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{SummaryTTL: time.Minute},
		Algo:  config.AlgoConfig{CacheTTL: time.Minute},
	}
}

func setupTestServices() (*Service, *mockRepos, *mockPublisher) {
	repo, mocks := newMockRepository()
	pub := &mockPublisher{}
	svc := NewService(testConfig(), repo, Deps{Publisher: pub}, zap.NewNop())
	return svc, mocks, pub
}
