package service

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/config"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/events"
)

// timeLayout 响应中统一使用的时间格式
const timeLayout = "2006-01-02T15:04:05Z"

// ScheduleFetcher 外部排课服务客户端（pkg/algoclient 实现）
type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context, id string) (json.RawMessage, error)
}

// ByteCache 分布式缓存（pkg/redis 实现），未配置 Redis 时为 nil
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Deps Service 层的外部依赖
type Deps struct {
	Cache     ByteCache
	Fetcher   ScheduleFetcher
	Publisher events.Publisher
}

// Service 所有 Service 的聚合入口
type Service struct {
	University UniversityService
	School     SchoolService
	Department DepartmentService
	Room       RoomService
	Scheme     SchemeService
	Section    SectionService
	Settings   PlannerSettingsService
	Timetable  TimetableService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	deps Deps,
	logger *zap.Logger,
) *Service {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	summaries := gocache.New(cfg.Cache.SummaryTTL, 2*cfg.Cache.SummaryTTL)

	return &Service{
		University: NewUniversityService(repo, logger),
		School:     NewSchoolService(repo, logger),
		Department: NewDepartmentService(repo, logger),
		Room:       NewRoomService(repo, summaries, deps.Publisher, logger),
		Scheme:     NewSchemeService(repo, logger),
		Section:    NewSectionService(repo, deps.Publisher, logger),
		Settings:   NewPlannerSettingsService(repo, logger),
		Timetable:  NewTimetableService(deps.Fetcher, deps.Cache, cfg.Algo.CacheTTL, logger),
		Export:     NewExportService(repo, logger),
	}
}

// versionConflict 客户端携带的版本与当前版本不一致
func versionConflict(requested, current int) bool {
	return requested != 0 && requested != current
}
