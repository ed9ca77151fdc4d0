package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/dto"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/algoclient"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/redis"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableNotFound = errors.New("课表不存在")
	ErrTimetableUpstream = errors.New("排课服务暂不可用")
)

// TimetableService 外部排课服务生成的课表查询接口
//
// 课表由外部服务生成，本服务只读透传；Redis 可用时按 schedule_id 缓存响应。
type TimetableService interface {
	Get(ctx context.Context, scheduleID string) (*dto.TimetableResponse, error)
}

type timetableService struct {
	fetcher ScheduleFetcher
	cache   ByteCache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例，cache 可为 nil
func NewTimetableService(fetcher ScheduleFetcher, cache ByteCache, ttl time.Duration, logger *zap.Logger) TimetableService {
	return &timetableService{fetcher: fetcher, cache: cache, ttl: ttl, logger: logger}
}

func (s *timetableService) Get(ctx context.Context, scheduleID string) (*dto.TimetableResponse, error) {
	key := "timetable:" + scheduleID

	if s.cache != nil {
		b, err := s.cache.GetBytes(ctx, key)
		switch {
		case err == nil && json.Valid(b):
			return &dto.TimetableResponse{ScheduleID: scheduleID, Source: "cache", Data: b}, nil
		case err != nil && !errors.Is(err, redis.ErrCacheMiss):
			s.logger.Warn("读取课表缓存失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
	}

	if s.fetcher == nil {
		return nil, ErrTimetableUpstream
	}
	data, err := s.fetcher.FetchSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, algoclient.ErrNotFound) {
			return nil, ErrTimetableNotFound
		}
		s.logger.Error("请求排课服务失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, ErrTimetableUpstream
	}

	if s.cache != nil {
		if err := s.cache.SetBytes(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("写入课表缓存失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		}
	}

	return &dto.TimetableResponse{ScheduleID: scheduleID, Source: "upstream", Data: data}, nil
}
