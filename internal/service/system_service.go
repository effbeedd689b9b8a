package service

import (
	"context"
	"sync"
	"time"

	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/entity"
	"simple-notes-be/internal/mapper"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/pkg/events"

	"github.com/patrickmn/go-cache"
)

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"

	statsCacheKey = "storage_stats"
)

type ISystemService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
	Clear(ctx context.Context) (*dto.ClearResponse, error)
	InvalidateStats()
}

type systemService struct {
	backend    contract.StorageBackend
	dispatcher IEventDispatcher
	statsCache *cache.Cache
	statsTTL   time.Duration
	logger     logger.ILogger

	// statsMu guards statsGen. A read only caches its result when no
	// invalidation happened while it was running.
	statsMu  sync.Mutex
	statsGen uint64
}

// NewSystemService caches storage stats for statsTTL. A zero TTL reads the
// backend on every call.
func NewSystemService(
	backend contract.StorageBackend,
	dispatcher IEventDispatcher,
	statsTTL time.Duration,
	log logger.ILogger,
) ISystemService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &systemService{
		backend:    backend,
		dispatcher: dispatcher,
		statsCache: cache.New(statsTTL, 2*statsTTL+time.Minute),
		statsTTL:   statsTTL,
		logger:     log,
	}
}

func (s *systemService) loadStats(ctx context.Context) (*entity.StorageStats, error) {
	if s.statsTTL > 0 {
		if cached, ok := s.statsCache.Get(statsCacheKey); ok {
			return cached.(*entity.StorageStats), nil
		}
	}

	s.statsMu.Lock()
	gen := s.statsGen
	s.statsMu.Unlock()

	stats, err := s.backend.GetStorageStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.statsTTL > 0 {
		s.statsMu.Lock()
		if s.statsGen == gen {
			s.statsCache.Set(statsCacheKey, stats, s.statsTTL)
		}
		s.statsMu.Unlock()
	}
	return stats, nil
}

func (s *systemService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	stats, err := s.loadStats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{
		StorageStats: mapper.StatsToDTO(stats),
		Timestamp:    time.Now().UTC(),
	}, nil
}

func (s *systemService) Health(ctx context.Context) *dto.HealthResponse {
	res := &dto.HealthResponse{
		Status:    HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   dto.APIVersion,
		Database: dto.DatabaseHealth{
			Connected: true,
			Backend:   s.backend.Name(),
		},
	}

	if err := s.backend.Ping(ctx); err != nil {
		s.logger.Warn("SystemService", "Health check ping failed", map[string]interface{}{
			"error": err.Error(),
		})
		res.Status = HealthStatusUnhealthy
		res.Database.Connected = false
		res.Database.Error = err.Error()
		return res
	}

	// Health always reads through to the backend.
	stats, err := s.backend.GetStorageStats(ctx)
	if err != nil {
		res.Status = HealthStatusUnhealthy
		res.Database.Error = err.Error()
		return res
	}
	st := mapper.StatsToDTO(stats)
	res.Database.Stats = &st
	return res
}

func (s *systemService) Clear(ctx context.Context) (*dto.ClearResponse, error) {
	if err := s.backend.ClearAllData(ctx); err != nil {
		return nil, err
	}
	s.InvalidateStats()

	s.logger.Warn("SystemService", "All data cleared", nil)
	s.dispatcher.Dispatch(ctx, events.New(events.DataCleared, nil))

	return &dto.ClearResponse{
		Success:   true,
		Message:   "All data cleared successfully",
		Timestamp: time.Now().UTC(),
	}, nil
}

func (s *systemService) InvalidateStats() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.statsGen++
	s.statsCache.Delete(statsCacheKey)
}
