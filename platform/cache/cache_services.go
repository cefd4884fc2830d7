package cache

import (
	"time"

	"go.uber.org/zap"

	"titanic_chat_backend/pkg/logging"
)

// Service layers the in-process L1 over an optional L2 (Redis). With no L2
// the L1 holds entries for the full TTL; with an L2 the L1 acts as a short
// near cache in front of it.
type Service struct {
	l1 *L1CacheService
	l2 CacheService // nil when Redis is not configured
}

func NewCacheService(l1 *L1CacheService, l2 CacheService) CacheService {
	return &Service{l1: l1, l2: l2}
}

func (cs *Service) GetCache(key string) (interface{}, bool) {
	if data, ok := cs.l1.Get(key); ok {
		return data, ok
	}
	if cs.l2 != nil {
		if data, ok := cs.l2.GetCache(key); ok {
			return data, ok
		}
	}
	return nil, false
}

func (cs *Service) SetCache(key string, value interface{}, expiration time.Duration) error {
	if cs.l2 == nil {
		cs.l1.Set(key, value, expiration)
		return nil
	}
	if err := cs.l2.SetCache(key, value, expiration); err != nil {
		logging.Logger.Error("fail l2 SetCache", zap.Error(err))
		return err
	}
	cs.l1.Set(key, value, time.Duration(float64(expiration)*0.3))
	return nil
}

func (cs *Service) DelCache(key string) error {
	cs.l1.Del(key)
	if cs.l2 != nil {
		if err := cs.l2.DelCache(key); err != nil {
			logging.Logger.Error("fail l2 DelCache", zap.Error(err))
			return err
		}
	}
	return nil
}
