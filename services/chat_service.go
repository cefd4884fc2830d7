package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"titanic_chat_backend/models"
	"titanic_chat_backend/pkg/logging"
	"titanic_chat_backend/pkg/metrics"
	"titanic_chat_backend/platform/cache"
	"titanic_chat_backend/platform/storage"
	"titanic_chat_backend/repository"
)

var (
	ErrHistoryDisabled = errors.New("chat history persistence is not configured")
	ErrArchiveDisabled = errors.New("chart archive is not configured")
)

// QueryAgent is what ChatService needs from the agent loop.
type QueryAgent interface {
	Run(ctx context.Context, question string) (*AgentResult, error)
}

// ChatService owns the per-question pipeline around the agent: answer cache,
// in-flight deduplication, optional history persistence and chart archiving.
// Agent failures never escape as errors; they come back as an apologetic
// answer text, per the API contract.
type ChatService struct {
	agent     QueryAgent
	respCache *cache.TypedCache[models.ChatResponse]
	chatRepo  repository.ChatRepository // nil when Postgres is not configured
	archive   *storage.Service          // nil when object storage is not configured
	cacheTTL  time.Duration
	sf        singleflight.Group
}

func NewChatService(agent QueryAgent, cacheService cache.CacheService, chatRepo repository.ChatRepository, archive *storage.Service, cacheTTL time.Duration) *ChatService {
	return &ChatService{
		agent:     agent,
		respCache: cache.NewTypedCache[models.ChatResponse](cacheService),
		chatRepo:  chatRepo,
		archive:   archive,
		cacheTTL:  cacheTTL,
	}
}

func (s *ChatService) Ask(ctx context.Context, question string) (*models.ChatResponse, error) {
	key := cacheKey(question)
	if resp, ok, err := s.respCache.Get(key); ok && err == nil {
		metrics.AnswerCacheHits.Inc()
		return &resp, nil
	}

	// identical questions in flight share one agent run; the run is detached
	// from the first caller's context so its disconnect cannot fail followers
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.ask(context.WithoutCancel(ctx), question, key), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ChatResponse), nil
}

func (s *ChatService) ask(ctx context.Context, question, key string) *models.ChatResponse {
	start := time.Now()
	result, err := s.agent.Run(ctx, question)
	metrics.ChatDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		logging.Logger.Error("fail agent run", zap.Error(err), zap.String("question", question))
		return &models.ChatResponse{
			Text: fmt.Sprintf("I encountered an issue processing that query. Please try rephrasing. (Error: %v)", err),
		}
	}
	metrics.ChatRequests.WithLabelValues("ok").Inc()

	resp := &models.ChatResponse{Text: result.Text, Code: result.Code}
	var chartKey string
	if len(result.ChartPNG) > 0 {
		img := base64.StdEncoding.EncodeToString(result.ChartPNG)
		resp.Image = &img
		chartKey = s.archiveChart(ctx, result.ChartPNG)
	}

	// failures are not cached; a retry should reach the model again
	if err := s.respCache.Set(key, *resp, s.cacheTTL); err != nil {
		logging.Logger.Warn("fail caching answer", zap.Error(err))
	}
	s.persist(ctx, question, result, chartKey, time.Since(start))
	return resp
}

func (s *ChatService) History(ctx context.Context, limit int) ([]*models.ChatRecord, error) {
	if s.chatRepo == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.chatRepo.ListRecent(ctx, limit)
}

// ChartURL presigns a GET for an archived chart key from a history record.
func (s *ChatService) ChartURL(ctx context.Context, key string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	return s.archive.ChartURL(ctx, key, 15*time.Minute)
}

func (s *ChatService) persist(ctx context.Context, question string, result *AgentResult, chartKey string, latency time.Duration) {
	if s.chatRepo == nil {
		return
	}
	record := &models.ChatRecord{
		ID:        uuid.New().String(),
		Question:  question,
		Answer:    result.Text,
		Code:      result.Code,
		HasChart:  len(result.ChartPNG) > 0,
		ChartKey:  chartKey,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.Create(ctx, record); err != nil {
		logging.Logger.Error("fail persisting chat record", zap.Error(err))
	}
}

// archiveChart returns the object key, or "" when the archive is off or the
// upload failed.
func (s *ChatService) archiveChart(ctx context.Context, png []byte) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.ArchiveChart(ctx, png)
	if err != nil {
		logging.Logger.Warn("fail archiving chart", zap.Error(err))
		return ""
	}
	logging.Logger.Info("chart archived", zap.String("key", key))
	return key
}

func cacheKey(question string) string {
	return "answer:" + strings.ToLower(strings.Join(strings.Fields(question), " "))
}
