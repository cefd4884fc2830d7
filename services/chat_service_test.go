package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titanic_chat_backend/models"
	"titanic_chat_backend/platform/cache"
)

// fakeAgent returns a fixed result and counts how often it ran.
type fakeAgent struct {
	result *AgentResult
	err    error
	runs   int
}

func (f *fakeAgent) Run(_ context.Context, _ string) (*AgentResult, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newChatService(agent QueryAgent) *ChatService {
	cs := cache.NewCacheService(cache.InitL1Cache(), nil)
	return NewChatService(agent, cs, nil, nil, time.Hour)
}

func TestAskReturnsAgentAnswer(t *testing.T) {
	agent := &fakeAgent{result: &AgentResult{
		Text: "342 passengers survived.",
		Code: `func Run() (string, error) { return "342", nil }`,
	}}
	svc := newChatService(agent)

	resp, err := svc.Ask(context.Background(), "How many survived?")
	require.NoError(t, err)
	assert.Equal(t, "342 passengers survived.", resp.Text)
	assert.Nil(t, resp.Image)
	assert.Contains(t, resp.Code, "func Run()")
}

func TestAskCachesSuccessfulAnswers(t *testing.T) {
	agent := &fakeAgent{result: &AgentResult{Text: "the answer"}}
	svc := newChatService(agent)

	_, err := svc.Ask(context.Background(), "How many survived?")
	require.NoError(t, err)

	// whitespace and case must not defeat the cache
	resp, err := svc.Ask(context.Background(), "  how MANY   survived? ")
	require.NoError(t, err)
	assert.Equal(t, "the answer", resp.Text)
	assert.Equal(t, 1, agent.runs)
}

func TestAskWrapsAgentFailure(t *testing.T) {
	agent := &fakeAgent{err: errors.New("agent exceeded 15 iterations without a final answer")}
	svc := newChatService(agent)

	resp, err := svc.Ask(context.Background(), "impossible question")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "I encountered an issue processing that query")
	assert.Contains(t, resp.Text, "exceeded 15 iterations")
	assert.Nil(t, resp.Image)

	// failures are not cached, a retry reaches the agent again
	_, err = svc.Ask(context.Background(), "impossible question")
	require.NoError(t, err)
	assert.Equal(t, 2, agent.runs)
}

func TestAskEncodesChart(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	agent := &fakeAgent{result: &AgentResult{Text: "chart ready", ChartPNG: pngBytes}}
	svc := newChatService(agent)

	resp, err := svc.Ask(context.Background(), "plot something")
	require.NoError(t, err)
	require.NotNil(t, resp.Image)

	decoded, err := base64.StdEncoding.DecodeString(*resp.Image)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, decoded)
}

func TestAskDetachesFromCallerContext(t *testing.T) {
	var seen error
	agent := &ctxAgent{inspect: func(ctx context.Context) { seen = ctx.Err() }}
	svc := newChatService(agent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := svc.Ask(ctx, "How many survived?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", resp.Text)
	assert.NoError(t, seen)
}

// ctxAgent lets a test look at the context the agent actually runs under.
type ctxAgent struct {
	inspect func(ctx context.Context)
}

func (f *ctxAgent) Run(ctx context.Context, _ string) (*AgentResult, error) {
	f.inspect(ctx)
	return &AgentResult{Text: "the answer"}, nil
}

func TestHistoryWithoutRepository(t *testing.T) {
	svc := newChatService(&fakeAgent{result: &AgentResult{Text: "x"}})

	_, err := svc.History(context.Background(), 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestChartURLWithoutArchive(t *testing.T) {
	svc := newChatService(&fakeAgent{result: &AgentResult{Text: "x"}})

	_, err := svc.ChartURL(context.Background(), "charts/2026/08/26/1a2b3c4d.png")
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}

// recordingRepo captures persisted records in memory.
type recordingRepo struct {
	created []*models.ChatRecord
}

func (r *recordingRepo) Create(_ context.Context, rec *models.ChatRecord) error {
	r.created = append(r.created, rec)
	return nil
}

func (r *recordingRepo) ListRecent(_ context.Context, limit int) ([]*models.ChatRecord, error) {
	if limit > len(r.created) {
		limit = len(r.created)
	}
	return r.created[:limit], nil
}

func TestAskPersistsRecord(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G'}
	agent := &fakeAgent{result: &AgentResult{Text: "chart ready", Code: "code", ChartPNG: pngBytes}}
	repo := &recordingRepo{}
	cs := cache.NewCacheService(cache.InitL1Cache(), nil)
	svc := NewChatService(agent, cs, repo, nil, time.Hour)

	_, err := svc.Ask(context.Background(), "plot something")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	rec := repo.created[0]
	assert.Equal(t, "plot something", rec.Question)
	assert.Equal(t, "chart ready", rec.Answer)
	assert.True(t, rec.HasChart)
	// no archive configured, so no chart key either
	assert.Empty(t, rec.ChartKey)
	assert.NotEmpty(t, rec.ID)
}

func TestCacheKeyNormalization(t *testing.T) {
	assert.Equal(t, cacheKey("How many survived?"), cacheKey("  how   MANY survived? "))
	assert.NotEqual(t, cacheKey("How many survived?"), cacheKey("How many died?"))
}
