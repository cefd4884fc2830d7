package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titanic_chat_backend/models"
	"titanic_chat_backend/services"
)

// stubChatService returns canned answers and tracks whether it was reached.
type stubChatService struct {
	resp     *models.ChatResponse
	records  []*models.ChatRecord
	chartURL string
	err      error
	asked    int
}

func (s *stubChatService) Ask(_ context.Context, _ string) (*models.ChatResponse, error) {
	s.asked++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubChatService) History(_ context.Context, _ int) ([]*models.ChatRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubChatService) ChartURL(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.chartURL, nil
}

func newChatApp(svc QueryService) *fiber.App {
	app := fiber.New()
	h := NewChatHandler(svc)
	app.Post("/chat", h.Chat)
	app.Get("/chat/history", h.History)
	app.Get("/chat/charts/*", h.ChartURL)
	return app
}

func postChat(t *testing.T, app *fiber.App, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestChatReturnsAnswer(t *testing.T) {
	img := "aGVsbG8="
	svc := &stubChatService{resp: &models.ChatResponse{
		Text:  "342 passengers survived.",
		Image: &img,
		Code:  "func Run() (string, error) { ... }",
	}}
	status, body := postChat(t, newChatApp(svc), `{"question":"How many survived?"}`)

	require.Equal(t, fiber.StatusOK, status)
	var got models.ChatResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "342 passengers survived.", got.Text)
	require.NotNil(t, got.Image)
	assert.Equal(t, img, *got.Image)
	assert.NotEmpty(t, got.Code)
}

func TestChatImageIsNullWithoutChart(t *testing.T) {
	svc := &stubChatService{resp: &models.ChatResponse{Text: "no chart"}}
	status, body := postChat(t, newChatApp(svc), `{"question":"plain question"}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"image":null`)
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	svc := &stubChatService{resp: &models.ChatResponse{Text: "unreachable"}}
	app := newChatApp(svc)

	for _, body := range []string{`{"question":""}`, `{"question":"   "}`, `{}`} {
		status, _ := postChat(t, app, body)
		assert.Equal(t, fiber.StatusBadRequest, status, "body %s", body)
	}
	assert.Zero(t, svc.asked)
}

func TestChatRejectsMalformedJSON(t *testing.T) {
	svc := &stubChatService{}
	status, _ := postChat(t, newChatApp(svc), `{"question":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Zero(t, svc.asked)
}

func TestChatServiceErrorIs500(t *testing.T) {
	svc := &stubChatService{err: errors.New("boom")}
	status, _ := postChat(t, newChatApp(svc), `{"question":"anything"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestHistoryReturnsRecords(t *testing.T) {
	svc := &stubChatService{records: []*models.ChatRecord{
		{ID: "abc", Question: "q", Answer: "a"},
	}}
	app := newChatApp(svc)

	req := httptest.NewRequest("GET", "/chat/history?limit=5", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"abc"`))
}

func TestChartURLResolvesKey(t *testing.T) {
	svc := &stubChatService{chartURL: "https://storage.example/charts/2026/08/26/1a2b3c4d.png?sig=x"}
	app := newChatApp(svc)

	req := httptest.NewRequest("GET", "/chat/charts/charts/2026/08/26/1a2b3c4d.png", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), svc.chartURL)
}

func TestChartURLDisabledIs503(t *testing.T) {
	svc := &stubChatService{err: services.ErrArchiveDisabled}
	app := newChatApp(svc)

	req := httptest.NewRequest("GET", "/chat/charts/charts/2026/08/26/1a2b3c4d.png", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHistoryDisabledIs503(t *testing.T) {
	svc := &stubChatService{err: services.ErrHistoryDisabled}
	app := newChatApp(svc)

	req := httptest.NewRequest("GET", "/chat/history", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
