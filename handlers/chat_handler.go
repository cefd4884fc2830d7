package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"titanic_chat_backend/models"
	"titanic_chat_backend/services"
)

// QueryService is what the HTTP layer needs from the chat pipeline.
type QueryService interface {
	Ask(ctx context.Context, question string) (*models.ChatResponse, error)
	History(ctx context.Context, limit int) ([]*models.ChatRecord, error)
	ChartURL(ctx context.Context, key string) (string, error)
}

type ChatHandler struct {
	chatService QueryService
}

func NewChatHandler(chatService QueryService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question cannot be empty")
	}

	resp, err := h.chatService.Ask(c.Context(), req.Question)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(resp)
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	records, err := h.chatService.History(c.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrHistoryDisabled) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(records)
}

// ChartURL resolves the chart_key of a history record to a presigned URL.
func (h *ChatHandler) ChartURL(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" {
		return fiber.NewError(fiber.StatusBadRequest, "chart key required")
	}
	url, err := h.chatService.ChartURL(c.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrArchiveDisabled) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"url": url})
}
