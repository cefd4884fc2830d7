package routes

import (
	"github.com/gofiber/fiber/v2"

	"titanic_chat_backend/handlers"
)

func RegisterChatRoutes(app *fiber.App, chatHandler *handlers.ChatHandler) {
	app.Post("/chat", chatHandler.Chat)
	app.Get("/chat/history", chatHandler.History)
	app.Get("/chat/charts/*", chatHandler.ChartURL)
}
