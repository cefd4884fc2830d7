package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"titanic_chat_backend/bootstrap"
	"titanic_chat_backend/config"
	"titanic_chat_backend/middleware"
	"titanic_chat_backend/pkg/logging"
	"titanic_chat_backend/routes"
)

func main() {
	// .env is optional outside dev
	_ = godotenv.Load()
	logging.Init()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	application, err := bootstrap.NewApp(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			logging.Logger.Error("fail Shutdown", zap.Error(err))
		}
	}()

	app := fiber.New()
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.AllowOrigins))

	routes.RegisterChatRoutes(app, application.Handlers.ChatHandler)
	routes.RegisterHealthRoutes(app, application.Handlers.HealthHandler)

	logging.Logger.Info("server running", zap.String("port", cfg.HttpPort))
	log.Fatal(app.Listen(":" + cfg.HttpPort))
}
