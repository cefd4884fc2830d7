package bootstrap

import (
	"go.uber.org/zap"

	"titanic_chat_backend/config"
	"titanic_chat_backend/pkg/logging"
)

type App struct {
	Cfg            *config.Config
	Infrastructure *Infrastructure
	Services       *Services
	Handlers       *Handlers
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Cfg: cfg}

	infra, err := NewInfrastructure(cfg)
	if err != nil {
		logging.Logger.Error("fail NewInfrastructure", zap.Error(err))
		return nil, err
	}
	app.Infrastructure = infra

	services, err := NewServices(cfg, infra)
	if err != nil {
		logging.Logger.Error("fail NewServices", zap.Error(err))
		return nil, err
	}
	app.Services = services

	app.Handlers = NewHandlers(services, infra)

	return app, nil
}

// Shutdown infra
func (a *App) Shutdown() error {
	if a == nil {
		return nil
	}
	if a.Infrastructure != nil {
		return a.Infrastructure.Shutdown()
	}
	return nil
}
