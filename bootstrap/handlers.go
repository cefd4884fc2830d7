package bootstrap

import "titanic_chat_backend/handlers"

type Handlers struct {
	ChatHandler   *handlers.ChatHandler
	HealthHandler *handlers.HealthHandler
}

func NewHandlers(services *Services, infra *Infrastructure) *Handlers {
	res := &Handlers{}
	res.ChatHandler = handlers.NewChatHandler(services.Chat)
	if infra.DB != nil {
		res.HealthHandler = handlers.NewHealthHandler(infra.Table, infra.DB)
	} else {
		res.HealthHandler = handlers.NewHealthHandler(infra.Table, nil)
	}
	return res
}
