package bootstrap

import (
	"titanic_chat_backend/config"
	"titanic_chat_backend/repository"
	"titanic_chat_backend/services"
)

type Services struct {
	LLM   services.LLMClient
	Agent *services.AgentService
	Chat  *services.ChatService
}

func NewServices(cfg *config.Config, infra *Infrastructure) (*Services, error) {
	res := &Services{}

	llm, err := services.NewLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	res.LLM = llm

	res.Agent = services.NewAgentService(llm, infra.Table, infra.Executor, cfg)

	var chatRepo repository.ChatRepository
	if infra.DB != nil {
		chatRepo = repository.NewChatRepository(infra.DB.GetDatabase())
	}
	res.Chat = services.NewChatService(res.Agent, infra.Cache, chatRepo, infra.Storage, cfg.CacheTTL)

	return res, nil
}
