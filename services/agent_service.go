package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"titanic_chat_backend/config"
	"titanic_chat_backend/pkg/logging"
	"titanic_chat_backend/pkg/metrics"
	"titanic_chat_backend/platform/chart"
	"titanic_chat_backend/platform/dataset"
	"titanic_chat_backend/platform/sandbox"
)

// AgentResult is one finished agent run. Code concatenates every executed
// snippet; ChartPNG is nil when nothing was drawn.
type AgentResult struct {
	Text       string
	ChartPNG   []byte
	Code       string
	Iterations int
}

// AgentService drives the think/act loop: the model either replies with a
// Go snippet to execute or with a final answer. All decision logic lives in
// the model; this loop only shuttles observations back.
type AgentService struct {
	llm           LLMClient
	table         *dataset.Table
	executor      *sandbox.Executor
	maxIterations int
	timeout       time.Duration
}

func NewAgentService(llm LLMClient, table *dataset.Table, executor *sandbox.Executor, cfg *config.Config) *AgentService {
	return &AgentService{
		llm:           llm,
		table:         table,
		executor:      executor,
		maxIterations: cfg.MaxIterations,
		timeout:       cfg.QueryTimeout,
	}
}

func (s *AgentService) Run(ctx context.Context, question string) (*AgentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system := BuildSystemPrompt(s.table)
	rec := chart.NewRecorder()
	msgs := []Message{{Role: "user", Content: question}}
	var codeBlocks []string

	for iter := 1; iter <= s.maxIterations; iter++ {
		reply, err := s.llm.Complete(ctx, system, msgs)
		if err != nil {
			metrics.LLMCalls.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("llm call failed: %w", err)
		}
		metrics.LLMCalls.WithLabelValues("ok").Inc()
		msgs = append(msgs, Message{Role: "assistant", Content: reply})

		if code, ok := extractCodeBlock(reply); ok {
			codeBlocks = append(codeBlocks, code)
			observation := s.observe(ctx, code, rec)
			msgs = append(msgs, Message{Role: "user", Content: "Observation:\n" + observation})
			continue
		}

		answer, ok := extractFinalAnswer(reply)
		if !ok {
			// no code and no marker: the model answered directly
			answer = strings.TrimSpace(reply)
		}
		return s.finish(answer, codeBlocks, rec, iter), nil
	}

	return nil, fmt.Errorf("agent exceeded %d iterations without a final answer", s.maxIterations)
}

// observe executes one snippet and renders the outcome for the model.
// Execution failures are observations, not errors: the model gets a chance
// to correct its own code.
func (s *AgentService) observe(ctx context.Context, code string, rec *chart.Recorder) string {
	out, err := s.executor.Execute(ctx, code, rec)
	if err != nil {
		metrics.SandboxExecutions.WithLabelValues("error").Inc()
		logging.Logger.Debug("sandbox execution failed", zap.Error(err))
		return "error: " + err.Error()
	}
	metrics.SandboxExecutions.WithLabelValues("ok").Inc()
	if out == "" {
		return "(no output)"
	}
	return out
}

func (s *AgentService) finish(answer string, codeBlocks []string, rec *chart.Recorder, iterations int) *AgentResult {
	res := &AgentResult{
		Text:       answer,
		Code:       strings.Join(codeBlocks, "\n\n"),
		Iterations: iterations,
	}
	if rec.HasFigure() {
		png, err := rec.RenderPNG()
		if err != nil {
			// text still answers the question, ship it without the chart
			logging.Logger.Warn("chart render failed", zap.Error(err))
		} else {
			res.ChartPNG = png
		}
	}
	return res
}
