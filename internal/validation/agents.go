package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/prompts"
)

// DefaultMaxToolIterations bounds an agent's tool-calling loop.
const DefaultMaxToolIterations = 6

var (
	competitionSchema = llm.GenerateSchema[domain.CompetitionAnalysis]()
	audienceSchema    = llm.GenerateSchema[domain.AudienceAnalysis]()
	trendSchema       = llm.GenerateSchema[domain.TrendAnalysis]()
	strategySchema    = llm.GenerateSchema[domain.StrategyAnalysis]()
)

// AgentRunner drives one research agent: a bounded tool-calling loop
// followed by one structured synthesis call. Agent failure is fatal to
// the validation run; there is no degraded mode here.
type AgentRunner struct {
	llm           llm.Invoker
	rotator       *llm.KeyRotator
	toolbox       *Toolbox
	maxIterations int
}

// NewAgentRunner creates a runner over the shared LLM client and toolbox.
func NewAgentRunner(invoker llm.Invoker, rotator *llm.KeyRotator, toolbox *Toolbox, maxIterations int) *AgentRunner {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxToolIterations
	}
	return &AgentRunner{
		llm:           invoker,
		rotator:       rotator,
		toolbox:       toolbox,
		maxIterations: maxIterations,
	}
}

var agentPrompts = map[string]string{
	domain.AgentCompetition: prompts.CompetitionAgentPrompt,
	domain.AgentAudience:    prompts.AudienceAgentPrompt,
	domain.AgentTrend:       prompts.TrendAgentPrompt,
	domain.AgentStrategy:    prompts.StrategyAgentPrompt,
}

// research runs the tool loop for one agent and returns its accumulated
// findings: tool results plus the model's closing statement.
func (r *AgentRunner) research(ctx context.Context, name string, input domain.ValidationInput, stream progress.Streamer, credential string) (string, error) {
	ctx = logger.WithField(ctx, logger.FieldAgent, name)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: agentPrompts[name]},
		{Role: llm.RoleUser, Content: prompts.AgentInput(input.Idea, input.TargetAudience, input.Goal)},
	}

	var findings strings.Builder
	for iteration := 0; iteration < r.maxIterations; iteration++ {
		result, err := r.llm.Chat(ctx, llm.ChatRequest{
			Credential: credential,
			Messages:   messages,
			Tools:      r.toolbox.Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("%s agent: chat iteration %d: %w", name, iteration+1, err)
		}

		if len(result.ToolCalls) == 0 {
			findings.WriteString("CONCLUSION:\n")
			findings.WriteString(result.Content)
			return findings.String(), nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})

		for _, call := range result.ToolCalls {
			stream.Log(fmt.Sprintf("[%s] calling %s", name, call.Name), "info")
			toolResult, err := r.toolbox.Execute(ctx, call)
			if err != nil {
				return "", fmt.Errorf("%s agent: tool %s: %w", name, call.Name, err)
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    toolResult,
				ToolCallID: call.ID,
			})
			findings.WriteString(fmt.Sprintf("TOOL %s RESULT:\n%s\n\n", call.Name, toolResult))
		}
	}

	logger.CtxWarn(ctx, "Agent %s hit the %d-iteration tool budget", name, r.maxIterations)
	return findings.String(), nil
}

func (r *AgentRunner) synthesize(ctx context.Context, name, findings string, credential string, schema map[string]interface{}, out interface{}) error {
	err := r.llm.Invoke(ctx, llm.InvokeRequest{
		Credential:   credential,
		Instructions: agentPrompts[name] + "\n\n" + prompts.AgentSynthesisPrompt,
		Input:        findings,
		SchemaName:   name + "_analysis",
		Schema:       schema,
	}, out)
	if err != nil {
		return fmt.Errorf("%s agent: synthesis: %w", name, err)
	}
	return nil
}

// RunCompetition executes the competition agent end to end.
func (r *AgentRunner) RunCompetition(ctx context.Context, input domain.ValidationInput, stream progress.Streamer) (*domain.CompetitionAnalysis, error) {
	credential := r.rotator.KeyForWorker(0)
	findings, err := r.research(ctx, domain.AgentCompetition, input, stream, credential)
	if err != nil {
		return nil, err
	}
	var out domain.CompetitionAnalysis
	if err := r.synthesize(ctx, domain.AgentCompetition, findings, credential, competitionSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunAudience executes the audience agent end to end.
func (r *AgentRunner) RunAudience(ctx context.Context, input domain.ValidationInput, stream progress.Streamer) (*domain.AudienceAnalysis, error) {
	credential := r.rotator.KeyForWorker(1)
	findings, err := r.research(ctx, domain.AgentAudience, input, stream, credential)
	if err != nil {
		return nil, err
	}
	var out domain.AudienceAnalysis
	if err := r.synthesize(ctx, domain.AgentAudience, findings, credential, audienceSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunTrend executes the trend agent end to end.
func (r *AgentRunner) RunTrend(ctx context.Context, input domain.ValidationInput, stream progress.Streamer) (*domain.TrendAnalysis, error) {
	credential := r.rotator.KeyForWorker(2)
	findings, err := r.research(ctx, domain.AgentTrend, input, stream, credential)
	if err != nil {
		return nil, err
	}
	var out domain.TrendAnalysis
	if err := r.synthesize(ctx, domain.AgentTrend, findings, credential, trendSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunStrategy executes the strategy agent end to end.
func (r *AgentRunner) RunStrategy(ctx context.Context, input domain.ValidationInput, stream progress.Streamer) (*domain.StrategyAnalysis, error) {
	credential := r.rotator.KeyForWorker(3)
	findings, err := r.research(ctx, domain.AgentStrategy, input, stream, credential)
	if err != nil {
		return nil, err
	}
	var out domain.StrategyAnalysis
	if err := r.synthesize(ctx, domain.AgentStrategy, findings, credential, strategySchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
