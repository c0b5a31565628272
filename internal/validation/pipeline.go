package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/llm"
	"github.com/rlou/tubescope/internal/logger"
	"github.com/rlou/tubescope/internal/progress"
	"github.com/rlou/tubescope/internal/prompts"
)

var verdictSchema = llm.GenerateSchema[domain.ValidationVerdict]()

// agentState is the merge-reduced record the four agents and supervisor
// share. Each output slot is written exactly once by its owning agent;
// the completion set is the only field mutated under the lock by more
// than one goroutine.
type agentState struct {
	input domain.ValidationInput

	competition *domain.CompetitionAnalysis
	audience    *domain.AudienceAnalysis
	trend       *domain.TrendAnalysis
	strategy    *domain.StrategyAnalysis

	mu        sync.Mutex
	completed map[string]bool
}

func newAgentState(input domain.ValidationInput) *agentState {
	return &agentState{
		input:     input,
		completed: make(map[string]bool),
	}
}

func (s *agentState) markCompleted(name string) {
	s.mu.Lock()
	s.completed[name] = true
	s.mu.Unlock()
}

// checkBarrier asserts every required agent completed and populated its
// slot. The graph's join already guarantees this; a violation means the
// required-agent list and the actual topology have diverged, which is an
// internal bug, not a data condition.
func (s *agentState) checkBarrier() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []string
	for _, name := range domain.RequiredAgents {
		if !s.completed[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("barrier violation: agents did not complete: %s", strings.Join(missing, ", "))
	}

	if s.competition == nil {
		missing = append(missing, domain.AgentCompetition)
	}
	if s.audience == nil {
		missing = append(missing, domain.AgentAudience)
	}
	if s.trend == nil {
		missing = append(missing, domain.AgentTrend)
	}
	if s.strategy == nil {
		missing = append(missing, domain.AgentStrategy)
	}
	if len(missing) > 0 {
		return fmt.Errorf("barrier violation: agent output missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Pipeline runs the four-agent idea validation graph: parallel research,
// a completion barrier, then supervisor synthesis. Any agent failure is
// fatal to the run.
type Pipeline struct {
	llm     llm.Invoker
	rotator *llm.KeyRotator
	runner  *AgentRunner
}

// NewPipeline creates a validation pipeline over the shared LLM client
// and data provider.
func NewPipeline(invoker llm.Invoker, rotator *llm.KeyRotator, provider DataProvider, maxToolIterations int) *Pipeline {
	toolbox := NewToolbox(provider)
	return &Pipeline{
		llm:     invoker,
		rotator: rotator,
		runner:  NewAgentRunner(invoker, rotator, toolbox, maxToolIterations),
	}
}

// Validate runs the full graph, streaming log lines throughout. Every
// exit path emits a Final record and ends the stream.
func (p *Pipeline) Validate(ctx context.Context, input domain.ValidationInput, stream progress.Streamer) (*domain.ValidationResult, error) {
	ctx = logger.SetJobID(ctx, input.JobID)
	defer stream.End()

	verdict, err := p.run(ctx, input, stream)
	if err != nil {
		logger.CtxError(ctx, "Validation failed: %v", err)
		stream.Log(fmt.Sprintf("validation failed: %v", err), "error")
		result := &domain.ValidationResult{Success: false, Error: err.Error()}
		stream.Final(result)
		return result, err
	}

	result := &domain.ValidationResult{Success: true, Verdict: verdict}
	stream.Final(result)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, input domain.ValidationInput, stream progress.Streamer) (*domain.ValidationVerdict, error) {
	stream.Log(fmt.Sprintf("validating idea: %s", input.Idea), "info")

	state := newAgentState(input)

	// Fan out the four research agents. First error wins; the join still
	// waits for every goroutine before the barrier inspects the state.
	var wg sync.WaitGroup
	errs := make(chan error, len(domain.RequiredAgents))

	runAgent := func(name string, work func() error) {
		defer wg.Done()
		stream.Log(fmt.Sprintf("[%s] agent started", name), "info")
		if err := work(); err != nil {
			errs <- err
			return
		}
		state.markCompleted(name)
		stream.Log(fmt.Sprintf("[%s] agent finished", name), "info")
	}

	wg.Add(4)
	go runAgent(domain.AgentCompetition, func() error {
		out, err := p.runner.RunCompetition(ctx, input, stream)
		state.competition = out
		return err
	})
	go runAgent(domain.AgentAudience, func() error {
		out, err := p.runner.RunAudience(ctx, input, stream)
		state.audience = out
		return err
	})
	go runAgent(domain.AgentTrend, func() error {
		out, err := p.runner.RunTrend(ctx, input, stream)
		state.trend = out
		return err
	})
	go runAgent(domain.AgentStrategy, func() error {
		out, err := p.runner.RunStrategy(ctx, input, stream)
		state.strategy = out
		return err
	})
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	if err := state.checkBarrier(); err != nil {
		return nil, err
	}

	stream.Log("all agents complete, synthesizing verdict", "info")
	return p.supervise(ctx, state)
}

// supervise performs the final synthesis call over all four analyses.
func (p *Pipeline) supervise(ctx context.Context, state *agentState) (*domain.ValidationVerdict, error) {
	sections := map[string]string{
		domain.AgentCompetition: renderSection(state.competition),
		domain.AgentAudience:    renderSection(state.audience),
		domain.AgentTrend:       renderSection(state.trend),
		domain.AgentStrategy:    renderSection(state.strategy),
	}

	var verdict domain.ValidationVerdict
	err := p.llm.Invoke(ctx, llm.InvokeRequest{
		Credential:   p.rotator.NextKey(),
		Instructions: prompts.SupervisorSystemPrompt,
		Input:        prompts.SupervisorInput(state.input.Idea, sections),
		SchemaName:   "validation_verdict",
		Schema:       verdictSchema,
	}, &verdict)
	if err != nil {
		return nil, fmt.Errorf("supervisor synthesis: %w", err)
	}

	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 100 {
		verdict.Score = 100
	}
	if len(verdict.ReferenceVideos) > 5 {
		verdict.ReferenceVideos = verdict.ReferenceVideos[:5]
	}
	return &verdict, nil
}

func renderSection(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}
