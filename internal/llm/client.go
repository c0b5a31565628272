package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/responses"
)

// Invoker is the LLM contract the pipelines depend on. Every structured
// call is schema-constrained; free-text responses are never parsed ad hoc.
type Invoker interface {
	// Invoke performs one structured-output call and decodes the result
	// into out. The credential selects the rate-limit bucket.
	Invoke(ctx context.Context, req InvokeRequest, out interface{}) error

	// Chat performs one conversational call, optionally with tool
	// definitions, and returns either content or requested tool calls.
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)
}

// InvokeRequest describes one schema-constrained completion.
type InvokeRequest struct {
	Credential      string
	Instructions    string
	Input           string
	SchemaName      string
	Schema          map[string]interface{}
	MaxOutputTokens int64
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn of a tool-calling conversation.
type Message struct {
	Role       string
	Content    string
	ToolCallID string     // set on tool-result messages
	ToolCalls  []ToolCall // set on assistant messages that requested tools
}

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON
}

// ToolDef declares a callable tool to the model.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest describes one conversational call.
type ChatRequest struct {
	Credential string
	Messages   []Message
	Tools      []ToolDef
	MaxTokens  int64
}

// ChatResult is the model's reply: final content, or tool calls to run.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Config holds client configuration.
type Config struct {
	Model   string
	BaseURL string
}

// Client implements Invoker against the OpenAI API with a per-credential
// connection cache, so rotated keys reuse their transport.
type Client struct {
	model   string
	baseURL string

	mu      sync.Mutex
	clients map[string]*openai.Client
}

// NewClient creates a new LLM client.
func NewClient(cfg *Config) *Client {
	return &Client{
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		clients: make(map[string]*openai.Client),
	}
}

func (c *Client) clientFor(credential string) *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.clients[credential]; ok {
		return cl
	}
	opts := []option.RequestOption{option.WithAPIKey(credential)}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	cl := openai.NewClient(opts...)
	c.clients[credential] = &cl
	return &cl
}

// Invoke performs one structured-output call via the Responses API.
func (c *Client) Invoke(ctx context.Context, req InvokeRequest, out interface{}) error {
	if req.SchemaName == "" || req.Schema == nil {
		return fmt.Errorf("llm: invoke requires a schema")
	}
	maxOut := req.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 2000
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   req.SchemaName,
			Schema: req.Schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(maxOut),
		Instructions:    openai.String(req.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	client := c.clientFor(req.Credential)
	var resp *responses.Response
	err := callWithRetry(ctx, func() error {
		var callErr error
		resp, callErr = client.Responses.New(ctx, params)
		return callErr
	})
	if err != nil {
		return err
	}

	if err := decodeModelJSON(resp.OutputText(), out); err != nil {
		return fmt.Errorf("llm: decode structured output %s: %w", req.SchemaName, err)
	}
	return nil
}

// Chat performs one conversational call via the Chat Completions API.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolUnionParam, 0, len(req.Tools))
		for _, t := range req.Tools {
			tools = append(tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			}))
		}
		params.Tools = tools
	}

	client := c.clientFor(req.Credential)
	var completion *openai.ChatCompletion
	err := callWithRetry(ctx, func() error {
		var chatErr error
		completion, chatErr = client.Chat.Completions.New(ctx, params)
		return chatErr
	})
	if err != nil {
		return nil, err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("llm: empty chat completion")
	}

	msg := completion.Choices[0].Message
	result := &ChatResult{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}

// callWithRetry retries transient provider failures with bounded waits.
// Rate limits wait longer than server errors before the next attempt.
func callWithRetry(ctx context.Context, call func() error) error {
	const maxRetries = 3
	rateLimitWaits := []time.Duration{20 * time.Second, 40 * time.Second, 60 * time.Second}
	serverErrorWaits := []time.Duration{2 * time.Second, 8 * time.Second, 20 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = rateLimitWaits[attempt]
		case isServerError(err):
			wait = serverErrorWaits[attempt]
		default:
			return err
		}
		if attempt == maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("llm: failed after %d attempts: %w", maxRetries, lastErr)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable")
}

// decodeModelJSON unmarshals model output, tolerating stray prose around
// the JSON object by extracting the outermost braces.
func decodeModelJSON(s string, v interface{}) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("empty model output")
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}
