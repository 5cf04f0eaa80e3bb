package builtin

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/relaycortex/agentcore/pkg/chain"
	"github.com/relaycortex/agentcore/pkg/tool"
)

// Message is one entry in a chat-style prompt.
type Message struct {
	Role    string
	Content string
}

// LLMRequest is the normalized request shape the LLM tool sends to a
// Client, after ReasoningEngine.CallLLM has resolved prompt-vs-messages.
type LLMRequest struct {
	Messages    []Message
	System      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// LLMResponse is a completion result with its usage for cost accounting.
type LLMResponse struct {
	Content    string
	TokensUsed int
	Cost       float64
}

// Client abstracts the model backend so the LLM tool (and tests) don't
// depend on a concrete SDK.
type Client interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// OpenAIClient adapts github.com/sashabaranov/go-openai to Client.
type OpenAIClient struct {
	API          *openai.Client
	CostPerToken float64 // flat per-token cost estimate for accounting
}

// NewOpenAIClient builds a Client backed by the OpenAI-compatible API at
// the given base URL (empty uses the default OpenAI endpoint).
func NewOpenAIClient(apiKey, baseURL string, costPerToken float64) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{API: openai.NewClientWithConfig(cfg), CostPerToken: costPerToken}
}

func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.API.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return LLMResponse{}, tool.NewExecutionError(classifyOpenAIError(err), err.Error())
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, tool.NewExecutionError("EmptyResponse", "model returned no choices")
	}

	tokens := resp.Usage.TotalTokens
	return LLMResponse{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: tokens,
		Cost:       float64(tokens) * c.CostPerToken,
	}, nil
}

// classifyOpenAIError maps an SDK error to a retry-classification kind; the
// go-openai client surfaces rate limit/connection failures as typed
// *openai.APIError or net errors, neither of which carry a stable "type
// name" the way a Python exception class does, so this does lightweight
// string sniffing the same way the tool executor's retry heuristic does.
func classifyOpenAIError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return "RateLimitError"
	case strings.Contains(msg, "timeout"):
		return "TimeoutError"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "eof"):
		return "ConnectionError"
	default:
		return "APIError"
	}
}

// LLMTool wraps a Client behind the abstract tool.Tool contract, registered
// under the synthetic name "llm" (spec §4.2: call_llm is implemented as a
// TOOL_CALL/TOOL_RESULT pair on a synthetic "llm" tool, so it goes through
// the same retry/timeout/chain machinery as any other tool — including the
// max_tokens-reduction-on_rate_limit behavior in the executor).
type LLMTool struct {
	Client       Client
	DefaultModel string
	TimeoutMS    int
}

func (t *LLMTool) Definition() tool.Definition {
	timeout := t.TimeoutMS
	if timeout == 0 {
		timeout = 60_000
	}
	return tool.Definition{
		Name:        "llm",
		Type:        chain.ToolAPI,
		Description: "Invoke the language model with a prompt or message list.",
		Parameters: []tool.Parameter{
			{Name: "messages", Type: tool.ParamArray, Required: false, Description: "Chat-style message list."},
			{Name: "prompt", Type: tool.ParamString, Required: false, Description: "Raw prompt (mutually exclusive with messages)."},
			{Name: "system", Type: tool.ParamString, Required: false},
			{Name: "model", Type: tool.ParamString, Required: false},
			{Name: "temperature", Type: tool.ParamNumber, Required: false},
			{Name: "max_tokens", Type: tool.ParamNumber, Required: false},
		},
		Visibility: tool.VisibilityDefault{Level: chain.VisibilityFull},
		TimeoutMS:  timeout,
		RetryConfig: tool.RetryConfig{
			MaxRetries:        3,
			BackoffMS:         500,
			BackoffMultiplier: 2,
			RetryableErrors:   []string{"RateLimitError", "ConnectionError", "TimeoutError"},
		},
	}
}

func (t *LLMTool) ValidateArguments(args map[string]any) error {
	_, hasPrompt := args["prompt"]
	_, hasMessages := args["messages"]
	if hasPrompt == hasMessages {
		return tool.NewExecutionError("ValidationError", "exactly one of prompt or messages must be provided")
	}
	return nil
}

func (t *LLMTool) Execute(ctx context.Context, _ tool.CallContext, args map[string]any) (tool.Result, error) {
	req := LLMRequest{
		Model:       t.DefaultModel,
		Temperature: 0.7,
	}
	if model, ok := args["model"].(string); ok && model != "" {
		req.Model = model
	}
	if system, ok := args["system"].(string); ok {
		req.System = system
	}
	if temp, ok := args["temperature"].(float64); ok {
		req.Temperature = temp
	}
	if mt, ok := args["max_tokens"]; ok {
		if n, ok := toInt(mt); ok {
			req.MaxTokens = n
		}
	}

	if prompt, ok := args["prompt"].(string); ok {
		req.Messages = []Message{{Role: "user", Content: prompt}}
	} else if rawMessages, ok := args["messages"].([]any); ok {
		for _, rm := range rawMessages {
			m, ok := rm.(map[string]any)
			if !ok {
				continue
			}
			role, _ := m["role"].(string)
			content, _ := m["content"].(string)
			req.Messages = append(req.Messages, Message{Role: role, Content: content})
		}
	}

	resp, err := t.Client.Complete(ctx, req)
	if err != nil {
		return tool.Result{}, err
	}

	return tool.Result{
		Success:    true,
		Result:     resp.Content,
		TokensUsed: resp.TokensUsed,
		Cost:       resp.Cost,
	}, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
