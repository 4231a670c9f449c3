package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const handoffPrefix = "transfer_to_"

// Engine drives a tool-calling conversation loop over the configured agent
// topology. Handoffs are pseudo-tools: calling transfer_to_<agent> swaps the
// active agent (and so its prompt and tool set) for the rest of the run.
type Engine struct {
	api      openai.Client
	cfg      *Config
	registry *Registry
	store    supportModel.SupportStore
	logger   *logger_i.Logger
}

func NewEngine(apiKey string, cfg *Config, registry *Registry, store supportModel.SupportStore, opts ...option.RequestOption) *Engine {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Engine{
		api:      openai.NewClient(opts...),
		cfg:      cfg,
		registry: registry,
		store:    store,
		logger:   logger_i.NewLogger("Agent Engine"),
	}
}

// Run processes one user message starting at the entry agent and returns the
// final assistant text. The turn count is bounded; a run that never settles
// is an error, not an infinite loop.
func (e *Engine) Run(ctx context.Context, message string, userID string, sessionID string) (string, error) {
	current := e.cfg.agent(e.cfg.EntryAgent)

	userText := message
	if userID != "" {
		userText = fmt.Sprintf("[user_id:%s] %s", userID, message)
	}
	conversation := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(userText),
	}

	for turn := 0; turn < e.cfg.ModelDefaults.MaxTurns; turn++ {
		params := openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(e.cfg.ModelDefaults.Model),
			Temperature: openai.Float(e.cfg.ModelDefaults.Temperature),
			Messages:    append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(current.prompt)}, conversation...),
			Tools:       e.toolParams(current),
		}

		resp, err := e.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("agent %q completion: %w", current.Name, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("agent %q returned no choices", current.Name)
		}
		msg := resp.Choices[0].Message

		if len(msg.ToolCalls) == 0 {
			e.logRun(ctx, current.Name, userID, sessionID, message, msg.Content)
			return msg.Content, nil
		}

		conversation = append(conversation, msg.ToParam())
		for _, call := range msg.ToolCalls {
			name := call.Function.Name
			if strings.HasPrefix(name, handoffPrefix) {
				target := strings.TrimPrefix(name, handoffPrefix)
				if next := e.resolveHandoff(current, target); next != nil {
					current = next
					conversation = append(conversation, openai.ToolMessage(fmt.Sprintf("Transferred to %s.", target), call.ID))
				} else {
					conversation = append(conversation, openai.ToolMessage(fmt.Sprintf("No such agent: %s.", target), call.ID))
				}
				continue
			}
			conversation = append(conversation, openai.ToolMessage(e.dispatch(ctx, current, name, call.Function.Arguments), call.ID))
		}
	}
	return "", fmt.Errorf("agent run exceeded %d turns", e.cfg.ModelDefaults.MaxTurns)
}

func (e *Engine) resolveHandoff(from *AgentDecl, target string) *AgentDecl {
	for _, h := range from.Handoffs {
		if h == target {
			return e.cfg.agent(target)
		}
	}
	return nil
}

// dispatch runs one registered tool. Failures are reported back to the model
// as text so it can recover or apologize instead of killing the run.
func (e *Engine) dispatch(ctx context.Context, agent *AgentDecl, name string, argsJSON string) string {
	allowed := false
	for _, ref := range agent.ToolRefs {
		if ref == name {
			allowed = true
			break
		}
	}
	tool, ok := e.registry.Get(name)
	if !ok || !allowed {
		e.logger.Warn("Model called an unavailable tool", "agent", agent.Name, "tool", name)
		return fmt.Sprintf("Tool %s is not available.", name)
	}

	out, err := tool.Handler(ctx, argsJSON)
	if err != nil {
		e.logger.Error("Tool call failed", "agent", agent.Name, "tool", name, "error", err)
		return fmt.Sprintf("Tool %s failed: %v", name, err)
	}
	return out
}

func (e *Engine) toolParams(agent *AgentDecl) []openai.ChatCompletionToolParam {
	var params []openai.ChatCompletionToolParam
	for _, ref := range agent.ToolRefs {
		tool, ok := e.registry.Get(ref)
		if !ok {
			continue
		}
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  tool.Parameters,
			},
		})
	}
	for _, target := range agent.Handoffs {
		desc := "Transfer the conversation to the " + target + " agent."
		if t := e.cfg.agent(target); t != nil && t.HandoffDescription != "" {
			desc = t.HandoffDescription
		}
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        handoffPrefix + target,
				Description: openai.String(desc),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		})
	}
	return params
}

func (e *Engine) logRun(ctx context.Context, agent string, userID string, sessionID string, input string, output string) {
	if e.store == nil {
		return
	}
	traceID, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	log := supportModel.RunLog{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Agent:      agent,
		UserID:     userID,
		InputText:  input,
		OutputText: output,
		TraceID:    traceID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.InsertRunLog(ctx, log); err != nil {
		e.logger.Warn("Could not persist run log", "session_id", sessionID, "error", err)
	}
}
