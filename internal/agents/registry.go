package agents

import (
	"context"
	"fmt"
	"sort"

	"github.com/openai/openai-go"
)

// ToolHandler executes one tool call. It receives the raw JSON arguments the
// model produced and returns the string fed back to the model.
type ToolHandler func(ctx context.Context, argsJSON string) (string, error)

// Tool pairs the model-facing schema with its handler.
type Tool struct {
	Name        string
	Description string
	Parameters  openai.FunctionParameters
	Handler     ToolHandler
}

// Registry is the static set of tools the engine can dispatch to. Tools are
// registered in code at startup; the configuration can only reference them,
// never conjure new ones.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate fails fast when the configuration references a tool that was
// never registered. Run at startup, before the server accepts traffic.
func (r *Registry) Validate(cfg *Config) error {
	for _, agent := range cfg.Agents {
		for _, ref := range agent.ToolRefs {
			if _, ok := r.tools[ref]; !ok {
				return fmt.Errorf("agent %q references unregistered tool %q (registered: %v)", agent.Name, ref, r.Names())
			}
		}
	}
	return nil
}
