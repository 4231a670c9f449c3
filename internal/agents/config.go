package agents

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ModelDefaults apply to every agent unless the run overrides them.
type ModelDefaults struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTurns    int     `yaml:"max_turns"`
}

type ToolDecl struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type AgentDecl struct {
	Name               string   `yaml:"name"`
	PromptFile         string   `yaml:"prompt_file"`
	ToolRefs           []string `yaml:"tool_refs"`
	Handoffs           []string `yaml:"handoffs"`
	HandoffDescription string   `yaml:"handoff_description"`

	// prompt holds the loaded prompt file contents.
	prompt string
}

// Config is the declarative agent topology loaded at startup. Prompts are
// read eagerly and environment references in the YAML are expanded, so a
// bad configuration is caught before the server accepts traffic.
type Config struct {
	ModelDefaults ModelDefaults `yaml:"model_defaults"`
	EntryAgent    string        `yaml:"entry_agent"`
	Tools         []ToolDecl    `yaml:"tools"`
	Agents        []AgentDecl   `yaml:"agents"`
}

func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agents config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing agents config: %w", err)
	}

	if cfg.EntryAgent == "" {
		return nil, fmt.Errorf("agents config: entry_agent is required")
	}
	if cfg.ModelDefaults.MaxTurns <= 0 {
		cfg.ModelDefaults.MaxTurns = 8
	}

	baseDir := filepath.Dir(path)
	names := make(map[string]bool, len(cfg.Agents))
	for i := range cfg.Agents {
		agent := &cfg.Agents[i]
		if agent.Name == "" {
			return nil, fmt.Errorf("agents config: agent %d has no name", i)
		}
		if names[agent.Name] {
			return nil, fmt.Errorf("agents config: duplicate agent %q", agent.Name)
		}
		names[agent.Name] = true

		prompt, err := os.ReadFile(filepath.Join(baseDir, agent.PromptFile))
		if err != nil {
			return nil, fmt.Errorf("reading prompt for agent %q: %w", agent.Name, err)
		}
		agent.prompt = os.ExpandEnv(string(prompt))
	}

	if !names[cfg.EntryAgent] {
		return nil, fmt.Errorf("agents config: entry_agent %q is not a declared agent", cfg.EntryAgent)
	}
	for _, agent := range cfg.Agents {
		for _, h := range agent.Handoffs {
			if !names[h] {
				return nil, fmt.Errorf("agents config: agent %q hands off to unknown agent %q", agent.Name, h)
			}
		}
	}
	return &cfg, nil
}

func (c *Config) agent(name string) *AgentDecl {
	for i := range c.Agents {
		if c.Agents[i].Name == name {
			return &c.Agents[i]
		}
	}
	return nil
}
