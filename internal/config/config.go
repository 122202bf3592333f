// Package config handles smart-cli configuration management
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prudhvi1709/smart-cli/internal/types"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Version int `yaml:"version"`

	Provider  ProviderConfig  `yaml:"provider"`
	Model     ModelConfig     `yaml:"model"`
	Execution ExecutionConfig `yaml:"execution"`
	History   HistoryConfig   `yaml:"history"`
	MCP       MCPConfig       `yaml:"mcp"`
	UI        UIConfig        `yaml:"ui"`
}

// ProviderConfig holds LLM provider settings
type ProviderConfig struct {
	Name     string `yaml:"name"`     // openai, anthropic, ollama, lmstudio, generic
	Endpoint string `yaml:"endpoint"` // API endpoint override

	APIKey    string `yaml:"api_key,omitempty"`     // plain text key (not recommended)
	APIKeyEnv string `yaml:"api_key_env,omitempty"` // environment variable name
}

// ModelConfig holds model parameters
type ModelConfig struct {
	Name           string  `yaml:"name"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	HistoryTurns   int     `yaml:"history_turns"` // trailing turns sent per prompt
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// ExecutionConfig holds code execution settings
type ExecutionConfig struct {
	Enabled        bool   `yaml:"enabled"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ShowCode       bool   `yaml:"show_code"`
	Interpreter    string `yaml:"interpreter"` // python interpreter binary
}

// HistoryConfig holds the opt-in query audit log settings.
// Disabled by default: conversation state is never persisted and every
// process run starts with an empty history.
type HistoryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// MCPConfig holds tool server settings
type MCPConfig struct {
	Servers []string `yaml:"servers,omitempty"` // transport descriptors
}

// UIConfig holds terminal output settings
type UIConfig struct {
	ColorEnabled bool `yaml:"color_enabled"`
}

// ConfigPaths holds the configuration file locations
type ConfigPaths struct {
	User    string
	Project string
}

var (
	cfg         *Config
	configPaths ConfigPaths
	initialized bool
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Version: 1,
		Provider: ProviderConfig{
			Name: "",
		},
		Model: ModelConfig{
			MaxTokens:      2048,
			Temperature:    0.2,
			HistoryTurns:   10,
			TimeoutSeconds: 120,
		},
		Execution: ExecutionConfig{
			Enabled:        true,
			TimeoutSeconds: 30,
			ShowCode:       true,
			Interpreter:    "python3",
		},
		History: HistoryConfig{
			Enabled:       false,
			DBPath:        filepath.Join(homeDir, ".local", "share", "smartcli", "history.db"),
			RetentionDays: 90,
		},
		UI: UIConfig{
			ColorEnabled: true,
		},
	}
}

// GetConfigPaths returns the configuration file paths
func GetConfigPaths() ConfigPaths {
	if configPaths.User == "" {
		homeDir, _ := os.UserHomeDir()
		configPaths = ConfigPaths{
			User:    filepath.Join(homeDir, ".config", "smartcli", "config.yaml"),
			Project: filepath.Join(".smartcli", "config.yaml"),
		}
	}
	return configPaths
}

// Init initializes the configuration system. Config files are layered:
// user config, then project config, then environment overrides.
func Init(configPath string) error {
	if initialized && configPath == "" {
		return nil
	}

	paths := GetConfigPaths()
	cfg = DefaultConfig()

	userConfigPath := paths.User
	if configPath != "" {
		userConfigPath = configPath
	}
	if data, err := os.ReadFile(userConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse user config: %w", err)
		}
	}

	if data, err := os.ReadFile(paths.Project); err == nil {
		projectCfg := &Config{}
		if err := yaml.Unmarshal(data, projectCfg); err != nil {
			return fmt.Errorf("failed to parse project config: %w", err)
		}
		mergeConfig(cfg, projectCfg)
	}

	applyEnvOverrides(cfg)

	initialized = true
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// Save writes the current configuration to the user config file
func Save() error {
	paths := GetConfigPaths()

	if err := os.MkdirAll(filepath.Dir(paths.User), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Get())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(paths.User, data, 0644)
}

// mergeConfig overlays non-zero values from src onto dst
func mergeConfig(dst, src *Config) {
	if src.Provider.Name != "" {
		dst.Provider.Name = src.Provider.Name
	}
	if src.Provider.Endpoint != "" {
		dst.Provider.Endpoint = src.Provider.Endpoint
	}
	if src.Provider.APIKey != "" {
		dst.Provider.APIKey = src.Provider.APIKey
	}
	if src.Provider.APIKeyEnv != "" {
		dst.Provider.APIKeyEnv = src.Provider.APIKeyEnv
	}
	if src.Model.Name != "" {
		dst.Model.Name = src.Model.Name
	}
	if src.Model.MaxTokens != 0 {
		dst.Model.MaxTokens = src.Model.MaxTokens
	}
	if src.Model.HistoryTurns != 0 {
		dst.Model.HistoryTurns = src.Model.HistoryTurns
	}
	if src.Model.TimeoutSeconds != 0 {
		dst.Model.TimeoutSeconds = src.Model.TimeoutSeconds
	}
	if src.Execution.TimeoutSeconds != 0 {
		dst.Execution.TimeoutSeconds = src.Execution.TimeoutSeconds
	}
	if src.Execution.Interpreter != "" {
		dst.Execution.Interpreter = src.Execution.Interpreter
	}
	if src.History.DBPath != "" {
		dst.History.DBPath = src.History.DBPath
	}
	if len(src.MCP.Servers) > 0 {
		dst.MCP.Servers = append(dst.MCP.Servers, src.MCP.Servers...)
	}
}

// applyEnvOverrides applies SMARTCLI_* environment overrides
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("SMARTCLI_PROVIDER"); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv("SMARTCLI_MODEL"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("SMARTCLI_ENDPOINT"); v != "" {
		c.Provider.Endpoint = v
	}
	if v := os.Getenv("SMARTCLI_EXEC_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Execution.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("SMARTCLI_HISTORY"); v != "" {
		c.History.Enabled = v == "1" || v == "true" || v == "yes"
	}
}

// GetValue gets a configuration value by dot-notation key
func GetValue(key string) (any, error) {
	c := Get()
	switch key {
	case "provider.name":
		return c.Provider.Name, nil
	case "provider.endpoint":
		return c.Provider.Endpoint, nil
	case "provider.api_key_env":
		return c.Provider.APIKeyEnv, nil
	case "model.name":
		return c.Model.Name, nil
	case "model.max_tokens":
		return c.Model.MaxTokens, nil
	case "model.history_turns":
		return c.Model.HistoryTurns, nil
	case "model.timeout_seconds":
		return c.Model.TimeoutSeconds, nil
	case "execution.enabled":
		return c.Execution.Enabled, nil
	case "execution.timeout_seconds":
		return c.Execution.TimeoutSeconds, nil
	case "execution.show_code":
		return c.Execution.ShowCode, nil
	case "execution.interpreter":
		return c.Execution.Interpreter, nil
	case "history.enabled":
		return c.History.Enabled, nil
	case "history.db_path":
		return c.History.DBPath, nil
	case "ui.color_enabled":
		return c.UI.ColorEnabled, nil
	default:
		return nil, fmt.Errorf("unknown key: %s", key)
	}
}

// Set sets a configuration value by dot-notation key
func Set(key string, value string) error {
	c := Get()
	switch key {
	case "provider.name":
		c.Provider.Name = value
	case "provider.endpoint":
		c.Provider.Endpoint = value
	case "provider.api_key_env":
		c.Provider.APIKeyEnv = value
	case "model.name":
		c.Model.Name = value
	case "model.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		c.Model.MaxTokens = n
	case "model.history_turns":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		c.Model.HistoryTurns = n
	case "execution.enabled":
		c.Execution.Enabled = value == "true" || value == "1"
	case "execution.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		c.Execution.TimeoutSeconds = n
	case "execution.show_code":
		c.Execution.ShowCode = value == "true" || value == "1"
	case "execution.interpreter":
		c.Execution.Interpreter = value
	case "history.enabled":
		c.History.Enabled = value == "true" || value == "1"
	case "history.db_path":
		c.History.DBPath = value
	case "ui.color_enabled":
		c.UI.ColorEnabled = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// GetAPIKey returns the API key for the given provider
func GetAPIKey(provider string) string {
	c := Get()

	if c.Provider.APIKeyEnv != "" {
		if key := os.Getenv(c.Provider.APIKeyEnv); key != "" {
			return key
		}
	}
	if c.Provider.APIKey != "" {
		return c.Provider.APIKey
	}

	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// GetEndpoint returns the API endpoint for the given provider
func GetEndpoint(provider string) string {
	c := Get()
	if c.Provider.Endpoint != "" {
		return c.Provider.Endpoint
	}

	switch provider {
	case "ollama":
		return "http://localhost:11434/v1"
	case "lmstudio":
		return "http://localhost:1234/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	default:
		return "https://api.openai.com/v1"
	}
}

// EnsureDirs creates directories needed for persistent state
func EnsureDirs() error {
	c := Get()
	if !c.History.Enabled {
		return nil
	}
	dir := filepath.Dir(c.History.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// ResetInitialized resets the initialization state (for testing)
func ResetInitialized() {
	initialized = false
	cfg = nil
	configPaths = ConfigPaths{}
}

const (
	defaultOpenAIModel    = "gpt-4.1-mini"
	defaultAnthropicModel = "claude-sonnet-4-0"
)

// ResolveSelection resolves the provider and model for this run. Precedence:
// the --model flag ("provider:model-id"), SMARTCLI_* environment overrides
// (already folded into the config), the config file, and finally whichever
// provider has credentials available (OpenAI wins when both keys are set,
// matching the behavior users of the original tool expect).
func ResolveSelection(modelFlag string) (types.ProviderSelection, error) {
	if modelFlag != "" {
		provider, model, ok := strings.Cut(modelFlag, ":")
		if !ok || provider == "" || model == "" {
			return types.ProviderSelection{}, fmt.Errorf("invalid --model value %q: expected provider:model-id", modelFlag)
		}
		return types.ProviderSelection{
			ProviderName: provider,
			ModelID:      model,
			APIKeySource: "flag",
		}, nil
	}

	c := Get()
	if c.Provider.Name != "" {
		model := c.Model.Name
		if model == "" {
			model = defaultModelFor(c.Provider.Name)
		}
		return types.ProviderSelection{
			ProviderName: c.Provider.Name,
			ModelID:      model,
			APIKeySource: "config",
		}, nil
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		return types.ProviderSelection{
			ProviderName: "openai",
			ModelID:      defaultOpenAIModel,
			APIKeySource: "OPENAI_API_KEY",
		}, nil
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		model := os.Getenv("ANTHROPIC_MODEL")
		source := "ANTHROPIC_API_KEY"
		if model == "" {
			model = defaultAnthropicModel
		} else {
			source = "ANTHROPIC_MODEL"
		}
		return types.ProviderSelection{
			ProviderName: "anthropic",
			ModelID:      model,
			APIKeySource: source,
		}, nil
	}

	return types.ProviderSelection{}, fmt.Errorf("no provider configured: set OPENAI_API_KEY or ANTHROPIC_API_KEY, or use --model")
}

func defaultModelFor(provider string) string {
	switch provider {
	case "anthropic":
		if m := os.Getenv("ANTHROPIC_MODEL"); m != "" {
			return m
		}
		return defaultAnthropicModel
	case "openai":
		return defaultOpenAIModel
	case "ollama":
		return "llama3.2"
	default:
		return defaultOpenAIModel
	}
}
