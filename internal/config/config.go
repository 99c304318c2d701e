package config

import (
	"os"

	"github.com/RichardoC/ai-doctor/internal/models"
	"github.com/joho/godotenv"
)

// Environment variable names holding provider credentials.
const (
	OpenAIKeyEnv     = "OPENAI_API_KEY"
	AnthropicKeyEnv  = "ANTHROPIC_API_KEY"
	PerplexityKeyEnv = "PERPLEXITY_API_KEY"
)

const (
	DefaultOpenAIBaseURL     = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL  = "https://api.anthropic.com/v1"
	DefaultPerplexityBaseURL = "https://api.perplexity.ai"
)

// LookupFunc reads one environment value. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

type Config struct {
	Port     string
	LogLevel string

	OpenAIBaseURL     string
	AnthropicBaseURL  string
	PerplexityBaseURL string
}

// Load reads a .env file if one exists, then the process environment.
// Credentials are not part of Config; they are read per request through a
// LookupFunc.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", DefaultOpenAIBaseURL),
		AnthropicBaseURL:  getEnvOrDefault("ANTHROPIC_BASE_URL", DefaultAnthropicBaseURL),
		PerplexityBaseURL: getEnvOrDefault("PERPLEXITY_BASE_URL", DefaultPerplexityBaseURL),
	}
}

// ProviderConfig describes one provider as seen by a single gateway call.
type ProviderConfig struct {
	Name          models.Provider
	DisplayName   string
	CredentialEnv string
	Credential    string
	Endpoint      string
	DefaultModel  string
}

func (p ProviderConfig) HasCredential() bool {
	return p.Credential != ""
}

// ProviderTable is the per-call view of all providers, in selection
// priority order: OpenAI, Anthropic, Perplexity.
type ProviderTable []ProviderConfig

func (t ProviderTable) Get(name models.Provider) (ProviderConfig, bool) {
	for _, p := range t {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// CredentialNames lists every credential variable in priority order.
func (t ProviderTable) CredentialNames() []string {
	names := make([]string, 0, len(t))
	for _, p := range t {
		names = append(names, p.CredentialEnv)
	}
	return names
}

// Providers builds the table from the current credential state. It must be
// called once per request and never cached.
func (c *Config) Providers(lookup LookupFunc) ProviderTable {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cred := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	return ProviderTable{
		{
			Name:          models.ProviderOpenAI,
			DisplayName:   "OpenAI",
			CredentialEnv: OpenAIKeyEnv,
			Credential:    cred(OpenAIKeyEnv),
			Endpoint:      c.OpenAIBaseURL + "/chat/completions",
			DefaultModel:  "gpt-4.1-2025-04-14",
		},
		{
			Name:          models.ProviderAnthropic,
			DisplayName:   "Anthropic",
			CredentialEnv: AnthropicKeyEnv,
			Credential:    cred(AnthropicKeyEnv),
			Endpoint:      c.AnthropicBaseURL + "/messages",
			DefaultModel:  "claude-sonnet-4-20250514",
		},
		{
			Name:          models.ProviderPerplexity,
			DisplayName:   "Perplexity",
			CredentialEnv: PerplexityKeyEnv,
			Credential:    cred(PerplexityKeyEnv),
			Endpoint:      c.PerplexityBaseURL + "/chat/completions",
			DefaultModel:  "llama-3.1-sonar-small-128k-online",
		},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
