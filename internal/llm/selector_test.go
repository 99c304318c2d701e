package llm

import (
	"errors"
	"testing"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/models"
	. "github.com/onsi/gomega"
)

func env(kv map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := kv[key]
		return v, ok
	}
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		OpenAIBaseURL:     baseURL + "/openai/v1",
		AnthropicBaseURL:  baseURL + "/anthropic/v1",
		PerplexityBaseURL: baseURL + "/perplexity",
	}
}

func TestSelect_PriorityOrder(t *testing.T) {
	g := NewWithT(t)
	cfg := testConfig("http://upstream")

	all := cfg.Providers(env(map[string]string{
		config.OpenAIKeyEnv:     "sk-o",
		config.AnthropicKeyEnv:  "sk-a",
		config.PerplexityKeyEnv: "sk-p",
	}))
	p, err := Select("", all)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.Name).To(Equal(models.ProviderOpenAI))

	p, err = Select("", cfg.Providers(env(map[string]string{
		config.AnthropicKeyEnv:  "sk-a",
		config.PerplexityKeyEnv: "sk-p",
	})))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.Name).To(Equal(models.ProviderAnthropic))

	p, err = Select("", cfg.Providers(env(map[string]string{config.PerplexityKeyEnv: "sk-p"})))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.Name).To(Equal(models.ProviderPerplexity))
	g.Expect(p.Credential).To(Equal("sk-p"))
}

func TestSelect_EmptyCredentialIsAbsent(t *testing.T) {
	g := NewWithT(t)

	table := testConfig("http://upstream").Providers(env(map[string]string{
		config.OpenAIKeyEnv:    "",
		config.AnthropicKeyEnv: "sk-a",
	}))
	p, err := Select("", table)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.Name).To(Equal(models.ProviderAnthropic))
}

func TestSelect_ExplicitProviderWinsWithoutCredential(t *testing.T) {
	g := NewWithT(t)

	table := testConfig("http://upstream").Providers(env(map[string]string{config.AnthropicKeyEnv: "sk-a"}))
	p, err := Select(models.ProviderOpenAI, table)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(p.Name).To(Equal(models.ProviderOpenAI))
	g.Expect(p.HasCredential()).To(BeFalse())
}

func TestSelect_NoCredentials(t *testing.T) {
	g := NewWithT(t)

	_, err := Select("", testConfig("http://upstream").Providers(env(nil)))
	g.Expect(err).To(HaveOccurred())

	var e *Error
	g.Expect(errors.As(err, &e)).To(BeTrue())
	g.Expect(e.Kind).To(Equal(KindConfiguration))
	g.Expect(e.Status()).To(Equal(400))
	g.Expect(e.Error()).To(ContainSubstring("OPENAI_API_KEY or ANTHROPIC_API_KEY or PERPLEXITY_API_KEY"))
}

func TestSelect_UnknownProvider(t *testing.T) {
	g := NewWithT(t)

	_, err := Select("gemini", testConfig("http://upstream").Providers(env(nil)))
	var e *Error
	g.Expect(errors.As(err, &e)).To(BeTrue())
	g.Expect(e.Kind).To(Equal(KindValidation))
	g.Expect(e.Error()).To(ContainSubstring(`"gemini"`))
}
