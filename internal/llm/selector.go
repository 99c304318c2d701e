package llm

import (
	"fmt"
	"strings"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/models"
)

// Select picks the provider for one call.
//
// An explicitly requested provider always wins, even without a credential;
// the missing credential is reported later, when the adapter is invoked.
// Otherwise the first provider in table order with a credential is used.
// Table order (OpenAI, Anthropic, Perplexity) is the tie-break when several
// credentials are present, and callers rely on it.
func Select(requested models.Provider, table config.ProviderTable) (config.ProviderConfig, error) {
	if requested != "" {
		p, ok := table.Get(requested)
		if !ok {
			return config.ProviderConfig{}, validationError(fmt.Sprintf("Unknown provider %q", requested))
		}
		return p, nil
	}

	for _, p := range table {
		if p.HasCredential() {
			return p, nil
		}
	}

	return config.ProviderConfig{}, configurationError("", fmt.Sprintf(
		"No provider configured. Add %s to the gateway environment and restart.",
		strings.Join(table.CredentialNames(), " or "),
	))
}
